package services

import (
	"fmt"
	"strings"
)

const transitionSystemPrompt = `You write short spoken transitions for a podcast host. Plain text only, no markdown.`

// ComposeTransition nhờ Gemini viết câu dẫn ngắn sang clip kế tiếp.
// prev được truyền theo ngữ cảnh nhưng prompt cấm nhắc lại clip trước đó.
func ComposeTransition(topic string, prev, next SourceItem) (string, error) {
	userPrompt := fmt.Sprintf(
		`The podcast is about "%s". The listener just heard "%s". Write one short spoken transition leading into the next clip: "%s" from the channel %s. Lead into the next clip only, do not mention the previous clip. No adjectives. One or two sentences, spoken style. Return plain text only.`,
		topic, prev.Title, next.Title, next.ChannelTitle,
	)

	text, err := GeminiGenerateText(transitionSystemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("gemini trả transition rỗng")
	}
	return text, nil
}

// ComposeIntro nhờ Gemini viết lời giới thiệu mở đầu episode từ danh sách topic
func ComposeIntro(outline *Outline) (string, error) {
	userPrompt := fmt.Sprintf(
		`Write a short spoken introduction for a podcast episode titled "%s". The episode covers these topics in order: %s. Welcome the listener and preview what is coming. Two or three sentences, spoken style, plain text only.`,
		outline.EpisodeTitle, strings.Join(outline.Topics, "; "),
	)

	text, err := GeminiGenerateText(transitionSystemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("gemini trả intro rỗng")
	}
	return text, nil
}
