package services

import (
	"fmt"
)

// Outline là dàn ý của một episode, bất biến sau khi tạo.
// Thứ tự topics quyết định cấu trúc episode từ đầu đến cuối.
type Outline struct {
	EpisodeTitle       string   `json:"episode_title"`
	EpisodeDescription string   `json:"episode_description"`
	Topics             []string `json:"topics"`
}

const outlineSystemPrompt = `You are a podcast producer. You plan short episodes that stitch together clips from existing videos around a theme. Always answer with valid JSON only, no markdown.`

// GenerateOutline nhờ Gemini tạo dàn ý episode từ query của người dùng
func GenerateOutline(query string, episodeLength float64) (*Outline, error) {
	userPrompt := fmt.Sprintf(
		`Plan a podcast episode about "%s", roughly %.0f seconds long. Return JSON with this exact shape: {"episode_title": string, "episode_description": string, "topics": [string]}. Use between 2 and 5 topics, each topic a short phrase describing one segment of the episode, ordered as they should play.`,
		query, episodeLength,
	)

	var outline Outline
	if err := GeminiGenerateJSON(outlineSystemPrompt, userPrompt, &outline); err != nil {
		return nil, fmt.Errorf("không tạo được outline: %v", err)
	}
	if outline.EpisodeTitle == "" || len(outline.Topics) == 0 {
		return nil, fmt.Errorf("outline thiếu title hoặc topics")
	}
	return &outline, nil
}
