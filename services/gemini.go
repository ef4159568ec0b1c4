package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// textGenerator cho phép test inject backend giả thay vì gọi Gemini thật
type textGenerator func(systemPrompt, userPrompt string) (string, error)

var generateText textGenerator = GeminiGenerateText

// Hàm gọn để xử lý prompt và trả kết quả từ Gemini
func GeminiGenerateText(systemPrompt, userPrompt string) (string, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return "", fmt.Errorf("không thể tạo Gemini client: %v", err)
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash")
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("lỗi Gemini xử lý: %v", err)
	}
	return textFromResponse(resp)
}

// textFromResponse lấy part đầu tiên; candidate bị safety block có Content nil
func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini không trả kết quả hợp lệ")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// GeminiGenerateJSON gọi Gemini và unmarshal kết quả vào struct của caller.
// Nếu JSON trả về không hợp lệ thì re-prompt đúng 1 lần kèm output lỗi để Gemini sửa.
func GeminiGenerateJSON(systemPrompt, userPrompt string, out interface{}) error {
	raw, err := generateText(systemPrompt, userPrompt)
	if err != nil {
		return err
	}

	clean := CleanGeminiJSON(raw)
	if err := json.Unmarshal([]byte(clean), out); err == nil {
		return nil
	}

	// Làm sạch không đủ => nhờ Gemini tự sửa JSON
	repairPrompt := fmt.Sprintf(
		"The following output was supposed to be valid JSON but failed to parse. "+
			"Return ONLY the corrected JSON, with no markdown and no commentary.\n\nOriginal request:\n%s\n\nInvalid output:\n%s",
		userPrompt, raw,
	)
	repaired, err := generateText(systemPrompt, repairPrompt)
	if err != nil {
		return err
	}

	clean = CleanGeminiJSON(repaired)
	if err := json.Unmarshal([]byte(clean), out); err != nil {
		return fmt.Errorf("gemini trả JSON không hợp lệ sau khi sửa: %v", err)
	}
	return nil
}

// CleanGeminiJSON bỏ code fence ```json ... ``` mà Gemini hay thêm vào
func CleanGeminiJSON(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "`")
	clean = strings.TrimPrefix(clean, "json")
	return strings.TrimSpace(clean)
}
