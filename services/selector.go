package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/Slingshot-Innovation/podcast-builder/utils"
)

// SelectedRange là đoạn thời gian Gemini chọn trong transcript của 1 video
type SelectedRange struct {
	StartTime float64
	EndTime   float64
	Reason    string
}

// Selection là kết quả cuối của SegmentSelector cho 1 topic
type Selection struct {
	Source SourceItem
	Range  SelectedRange
}

const selectorSystemPrompt = `You help build a podcast out of clips from existing videos. Always answer with valid JSON only, no markdown.`

// SelectSegment tìm đoạn video phù hợp nhất cho 1 topic.
// Trả về (nil, nil) khi topic không có đoạn nào dùng được (soft failure).
func SelectSegment(topic string, targetClipLength float64) (*Selection, error) {
	queries, err := generateSearchQueries(topic)
	if err != nil {
		return nil, err
	}

	// Gom toàn bộ ứng viên từ các query, không dedup
	var pool []SourceItem
	for _, q := range queries {
		items, err := SearchVideos(q)
		if err != nil {
			return nil, err
		}
		pool = append(pool, items...)
	}
	if len(pool) == 0 {
		return nil, nil
	}

	// Chọn đoạn cho từng ứng viên có transcript; ứng viên hỏng bị loại
	// khỏi vòng chọn đoạn nhưng vẫn nằm trong pool để xếp hạng
	ranges := make(map[int]SelectedRange)
	for i, cand := range pool {
		segments, err := FetchTranscript(cand.ID)
		if err != nil {
			log.Printf("Bỏ qua video %s: %v", cand.ID, err)
			continue
		}
		if len(segments) == 0 {
			continue
		}

		r, err := chooseRange(cand, segments, targetClipLength)
		if err != nil {
			log.Printf("Không chọn được đoạn cho video %s: %v", cand.ID, err)
			continue
		}
		if !ValidRange(r) {
			continue
		}
		ranges[i] = r
	}
	if len(ranges) == 0 {
		return nil, nil
	}

	winner, reason, err := rankCandidates(topic, pool)
	if err != nil {
		return nil, err
	}

	return ResolveWinner(pool, ranges, winner, reason), nil
}

// ValidRange kiểm tra đoạn được chọn có dùng được không.
// Mốc thời gian bằng 0 coi như "không chọn được" (chính sách giữ nguyên từ
// phiên bản gốc: đoạn bắt đầu đúng t=0 không phân biệt được với N/A).
func ValidRange(r SelectedRange) bool {
	if r.StartTime == 0 || r.EndTime == 0 {
		return false
	}
	return r.EndTime > r.StartTime
}

// ResolveWinner đối chiếu index thắng cuộc (1-based) với các đoạn hợp lệ.
// Index ngoài [1, len(pool)] hoặc ứng viên thắng không có đoạn hợp lệ => nil.
func ResolveWinner(pool []SourceItem, ranges map[int]SelectedRange, winner int, reason string) *Selection {
	if winner < 1 || winner > len(pool) {
		return nil
	}
	r, ok := ranges[winner-1]
	if !ok {
		return nil
	}
	if reason != "" {
		r.Reason = reason
	}
	return &Selection{
		Source: pool[winner-1],
		Range:  r,
	}
}

// generateSearchQueries nhờ Gemini sinh ~3 query tìm kiếm từ topic
func generateSearchQueries(topic string) ([]string, error) {
	userPrompt := fmt.Sprintf(
		`Give me 3 YouTube search queries to find videos with interesting spoken content about: "%s". Return JSON: {"queries": [string]}.`,
		topic,
	)

	var out struct {
		Queries []string `json:"queries"`
	}
	if err := GeminiGenerateJSON(selectorSystemPrompt, userPrompt, &out); err != nil {
		return nil, fmt.Errorf("không sinh được search queries: %v", err)
	}
	if len(out.Queries) == 0 {
		return nil, fmt.Errorf("gemini không trả query nào")
	}
	return out.Queries, nil
}

// chooseRange nhờ Gemini chọn 1 đoạn trong transcript gần với độ dài mục tiêu
func chooseRange(cand SourceItem, segments []TranscriptSegment, targetClipLength float64) (SelectedRange, error) {
	userPrompt := fmt.Sprintf(
		`This is the transcript of the video "%s" (channel: %s). Pick the single most interesting continuous range, aiming for about %.0f seconds. Return JSON: {"start_time": string, "end_time": string, "reason": string}. Times are in seconds; use "N/A" if no good range exists.

Transcript:
%s`,
		cand.Title, cand.ChannelTitle, targetClipLength, FormatTranscript(segments),
	)

	var out struct {
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Reason    string `json:"reason"`
	}
	if err := GeminiGenerateJSON(selectorSystemPrompt, userPrompt, &out); err != nil {
		return SelectedRange{}, err
	}

	start, err := utils.ConvertStringToFloat(out.StartTime)
	if err != nil {
		return SelectedRange{}, err
	}
	end, err := utils.ConvertStringToFloat(out.EndTime)
	if err != nil {
		return SelectedRange{}, err
	}

	return SelectedRange{StartTime: start, EndTime: end, Reason: out.Reason}, nil
}

// rankCandidates nhờ Gemini xếp hạng toàn bộ pool, trả index 1-based
func rankCandidates(topic string, pool []SourceItem) (int, string, error) {
	var b strings.Builder
	for i, cand := range pool {
		fmt.Fprintf(&b, "%d. %s — %s (%s)\n", i+1, cand.Title, cand.Description, cand.ChannelTitle)
	}

	userPrompt := fmt.Sprintf(
		`These are candidate videos for the podcast topic "%s". Pick the best one. Return JSON: {"winner": number, "reason": string} where winner is the 1-based index from the list.

Candidates:
%s`,
		topic, b.String(),
	)

	var out struct {
		Winner int    `json:"winner"`
		Reason string `json:"reason"`
	}
	if err := GeminiGenerateJSON(selectorSystemPrompt, userPrompt, &out); err != nil {
		return 0, "", fmt.Errorf("không xếp hạng được ứng viên: %v", err)
	}
	return out.Winner, out.Reason, nil
}
