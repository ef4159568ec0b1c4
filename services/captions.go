package services

import (
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// TranscriptSegment là một dòng phụ đề với mốc thời gian, chỉ dùng để chọn đoạn
type TranscriptSegment struct {
	Text     string
	Start    float64
	Duration float64
}

type timedtextDoc struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Body  string `xml:",chardata"`
	} `xml:"text"`
}

// FetchTranscript lấy phụ đề tiếng Anh của video qua endpoint timedtext.
// Video không có phụ đề => trả về slice rỗng, không phải lỗi.
func FetchTranscript(videoID string) ([]TranscriptSegment, error) {
	endpoint := fmt.Sprintf(
		"https://video.google.com/timedtext?lang=en&v=%s",
		url.QueryEscape(videoID),
	)

	resp, err := http.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("không lấy được phụ đề video %s: %v", videoID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}

	var doc timedtextDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("phụ đề video %s không parse được: %v", videoID, err)
	}

	return ParseTimedtext(doc), nil
}

// ParseTimedtext đổi document timedtext sang danh sách segment theo thứ tự
func ParseTimedtext(doc timedtextDoc) []TranscriptSegment {
	segments := make([]TranscriptSegment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Body))
		if text == "" {
			continue
		}
		start, err := strconv.ParseFloat(t.Start, 64)
		if err != nil {
			continue
		}
		dur, _ := strconv.ParseFloat(t.Dur, 64)
		segments = append(segments, TranscriptSegment{
			Text:     text,
			Start:    start,
			Duration: dur,
		})
	}
	return segments
}

// FormatTranscript ghép các segment thành text có mốc thời gian để đưa vào prompt
func FormatTranscript(segments []TranscriptSegment) string {
	var b strings.Builder
	for _, s := range segments {
		fmt.Fprintf(&b, "[%.1f - %.1f] %s\n", s.Start, s.Start+s.Duration, s.Text)
	}
	return b.String()
}
