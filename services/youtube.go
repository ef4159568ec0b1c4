package services

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Mỗi query chỉ lấy 1 trang kết quả
const searchPageSize = 5

// SourceItem là video nguồn từ YouTube, chỉ đọc, không bao giờ sửa
type SourceItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channel_title"`
}

// SearchVideos tìm video có phụ đề theo query, tối đa searchPageSize kết quả
func SearchVideos(query string) ([]SourceItem, error) {
	ctx := context.Background()

	svc, err := youtube.NewService(ctx, option.WithAPIKey(os.Getenv("YOUTUBE_API_KEY")))
	if err != nil {
		return nil, fmt.Errorf("không thể tạo YouTube client: %v", err)
	}

	call := svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		VideoCaption("closedCaption").
		MaxResults(searchPageSize)

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("lỗi tìm kiếm YouTube: %v", err)
	}

	items := make([]SourceItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.Id == nil || it.Id.VideoId == "" || it.Snippet == nil {
			continue
		}
		items = append(items, SourceItem{
			ID:           it.Id.VideoId,
			Title:        it.Snippet.Title,
			Description:  it.Snippet.Description,
			ChannelTitle: it.Snippet.ChannelTitle,
		})
	}
	return items, nil
}
