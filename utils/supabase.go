package utils

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

// UploadAudioFileToSupabase upload một file audio cục bộ lên Supabase Storage
// với tên ngẫu nhiên (giữ nguyên extension). Path: uploads/audio/<uuid>.<ext>
func UploadAudioFileToSupabase(localPath string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("không đọc được file %s: %v", localPath, err)
	}

	ext := filepath.Ext(localPath)
	if ext == "" {
		ext = ".mp3"
	}
	filename := uuid.New().String() + ext

	contentType := "audio/mpeg"
	return UploadBytesToSupabase(data, filename, contentType)
}

// UploadBytesToSupabase upload dữ liệu byte (vd .mp3) lên Supabase Storage
// Path: uploads/audio/<filename>
func UploadBytesToSupabase(data []byte, filename string, contentType string) (string, error) {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")

	storageClient := storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)

	objectPath := fmt.Sprintf("audio/%s", filename) // Path dưới bucket uploads
	buf := bytes.NewBuffer(data)

	options := storage.FileOptions{
		ContentType: &contentType,
	}

	_, err := storageClient.UploadFile("uploads", objectPath, buf, options)
	if err != nil {
		return "", err
	}

	// Public URL: uploads/audio/<filename>
	publicURL := fmt.Sprintf("%s/storage/v1/object/public/uploads/%s", supabaseURL, objectPath)
	return publicURL, nil
}

// DeleteFileFromSupabase nhận public URL chứa "/storage/v1/object/"
// và gọi API Supabase Storage để xóa object.
func DeleteFileFromSupabase(publicURL string) error {
	if publicURL == "" {
		return nil
	}

	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")
	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("SUPABASE_URL hoặc SUPABASE_KEY chưa cấu hình")
	}

	idx := strings.Index(publicURL, "/storage/v1/object/")
	if idx == -1 {
		return fmt.Errorf("không xác định được đường dẫn object trong URL: %s", publicURL)
	}

	rest := publicURL[idx+len("/storage/v1/object/"):]
	rest = strings.TrimPrefix(rest, "public/")

	// rest => "<bucket>/<path/to/object...>"
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 {
		return fmt.Errorf("không parse được bucket/object từ URL: %s", publicURL)
	}
	bucket := parts[0]
	object := parts[1]
	if qIdx := strings.Index(object, "?"); qIdx != -1 {
		object = object[:qIdx]
	}
	if u, err := url.PathUnescape(object); err == nil {
		object = u
	}

	deleteURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", strings.TrimRight(supabaseURL, "/"), bucket, object)

	req, err := http.NewRequest("DELETE", deleteURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+supabaseKey)
	req.Header.Set("apikey", supabaseKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("xóa file Supabase thất bại: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
