package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Tên file tạm cố định bên trong thư mục của mỗi run
var artifactPatterns = []string{
	"intro.mp3",
	"clip_*.mp3",
	"transition_*.mp3",
	"output.mp3",
}

func workdirBase() string {
	if dir := os.Getenv("WORKDIR"); dir != "" {
		return dir
	}
	return "tmp"
}

// NewRunDir cấp 1 thư mục làm việc riêng cho mỗi run để các request song song
// không ghi đè file của nhau.
func NewRunDir() (string, error) {
	dir := filepath.Join(workdirBase(), uuid.New().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("không tạo được thư mục làm việc: %v", err)
	}
	return dir, nil
}

// SweepStaleRunDirs dọn các thư mục run còn sót từ process trước bị chết giữa
// chừng. Chỉ gọi lúc khởi động, khi chưa có run nào đang chạy. File tạm trong
// từng thư mục bị xóa theo pattern; thư mục chỉ bị gỡ khi đã rỗng.
func SweepStaleRunDirs() error {
	entries, err := os.ReadDir(workdirBase())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(workdirBase(), entry.Name())
		if err := CleanupArtifacts(dir); err != nil {
			return err
		}
		_ = os.Remove(dir) // còn file lạ thì giữ lại thư mục
	}
	return nil
}

// CleanupArtifacts xóa mọi file khớp pattern file tạm trong dir.
// Idempotent, file không tồn tại thì bỏ qua.
func CleanupArtifacts(dir string) error {
	for _, pattern := range artifactPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return err
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("không xóa được file tạm %s: %v", m, err)
			}
		}
	}
	return nil
}

// RemoveRunDir xóa cả thư mục run sau khi xong
func RemoveRunDir(dir string) {
	_ = os.RemoveAll(dir)
}
