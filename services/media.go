package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	ytdlpCommand  = "yt-dlp"
	ffmpegCommand = "ffmpeg"
)

// commandRunner cho phép test inject runner giả thay vì chạy binary thật
type commandRunner func(ctx context.Context, name string, args ...string) error

var runCommand commandRunner = func(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// DownloadClipAudio tải audio của video trong khoảng [start, end] (giây),
// chất lượng audio cao nhất, transcode sang MP3 ngay khi stream.
func DownloadClipAudio(ctx context.Context, videoID string, start, end float64, dest string) error {
	if end <= start {
		return fmt.Errorf("khoảng thời gian không hợp lệ: %.2f-%.2f", start, end)
	}
	args := buildDownloadArgs(videoID, start, end, dest)
	if err := runCommand(ctx, ytdlpCommand, args...); err != nil {
		return fmt.Errorf("tải clip %s thất bại: %w", videoID, err)
	}
	if _, err := os.Stat(dest); err != nil {
		return fmt.Errorf("yt-dlp không tạo file output: %w", err)
	}
	return nil
}

func buildDownloadArgs(videoID string, start, end float64, dest string) []string {
	return []string{
		"-q",
		"--no-playlist",
		"-f", "bestaudio",
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "0",
		"--download-sections", fmt.Sprintf("*%.2f-%.2f", start, end),
		"--force-keyframes-at-cuts",
		"-o", dest,
		"https://www.youtube.com/watch?v=" + videoID,
	}
}

// TrimToLength cắt lại file về đúng số giây yêu cầu (cắt phòng hờ, vì
// yt-dlp cắt theo keyframe nên có thể dư vài giây). Thay file tại chỗ.
func TrimToLength(ctx context.Context, path string, seconds float64) error {
	if seconds <= 0 {
		return fmt.Errorf("độ dài cắt không hợp lệ: %.2f", seconds)
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmpPath := filepath.Join(dir, ".trim-"+base+".tmp.mp3")

	args := buildTrimArgs(path, tmpPath, seconds)
	if err := runCommand(ctx, ffmpegCommand, args...); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("cắt file %s thất bại: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func buildTrimArgs(src, dst string, seconds float64) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-t", fmt.Sprintf("%.2f", seconds),
		"-c", "copy",
		dst,
	}
}

// ConcatAll nối các file audio theo đúng thứ tự truyền vào bằng 1 filter
// graph concat duy nhất, ra 1 stream MP3. Không chèn khoảng lặng, không
// đổi thứ tự.
func ConcatAll(ctx context.Context, paths []string, dest string) error {
	if len(paths) == 0 {
		return fmt.Errorf("không có file nào để nối")
	}
	args := buildConcatArgs(paths, dest)
	if err := runCommand(ctx, ffmpegCommand, args...); err != nil {
		return fmt.Errorf("nối audio thất bại: %w", err)
	}
	if _, err := os.Stat(dest); err != nil {
		return fmt.Errorf("ffmpeg không tạo file output: %w", err)
	}
	return nil
}

func buildConcatArgs(paths []string, dest string) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	for _, p := range paths {
		args = append(args, "-i", p)
	}

	var filter strings.Builder
	for i := range paths {
		fmt.Fprintf(&filter, "[%d:a]", i)
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=0:a=1[out]", len(paths))

	args = append(args,
		"-filter_complex", filter.String(),
		"-map", "[out]",
		dest,
	)
	return args
}
