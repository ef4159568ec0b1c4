package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanupArtifacts(t *testing.T) {
	dir := t.TempDir()

	// File tạm còn sót từ run hỏng trước đó
	leftovers := []string{"intro.mp3", "clip_0.mp3", "clip_7.mp3", "transition_3.mp3", "output.mp3"}
	for _, name := range leftovers {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	keep := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(keep, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CleanupArtifacts(dir); err != nil {
		t.Fatalf("CleanupArtifacts: %v", err)
	}

	for _, name := range leftovers {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s was not removed", name)
		}
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("unrelated file was removed: %v", err)
	}

	// Idempotent: chạy lại trên thư mục sạch không được lỗi
	if err := CleanupArtifacts(dir); err != nil {
		t.Errorf("second cleanup: %v", err)
	}
}

func TestSweepStaleRunDirs(t *testing.T) {
	base := t.TempDir()
	t.Setenv("WORKDIR", base)

	// Run cũ bị chết giữa chừng, còn nguyên file tạm
	stale := filepath.Join(base, "0b7a2d1e-dead-dead-dead-000000000001")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"intro.mp3", "clip_1.mp3", "output.mp3"} {
		if err := os.WriteFile(filepath.Join(stale, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	// Run cũ có thêm file lạ: file tạm bị xóa nhưng thư mục được giữ lại
	mixed := filepath.Join(base, "0b7a2d1e-dead-dead-dead-000000000002")
	if err := os.MkdirAll(mixed, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(mixed, "transition_1.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	keep := filepath.Join(mixed, "notes.txt")
	if err := os.WriteFile(keep, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := SweepStaleRunDirs(); err != nil {
		t.Fatalf("SweepStaleRunDirs: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale run dir %s not removed", stale)
	}
	if _, err := os.Stat(filepath.Join(mixed, "transition_1.mp3")); !os.IsNotExist(err) {
		t.Error("leftover artifact in mixed dir not removed")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("unrelated file was removed: %v", err)
	}

	// Base chưa tồn tại thì coi như không có gì để dọn
	t.Setenv("WORKDIR", filepath.Join(base, "does-not-exist"))
	if err := SweepStaleRunDirs(); err != nil {
		t.Errorf("sweep of missing base: %v", err)
	}
}

func TestNewRunDirIsolatesRuns(t *testing.T) {
	t.Setenv("WORKDIR", t.TempDir())

	dir1, err := NewRunDir()
	if err != nil {
		t.Fatalf("NewRunDir: %v", err)
	}
	dir2, err := NewRunDir()
	if err != nil {
		t.Fatalf("NewRunDir: %v", err)
	}
	if dir1 == dir2 {
		t.Errorf("two runs share the same directory %s", dir1)
	}

	for _, d := range []string{dir1, dir2} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("run dir %s not created: %v", d, err)
		}
	}

	RemoveRunDir(dir1)
	if _, err := os.Stat(dir1); !os.IsNotExist(err) {
		t.Errorf("run dir %s not removed", dir1)
	}
}
