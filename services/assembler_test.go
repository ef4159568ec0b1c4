package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/Slingshot-Innovation/podcast-builder/models"
)

// recorder gom lại mọi thứ pipeline đã lưu / đã nối trong 1 lần chạy test
type recorder struct {
	mu          sync.Mutex
	episode     *models.Episode
	intros      []models.Intro
	clips       []models.Clip
	transitions []models.Transition
	updates     []map[string]interface{}
	concatPaths []string
}

func newTestAssembler(t *testing.T, rec *recorder, topics []string, selections map[int]*Selection) *Assembler {
	t.Helper()
	runDir := t.TempDir()

	return &Assembler{
		generateOutline: func(query string, episodeLength float64) (*Outline, error) {
			return &Outline{
				EpisodeTitle:       "Test Episode",
				EpisodeDescription: "desc",
				Topics:             topics,
			}, nil
		},
		composeIntro: func(outline *Outline) (string, error) {
			return "welcome to the show", nil
		},
		selectSegment: func(topic string, target float64) (*Selection, error) {
			for i, tp := range topics {
				if tp == topic {
					return selections[i], nil
				}
			}
			return nil, nil
		},
		downloadClip: func(ctx context.Context, videoID string, start, end float64, dest string) error {
			return nil
		},
		trimClip: func(ctx context.Context, path string, seconds float64) error {
			return nil
		},
		composeTransition: func(topic string, prev, next SourceItem) (string, error) {
			return fmt.Sprintf("next up: %s", next.Title), nil
		},
		synthesize: func(localPath, text string) error {
			return nil
		},
		concat: func(ctx context.Context, paths []string, dest string) error {
			rec.mu.Lock()
			rec.concatPaths = append([]string(nil), paths...)
			rec.mu.Unlock()
			return nil
		},
		mp3Duration: func(path string) (float64, error) {
			return 10, nil
		},
		upload: func(localPath string) (string, error) {
			return "https://storage.example/" + filepath.Base(localPath), nil
		},
		newRunDir: func() (string, error) {
			return runDir, nil
		},
		notify:            func(episodeID, state string, progress float64, errMsg string) {},
		notifyListChanged: func() {},

		createEpisode: func(ep *models.Episode) error {
			ep.ID = uuid.New()
			created := *ep // chụp lại trạng thái lúc insert
			rec.mu.Lock()
			rec.episode = &created
			rec.mu.Unlock()
			return nil
		},
		createIntro: func(intro *models.Intro) error {
			rec.mu.Lock()
			rec.intros = append(rec.intros, *intro)
			rec.mu.Unlock()
			return nil
		},
		createClip: func(clip *models.Clip) error {
			rec.mu.Lock()
			rec.clips = append(rec.clips, *clip)
			rec.mu.Unlock()
			return nil
		},
		createTransition: func(tr *models.Transition) error {
			rec.mu.Lock()
			rec.transitions = append(rec.transitions, *tr)
			rec.mu.Unlock()
			return nil
		},
		updateEpisode: func(ep *models.Episode, updates map[string]interface{}) error {
			rec.mu.Lock()
			rec.updates = append(rec.updates, updates)
			rec.mu.Unlock()
			return nil
		},
	}
}

func sel(videoID string, start, end float64) *Selection {
	return &Selection{
		Source: SourceItem{ID: videoID, Title: "video " + videoID, ChannelTitle: "channel"},
		Range:  SelectedRange{StartTime: start, EndTime: end, Reason: "interesting"},
	}
}

func baseNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	return names
}

func TestAssembleEpisodeTwoTopics(t *testing.T) {
	rec := &recorder{}
	topics := []string{"rockets", "mars"}
	a := newTestAssembler(t, rec, topics, map[int]*Selection{
		0: sel("vid0", 5, 35),
		1: sel("vid1", 12, 40),
	})

	episode, err := a.AssembleEpisode(context.Background(), "space exploration", 300)
	if err != nil {
		t.Fatalf("AssembleEpisode: %v", err)
	}

	if rec.episode == nil {
		t.Fatal("episode row was never created")
	}
	if rec.episode.TotalLength != 0 {
		t.Errorf("episode created with length %v, want 0", rec.episode.TotalLength)
	}
	if len(rec.intros) != 1 {
		t.Fatalf("got %d intro rows, want 1", len(rec.intros))
	}
	if len(rec.clips) != 2 {
		t.Fatalf("got %d clip rows, want 2", len(rec.clips))
	}
	for i, clip := range rec.clips {
		if clip.Index != i {
			t.Errorf("clip %d persisted with index %d", i, clip.Index)
		}
	}
	if len(rec.transitions) != 1 {
		t.Fatalf("got %d transition rows, want 1 (index 0 suppressed)", len(rec.transitions))
	}
	if rec.transitions[0].Index != 1 {
		t.Errorf("transition persisted at index %d, want 1", rec.transitions[0].Index)
	}

	// Thứ tự nối đúng quy tắc: intro, clip_0, transition_1, clip_1
	want := []string{"intro.mp3", "clip_0.mp3", "transition_1.mp3", "clip_1.mp3"}
	got := baseNames(rec.concatPaths)
	if len(got) != len(want) {
		t.Fatalf("concat got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("concat order got %v, want %v", got, want)
		}
	}

	if len(rec.updates) != 1 {
		t.Fatalf("got %d episode updates, want 1", len(rec.updates))
	}
	final := rec.updates[0]
	if final["status"] != "completed" {
		t.Errorf("final status = %v", final["status"])
	}
	if length, ok := final["total_length"].(float64); !ok || length <= 0 {
		t.Errorf("final length = %v, want > 0", final["total_length"])
	}
	if url, ok := final["audio_url"].(string); !ok || url == "" {
		t.Errorf("final audio_url = %v, want non-empty", final["audio_url"])
	}
	if episode.AudioURL == "" {
		t.Error("returned episode has empty audio URL")
	}
}

func TestAssembleEpisodeSkippedTopic(t *testing.T) {
	rec := &recorder{}
	topics := []string{"rockets", "mars", "moons"}
	// topic 1 không chọn được đoạn nào
	a := newTestAssembler(t, rec, topics, map[int]*Selection{
		0: sel("vid0", 5, 35),
		2: sel("vid2", 1, 20),
	})

	if _, err := a.AssembleEpisode(context.Background(), "space", 300); err != nil {
		t.Fatalf("AssembleEpisode: %v", err)
	}

	// Topic bị bỏ qua không có row nào và không có chỗ trong file nối
	if len(rec.clips) != 2 {
		t.Fatalf("got %d clip rows, want 2", len(rec.clips))
	}
	for _, clip := range rec.clips {
		if clip.Index == 1 {
			t.Error("skipped topic produced a clip row")
		}
	}
	for _, tr := range rec.transitions {
		if tr.Index == 0 {
			t.Error("transition persisted at index 0")
		}
		if tr.Index == 1 {
			t.Error("skipped topic produced a transition row")
		}
	}

	want := []string{"intro.mp3", "clip_0.mp3", "transition_2.mp3", "clip_2.mp3"}
	got := baseNames(rec.concatPaths)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("concat order got %v, want %v", got, want)
	}
}

func TestAssembleEpisodeTransitionFailureKeepsClip(t *testing.T) {
	rec := &recorder{}
	topics := []string{"rockets", "mars", "moons"}
	a := newTestAssembler(t, rec, topics, map[int]*Selection{
		0: sel("vid0", 5, 35),
		1: sel("vid1", 12, 40),
		2: sel("vid2", 1, 20),
	})

	// Viết transition dẫn vào clip 1 thất bại, các transition khác ghi lại
	// clip liền trước để kiểm tra ngữ cảnh vẫn được cập nhật
	var prevSeen []string
	a.composeTransition = func(topic string, prev, next SourceItem) (string, error) {
		if next.ID == "vid1" {
			return "", fmt.Errorf("model không phản hồi")
		}
		prevSeen = append(prevSeen, prev.Title)
		return fmt.Sprintf("next up: %s", next.Title), nil
	}

	if _, err := a.AssembleEpisode(context.Background(), "space", 300); err != nil {
		t.Fatalf("AssembleEpisode: %v", err)
	}

	// Clip vẫn được lưu đủ dù transition của nó hỏng
	if len(rec.clips) != 3 {
		t.Fatalf("got %d clip rows, want 3", len(rec.clips))
	}
	for _, tr := range rec.transitions {
		if tr.Index == 1 {
			t.Error("failed transition was persisted")
		}
	}
	if len(rec.transitions) != 1 || rec.transitions[0].Index != 2 {
		t.Fatalf("transitions persisted = %+v, want only index 2", rec.transitions)
	}

	// Transition 2 phải dẫn tiếp từ clip 1, không phải clip 0
	if len(prevSeen) != 1 || prevSeen[0] != "video vid1" {
		t.Errorf("transition 2 composed with prev %v, want [video vid1]", prevSeen)
	}

	want := []string{"intro.mp3", "clip_0.mp3", "clip_1.mp3", "transition_2.mp3", "clip_2.mp3"}
	got := baseNames(rec.concatPaths)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("concat order got %v, want %v", got, want)
	}

	if len(rec.updates) != 1 || rec.updates[0]["status"] != "completed" {
		t.Errorf("episode not completed: %v", rec.updates)
	}
}

func TestAssembleEpisodeAllTopicsSkipped(t *testing.T) {
	rec := &recorder{}
	a := newTestAssembler(t, rec, []string{"rockets"}, map[int]*Selection{})

	_, err := a.AssembleEpisode(context.Background(), "space", 300)
	if err == nil {
		t.Fatal("expected error when no topic yields a clip")
	}
	if len(rec.updates) != 1 || rec.updates[0]["status"] != "failed" {
		t.Errorf("episode not marked failed: %v", rec.updates)
	}
}

func TestRunTopicPoolPreservesIndexes(t *testing.T) {
	rec := &recorder{}
	topics := []string{"a", "b", "c", "d", "e"}
	selections := map[int]*Selection{}
	for i := range topics {
		selections[i] = sel(fmt.Sprintf("vid%d", i), 1, 10)
	}
	a := newTestAssembler(t, rec, topics, selections)

	results := a.runTopicPool(context.Background(), topics, 30, t.TempDir())
	if len(results) != len(topics) {
		t.Fatalf("got %d results, want %d", len(results), len(topics))
	}
	for i, res := range results {
		if res.Index != i {
			t.Errorf("result %d carries index %d", i, res.Index)
		}
		if res.Topic != topics[i] {
			t.Errorf("result %d carries topic %q", i, res.Topic)
		}
		if res.Skipped {
			t.Errorf("result %d unexpectedly skipped: %s", i, res.SkipReason)
		}
	}
}

func TestOrderArtifacts(t *testing.T) {
	intro := artifact{Kind: artifactIntro, LocalPath: "intro.mp3"}
	clips := map[int]artifact{
		0: {Kind: artifactClip, Index: 0, LocalPath: "clip_0.mp3"},
		2: {Kind: artifactClip, Index: 2, LocalPath: "clip_2.mp3"},
	}
	transitions := map[int]artifact{
		2: {Kind: artifactTransition, Index: 2, LocalPath: "transition_2.mp3"},
		3: {Kind: artifactTransition, Index: 3, LocalPath: "transition_3.mp3"}, // transition dư ở cuối
	}

	ordered := orderArtifacts(intro, clips, transitions, 3)
	want := []string{"intro.mp3", "clip_0.mp3", "transition_2.mp3", "clip_2.mp3", "transition_3.mp3"}
	got := artifactPaths(ordered)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
