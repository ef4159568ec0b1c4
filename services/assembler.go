package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/Slingshot-Innovation/podcast-builder/models"
	"github.com/Slingshot-Innovation/podcast-builder/utils"
	"github.com/Slingshot-Innovation/podcast-builder/ws"
)

// Các trạng thái của pipeline lắp ráp episode
const (
	StateOutlining     = "outlining"
	StateIntro         = "intro_producing"
	StateTopicLoop     = "topic_loop"
	StateConcatenating = "concatenating"
	StateFinalizing    = "finalizing"
	StateDone          = "done"
	StateFailed        = "failed"
)

// Số worker chạy song song khi chọn + tải clip cho các topic
const topicWorkers = 3

type artifactKind string

const (
	artifactIntro      artifactKind = "intro"
	artifactClip       artifactKind = "clip"
	artifactTransition artifactKind = "transition"
)

// artifact là 1 file audio cục bộ đã tạo xong, chờ nối
type artifact struct {
	Kind      artifactKind
	Index     int
	LocalPath string
	Length    float64
}

// topicResult là kết quả của 1 topic sau pha chọn + tải clip.
// Skipped = topic không đóng góp clip/transition nhưng run vẫn tiếp tục.
type topicResult struct {
	Index      int
	Topic      string
	Selection  *Selection
	ClipPath   string
	ClipLength float64
	Skipped    bool
	SkipReason string
}

// Assembler điều phối toàn bộ pipeline. Các capability đều là function field
// để test có thể inject bản giả (kiểu commandRunner của media.go).
type Assembler struct {
	DB *gorm.DB

	generateOutline   func(query string, episodeLength float64) (*Outline, error)
	composeIntro      func(outline *Outline) (string, error)
	selectSegment     func(topic string, targetClipLength float64) (*Selection, error)
	downloadClip      func(ctx context.Context, videoID string, start, end float64, dest string) error
	trimClip          func(ctx context.Context, path string, seconds float64) error
	composeTransition func(topic string, prev, next SourceItem) (string, error)
	synthesize        func(localPath, text string) error
	concat            func(ctx context.Context, paths []string, dest string) error
	mp3Duration       func(path string) (float64, error)
	upload            func(localPath string) (string, error)
	newRunDir         func() (string, error)
	notify            func(episodeID, state string, progress float64, errMsg string)
	notifyListChanged func()

	// PersistenceGateway: mỗi thao tác là 1 insert/update đơn lẻ, không retry
	createEpisode    func(ep *models.Episode) error
	createIntro      func(intro *models.Intro) error
	createClip       func(clip *models.Clip) error
	createTransition func(tr *models.Transition) error
	updateEpisode    func(ep *models.Episode, updates map[string]interface{}) error
}

func NewAssembler(db *gorm.DB) *Assembler {
	return &Assembler{
		DB:                db,
		generateOutline:   GenerateOutline,
		composeIntro:      ComposeIntro,
		selectSegment:     SelectSegment,
		downloadClip:      DownloadClipAudio,
		trimClip:          TrimToLength,
		composeTransition: ComposeTransition,
		synthesize:        SynthesizeToFile,
		concat:            ConcatAll,
		mp3Duration:       GetMP3Duration,
		upload:            utils.UploadAudioFileToSupabase,
		newRunDir:         NewRunDir,
		notify:            ws.SendEpisodeStatus,
		notifyListChanged: ws.BroadcastEpisodeListChanged,

		createEpisode: func(ep *models.Episode) error {
			return db.Create(ep).Error
		},
		createIntro: func(intro *models.Intro) error {
			return db.Create(intro).Error
		},
		createClip: func(clip *models.Clip) error {
			return db.Create(clip).Error
		},
		createTransition: func(tr *models.Transition) error {
			return db.Create(tr).Error
		},
		updateEpisode: func(ep *models.Episode, updates map[string]interface{}) error {
			return db.Model(ep).Updates(updates).Error
		},
	}
}

// AssembleEpisode chạy pipeline từ query đến episode hoàn chỉnh.
// Trả về episode ngay cả khi thất bại (để caller biết id), kèm error.
func (a *Assembler) AssembleEpisode(ctx context.Context, query string, episodeLength float64) (*models.Episode, error) {
	runDir, err := a.newRunDir()
	if err != nil {
		return nil, err
	}
	defer RemoveRunDir(runDir)

	// === Outlining ===
	outline, err := a.generateOutline(query, episodeLength)
	if err != nil {
		return nil, err
	}

	episode := models.Episode{
		Title:       outline.EpisodeTitle,
		Slug:        slug.Make(outline.EpisodeTitle),
		Description: outline.EpisodeDescription,
		TotalLength: 0,
		Status:      "processing",
	}
	if err := a.createEpisode(&episode); err != nil {
		return nil, fmt.Errorf("không tạo được episode: %v", err)
	}
	a.notifyListChanged()
	a.notify(episode.ID.String(), StateOutlining, 0.1, "")

	targetClipLength := episodeLength / float64(len(outline.Topics))

	fail := func(err error) (*models.Episode, error) {
		_ = a.updateEpisode(&episode, map[string]interface{}{"status": "failed"})
		a.notify(episode.ID.String(), StateFailed, 1, err.Error())
		a.notifyListChanged()
		return &episode, err
	}

	// === IntroProducing ===
	a.notify(episode.ID.String(), StateIntro, 0.2, "")
	introArt, err := a.produceIntro(outline, runDir, episode.ID)
	if err != nil {
		return fail(err)
	}

	// === TopicLoop: chọn + tải clip song song, giữ thứ tự qua index ===
	a.notify(episode.ID.String(), StateTopicLoop, 0.3, "")
	results := a.runTopicPool(ctx, outline.Topics, targetClipLength, runDir)

	// Pha tuần tự: upload, lưu row, transition theo đúng thứ tự topic
	clips := make(map[int]artifact)
	transitions := make(map[int]artifact)
	runningTotal := introArt.Length
	prevClip := SourceItem{Title: "Introduction"} // placeholder trước clip thật đầu tiên

	for _, res := range results {
		if res.Skipped {
			log.Printf("Topic %d (%q) bị bỏ qua: %s", res.Index, res.Topic, res.SkipReason)
			continue
		}

		clipURL, err := a.upload(res.ClipPath)
		if err != nil {
			return fail(fmt.Errorf("upload clip %d thất bại: %v", res.Index, err))
		}
		clip := models.Clip{
			EpisodeID:   episode.ID,
			Index:       res.Index,
			URL:         clipURL,
			Title:       res.Selection.Source.Title,
			Description: res.Selection.Range.Reason,
			Length:      res.ClipLength,
			VideoID:     res.Selection.Source.ID,
		}
		if err := a.createClip(&clip); err != nil {
			return fail(fmt.Errorf("không lưu được clip %d: %v", res.Index, err))
		}
		clips[res.Index] = artifact{Kind: artifactClip, Index: res.Index, LocalPath: res.ClipPath, Length: res.ClipLength}
		runningTotal += res.ClipLength

		// Transition ở index 0 không bao giờ có: intro đóng vai trò đó
		if res.Index > 0 {
			art, err := a.produceTransition(res, prevClip, runDir, episode.ID)
			if err != nil {
				// Lỗi transition chỉ bỏ transition đó, clip vẫn giữ
				log.Printf("Bỏ transition %d: %v", res.Index, err)
			} else {
				transitions[res.Index] = *art
				runningTotal += art.Length
			}
		}

		// Luôn cập nhật clip trước đó, kể cả khi transition không được lưu
		prevClip = res.Selection.Source
	}

	if len(clips) == 0 {
		return fail(fmt.Errorf("không topic nào có clip dùng được"))
	}

	// === Concatenating ===
	a.notify(episode.ID.String(), StateConcatenating, 0.8, "")
	ordered := orderArtifacts(introArt, clips, transitions, len(outline.Topics))
	outputPath := filepath.Join(runDir, "output.mp3")
	if err := a.concat(ctx, artifactPaths(ordered), outputPath); err != nil {
		return fail(err)
	}

	// === Finalizing ===
	a.notify(episode.ID.String(), StateFinalizing, 0.9, "")
	finalURL, err := a.upload(outputPath)
	if err != nil {
		return fail(fmt.Errorf("upload episode thất bại: %v", err))
	}
	finalLength, err := a.mp3Duration(outputPath)
	if err != nil {
		return fail(fmt.Errorf("không đo được thời lượng episode: %v", err))
	}

	updates := map[string]interface{}{
		"audio_url":    finalURL,
		"total_length": finalLength,
		"status":       "completed",
	}
	if err := a.updateEpisode(&episode, updates); err != nil {
		return fail(fmt.Errorf("không cập nhật được episode: %v", err))
	}
	episode.AudioURL = finalURL
	episode.TotalLength = finalLength
	episode.Status = "completed"

	log.Printf("Episode %s hoàn thành: %d clip, %d transition, tổng cộng dồn %.1fs, đo được %.1fs",
		episode.ID, len(clips), len(transitions), runningTotal, finalLength)

	a.notify(episode.ID.String(), StateDone, 1, "")
	a.notifyListChanged()
	return &episode, nil
}

// produceIntro: Gemini viết lời giới thiệu, TTS đọc, upload + lưu row index 0
func (a *Assembler) produceIntro(outline *Outline, runDir string, episodeID uuid.UUID) (artifact, error) {
	introText, err := a.composeIntro(outline)
	if err != nil {
		return artifact{}, fmt.Errorf("không viết được intro: %v", err)
	}

	introPath := filepath.Join(runDir, "intro.mp3")
	if err := a.synthesize(introPath, introText); err != nil {
		return artifact{}, fmt.Errorf("không đọc được intro: %v", err)
	}
	length, err := a.mp3Duration(introPath)
	if err != nil {
		return artifact{}, err
	}

	introURL, err := a.upload(introPath)
	if err != nil {
		return artifact{}, fmt.Errorf("upload intro thất bại: %v", err)
	}

	intro := models.Intro{
		EpisodeID:   episodeID,
		Index:       0,
		URL:         introURL,
		Title:       "Introduction",
		Description: introText,
		Length:      length,
	}
	if err := a.createIntro(&intro); err != nil {
		return artifact{}, fmt.Errorf("không lưu được intro: %v", err)
	}

	return artifact{Kind: artifactIntro, Index: 0, LocalPath: introPath, Length: length}, nil
}

// produceTransition: viết + đọc + upload + lưu transition dẫn vào clip res
func (a *Assembler) produceTransition(res topicResult, prevClip SourceItem, runDir string, episodeID uuid.UUID) (*artifact, error) {
	text, err := a.composeTransition(res.Topic, prevClip, res.Selection.Source)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(runDir, fmt.Sprintf("transition_%d.mp3", res.Index))
	if err := a.synthesize(path, text); err != nil {
		return nil, err
	}
	length, err := a.mp3Duration(path)
	if err != nil {
		return nil, err
	}

	url, err := a.upload(path)
	if err != nil {
		return nil, err
	}

	tr := models.Transition{
		EpisodeID:   episodeID,
		Index:       res.Index,
		URL:         url,
		Title:       fmt.Sprintf("Transition %d", res.Index),
		Description: text,
		Length:      length,
	}
	if err := a.createTransition(&tr); err != nil {
		return nil, err
	}

	return &artifact{Kind: artifactTransition, Index: res.Index, LocalPath: path, Length: length}, nil
}

// runTopicPool chạy pha chọn + tải clip cho các topic bằng worker pool giới
// hạn. Kết quả gắn index nên thứ tự cuối không phụ thuộc thứ tự hoàn thành.
func (a *Assembler) runTopicPool(ctx context.Context, topics []string, targetClipLength float64, runDir string) []topicResult {
	results := make([]topicResult, len(topics))

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := topicWorkers
	if len(topics) < workers {
		workers = len(topics)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = a.processTopic(ctx, i, topics[i], targetClipLength, runDir)
			}
		}()
	}

	for i := range topics {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// processTopic: SegmentSelector + ClipMaterializer cho 1 topic.
// Mọi lỗi ở đây chỉ làm topic bị bỏ qua, không làm hỏng cả run.
func (a *Assembler) processTopic(ctx context.Context, index int, topic string, targetClipLength float64, runDir string) topicResult {
	res := topicResult{Index: index, Topic: topic}

	sel, err := a.selectSegment(topic, targetClipLength)
	if err != nil {
		res.Skipped = true
		res.SkipReason = fmt.Sprintf("lỗi chọn đoạn: %v", err)
		return res
	}
	if sel == nil {
		res.Skipped = true
		res.SkipReason = "không có đoạn nào dùng được"
		return res
	}
	res.Selection = sel

	clipPath := filepath.Join(runDir, fmt.Sprintf("clip_%d.mp3", index))
	if err := a.downloadClip(ctx, sel.Source.ID, sel.Range.StartTime, sel.Range.EndTime, clipPath); err != nil {
		res.Skipped = true
		res.SkipReason = fmt.Sprintf("lỗi tải clip: %v", err)
		return res
	}

	wanted := sel.Range.EndTime - sel.Range.StartTime
	if err := a.trimClip(ctx, clipPath, wanted); err != nil {
		res.Skipped = true
		res.SkipReason = fmt.Sprintf("lỗi cắt clip: %v", err)
		return res
	}

	length, err := a.mp3Duration(clipPath)
	if err != nil {
		res.Skipped = true
		res.SkipReason = fmt.Sprintf("không đo được clip: %v", err)
		return res
	}

	res.ClipPath = clipPath
	res.ClipLength = length
	return res
}

// orderArtifacts xếp thứ tự file để nối: intro trước, rồi với mỗi topic i:
// transition[i] (chỉ khi i > 0) rồi clip[i]; topic bị bỏ qua thì không có gì
// thay thế. Transition dư ở index numTopics (nếu có) được nối cuối cùng.
func orderArtifacts(intro artifact, clips map[int]artifact, transitions map[int]artifact, numTopics int) []artifact {
	var ordered []artifact
	if intro.LocalPath != "" {
		ordered = append(ordered, intro)
	}
	for i := 0; i < numTopics; i++ {
		if i > 0 {
			if tr, ok := transitions[i]; ok {
				ordered = append(ordered, tr)
			}
		}
		if clip, ok := clips[i]; ok {
			ordered = append(ordered, clip)
		}
	}
	if tr, ok := transitions[numTopics]; ok {
		ordered = append(ordered, tr)
	}
	return ordered
}

func artifactPaths(arts []artifact) []string {
	paths := make([]string, 0, len(arts))
	for _, a := range arts {
		paths = append(paths, a.LocalPath)
	}
	return paths
}
