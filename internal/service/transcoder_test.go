package service

import (
	"context"
	"errors"
	"testing"

	"github.com/coursehub/coursehub-backend/internal/model"
	"github.com/coursehub/coursehub-backend/internal/relay"
	"github.com/coursehub/coursehub-backend/internal/repository"
)

type fakeVideoRepo struct {
	byKey     map[string]*model.Video
	updated   []*model.Video
	updateErr error
}

func newFakeVideoRepo(videos ...*model.Video) *fakeVideoRepo {
	r := &fakeVideoRepo{byKey: make(map[string]*model.Video)}
	for _, v := range videos {
		r.byKey[v.ObjectKey] = v
	}
	return r
}

func (r *fakeVideoRepo) CreateVideo(ctx context.Context, v *model.Video) (*model.Video, error) {
	r.byKey[v.ObjectKey] = v
	return v, nil
}

func (r *fakeVideoRepo) GetVideoByID(ctx context.Context, videoID string) (*model.Video, error) {
	for _, v := range r.byKey {
		if v.ID == videoID {
			return v, nil
		}
	}
	return nil, repository.ErrVideoNotFound
}

func (r *fakeVideoRepo) GetVideoByObjectKey(ctx context.Context, objectKey string) (*model.Video, error) {
	v, ok := r.byKey[objectKey]
	if !ok {
		return nil, repository.ErrVideoNotFound
	}
	return v, nil
}

func (r *fakeVideoRepo) UpdateVideo(ctx context.Context, v *model.Video) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.byKey[v.ObjectKey] = v
	r.updated = append(r.updated, v)
	return nil
}

func (r *fakeVideoRepo) GetVideosByOwner(ctx context.Context, ownerID string) ([]*model.Video, error) {
	return nil, nil
}

func (r *fakeVideoRepo) GetCompletedVideos(ctx context.Context) ([]*model.Video, error) {
	return nil, nil
}

func (r *fakeVideoRepo) DeleteVideo(ctx context.Context, videoID string) error {
	return nil
}

type fakeTrigger struct {
	calls []string
	err   error
}

func (t *fakeTrigger) Trigger(ctx context.Context, objectKey string) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	t.calls = append(t.calls, objectKey)
	return "task-1", nil
}

type fakeCounter struct {
	value        int64
	incErr       error
	decErr       error
	incrementsOK int
	decrementsOK int
}

func (c *fakeCounter) Increment(ctx context.Context) error {
	if c.incErr != nil {
		return c.incErr
	}
	c.value++
	c.incrementsOK++
	return nil
}

func (c *fakeCounter) Decrement(ctx context.Context) error {
	if c.decErr != nil {
		return c.decErr
	}
	c.value--
	c.decrementsOK++
	return nil
}

func (c *fakeCounter) Current(ctx context.Context) (int64, error) {
	return c.value, nil
}

type fakeNotifier struct {
	sent []struct {
		userID string
		msg    relay.Message
	}
	err error
}

func (n *fakeNotifier) DeliverOrQueue(ctx context.Context, userID string, msg relay.Message) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, struct {
		userID string
		msg    relay.Message
	}{userID, msg})
	return nil
}

type fakeStat struct {
	size int64
	err  error
}

func (s *fakeStat) StatUpload(ctx context.Context, objectKey string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.size, nil
}

func newService(repo *fakeVideoRepo, trigger *fakeTrigger, counter *fakeCounter, notifier *fakeNotifier) *TranscoderService {
	return NewTranscoderService(repo, trigger, counter, notifier, nil, false)
}

func queuedVideo(id, objectKey, ownerID string) *model.Video {
	return &model.Video{
		ID:        id,
		ObjectKey: objectKey,
		OwnerID:   ownerID,
		Progress:  model.VideoQueued,
	}
}

func TestDecodeObjectKey(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"uploads/videos/123-file.mp4", "uploads/videos/123-file.mp4"},
		{"uploads/videos/123-my+video.mp4", "uploads/videos/123-my video.mp4"},
		{"uploads/videos/123-caf%C3%A9.mp4", "uploads/videos/123-café.mp4"},
		{"uploads/videos/123-a%2Bb.mp4", "uploads/videos/123-a+b.mp4"},
	}
	for _, tc := range cases {
		got, err := DecodeObjectKey(tc.raw)
		if err != nil {
			t.Errorf("DecodeObjectKey(%q) error: %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("DecodeObjectKey(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestDecodeObjectKeyMalformed(t *testing.T) {
	_, err := DecodeObjectKey("uploads/videos/bad%zz.mp4")
	if !errors.Is(err, ErrMalformedObjectKey) {
		t.Fatalf("err = %v, want ErrMalformedObjectKey", err)
	}
}

func TestUploadCompleteUnknownKeyCreatesNothing(t *testing.T) {
	repo := newFakeVideoRepo()
	trigger := &fakeTrigger{}
	svc := newService(repo, trigger, &fakeCounter{}, &fakeNotifier{})

	err := svc.HandleUploadComplete(context.Background(), "uploads/videos/1-ghost.mp4")
	if !errors.Is(err, repository.ErrVideoNotFound) {
		t.Fatalf("err = %v, want ErrVideoNotFound", err)
	}
	if len(repo.byKey) != 0 {
		t.Error("an unknown key must never create a record")
	}
	if len(trigger.calls) != 0 {
		t.Error("no job may launch for an unknown key")
	}
}

func TestUploadCompleteMarksProcessingAndTriggers(t *testing.T) {
	video := queuedVideo("vid-1", "uploads/videos/1-clip.mp4", "user-1")
	repo := newFakeVideoRepo(video)
	trigger := &fakeTrigger{}
	counter := &fakeCounter{}
	svc := newService(repo, trigger, counter, &fakeNotifier{})

	if err := svc.HandleUploadComplete(context.Background(), "uploads/videos/1-clip.mp4"); err != nil {
		t.Fatalf("HandleUploadComplete: %v", err)
	}

	if video.Progress != model.VideoProcessing {
		t.Errorf("progress = %s, want processing", video.Progress)
	}
	if len(trigger.calls) != 1 || trigger.calls[0] != "uploads/videos/1-clip.mp4" {
		t.Errorf("trigger calls = %v", trigger.calls)
	}
	if counter.incrementsOK != 1 {
		t.Errorf("counter increments = %d, want 1", counter.incrementsOK)
	}
}

func TestUploadCompleteNoNotificationWhenDisabled(t *testing.T) {
	video := queuedVideo("vid-1", "uploads/videos/1-clip.mp4", "user-1")
	notifier := &fakeNotifier{}
	svc := newService(newFakeVideoRepo(video), &fakeTrigger{}, &fakeCounter{}, notifier)

	if err := svc.HandleUploadComplete(context.Background(), "uploads/videos/1-clip.mp4"); err != nil {
		t.Fatalf("HandleUploadComplete: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("notifications sent = %d, want 0 with the flag off", len(notifier.sent))
	}
}

func TestUploadCompleteProcessingNotification(t *testing.T) {
	video := queuedVideo("vid-1", "uploads/videos/1-clip.mp4", "user-1")
	repo := newFakeVideoRepo(video)
	notifier := &fakeNotifier{}
	svc := NewTranscoderService(repo, &fakeTrigger{}, &fakeCounter{}, notifier,
		&fakeStat{size: 400 << 20}, true)

	if err := svc.HandleUploadComplete(context.Background(), "uploads/videos/1-clip.mp4"); err != nil {
		t.Fatalf("HandleUploadComplete: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("notifications sent = %d, want exactly 1", len(notifier.sent))
	}
	sent := notifier.sent[0]
	if sent.userID != "user-1" {
		t.Errorf("notified user = %s, want the asset owner", sent.userID)
	}
	if sent.msg.Status != model.VideoProcessing || sent.msg.VideoID != "vid-1" {
		t.Errorf("notification = %+v", sent.msg)
	}
	if sent.msg.EstimatedProcessingTime != 200 {
		t.Errorf("estimate = %d, want 200 for a 400 MiB upload", sent.msg.EstimatedProcessingTime)
	}
	if video.EstimatedProcessingTime != 200 {
		t.Errorf("persisted estimate = %d, want 200", video.EstimatedProcessingTime)
	}
}

func TestUploadCompleteStatFailureSkipsEstimate(t *testing.T) {
	video := queuedVideo("vid-1", "uploads/videos/1-clip.mp4", "user-1")
	repo := newFakeVideoRepo(video)
	notifier := &fakeNotifier{}
	svc := NewTranscoderService(repo, &fakeTrigger{}, &fakeCounter{}, notifier,
		&fakeStat{err: errors.New("stat failed")}, true)

	if err := svc.HandleUploadComplete(context.Background(), "uploads/videos/1-clip.mp4"); err != nil {
		t.Fatalf("a failed stat must not fail the webhook: %v", err)
	}
	if video.EstimatedProcessingTime != 0 {
		t.Errorf("estimate = %d, want 0 when the stat fails", video.EstimatedProcessingTime)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("notifications sent = %d, want 1", len(notifier.sent))
	}
	if notifier.sent[0].msg.EstimatedProcessingTime != 0 {
		t.Error("notification must omit the estimate when the stat fails")
	}
}

func TestUploadCompleteProcessingNotificationBestEffort(t *testing.T) {
	video := queuedVideo("vid-1", "uploads/videos/1-clip.mp4", "user-1")
	repo := newFakeVideoRepo(video)
	trigger := &fakeTrigger{}
	counter := &fakeCounter{}
	notifier := &fakeNotifier{err: errors.New("relay down")}
	svc := NewTranscoderService(repo, trigger, counter, notifier, nil, true)

	if err := svc.HandleUploadComplete(context.Background(), "uploads/videos/1-clip.mp4"); err != nil {
		t.Fatalf("a lost processing push must not fail the webhook: %v", err)
	}
	if video.Progress != model.VideoProcessing {
		t.Errorf("progress = %s, want processing", video.Progress)
	}
	if len(trigger.calls) != 1 {
		t.Errorf("trigger calls = %d, want 1", len(trigger.calls))
	}
	if counter.incrementsOK != 1 {
		t.Errorf("counter increments = %d, want 1", counter.incrementsOK)
	}
}

func TestUploadCompleteDecodesEncodedKey(t *testing.T) {
	video := queuedVideo("vid-1", "uploads/videos/1-my video.mp4", "user-1")
	repo := newFakeVideoRepo(video)
	trigger := &fakeTrigger{}
	svc := newService(repo, trigger, &fakeCounter{}, &fakeNotifier{})

	if err := svc.HandleUploadComplete(context.Background(), "uploads/videos/1-my+video.mp4"); err != nil {
		t.Fatalf("HandleUploadComplete: %v", err)
	}
	if video.Progress != model.VideoProcessing {
		t.Errorf("progress = %s, want processing", video.Progress)
	}
}

func TestUploadCompleteTriggerFailureMarksFailed(t *testing.T) {
	video := queuedVideo("vid-1", "uploads/videos/1-clip.mp4", "user-1")
	repo := newFakeVideoRepo(video)
	trigger := &fakeTrigger{err: errors.New("broker unreachable")}
	counter := &fakeCounter{}
	svc := newService(repo, trigger, counter, &fakeNotifier{})

	err := svc.HandleUploadComplete(context.Background(), "uploads/videos/1-clip.mp4")
	if err == nil {
		t.Fatal("expected an error when the job cannot launch")
	}

	if video.Progress != model.VideoFailed {
		t.Errorf("progress = %s, want failed", video.Progress)
	}
	if video.ErrorMessage == "" {
		t.Error("a trigger failure must leave a diagnostic on the asset")
	}
	if counter.incrementsOK != 0 {
		t.Error("counter must not move for a job that never launched")
	}
}

func TestTranscodeCompleteSuccess(t *testing.T) {
	video := queuedVideo("vid-1", "uploads/videos/1-clip.mp4", "user-1")
	video.Progress = model.VideoProcessing
	repo := newFakeVideoRepo(video)
	counter := &fakeCounter{value: 1}
	notifier := &fakeNotifier{}
	svc := newService(repo, &fakeTrigger{}, counter, notifier)

	resolutions := model.VideoResolutions{
		"720":  "videos/1-clip/720.m3u8",
		"1080": "videos/1-clip/1080.m3u8",
	}
	err := svc.HandleTranscodeComplete(context.Background(), "uploads/videos/1-clip.mp4", model.VideoCompleted, resolutions)
	if err != nil {
		t.Fatalf("HandleTranscodeComplete: %v", err)
	}

	if video.Progress != model.VideoCompleted {
		t.Errorf("progress = %s, want completed", video.Progress)
	}
	if video.VideoResolutions["1080"] != "videos/1-clip/1080.m3u8" {
		t.Errorf("resolutions not persisted: %v", video.VideoResolutions)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("notifications sent = %d, want exactly 1", len(notifier.sent))
	}
	sent := notifier.sent[0]
	if sent.userID != "user-1" {
		t.Errorf("notified user = %s, want the asset owner", sent.userID)
	}
	if sent.msg.Status != model.VideoCompleted || sent.msg.VideoID != "vid-1" {
		t.Errorf("notification = %+v", sent.msg)
	}
	if counter.decrementsOK != 1 {
		t.Errorf("counter decrements = %d, want 1", counter.decrementsOK)
	}
}

func TestTranscodeCompleteFailureOmitsResolutions(t *testing.T) {
	video := queuedVideo("vid-1", "uploads/videos/1-clip.mp4", "user-1")
	video.Progress = model.VideoProcessing
	repo := newFakeVideoRepo(video)
	notifier := &fakeNotifier{}
	svc := newService(repo, &fakeTrigger{}, &fakeCounter{value: 1}, notifier)

	err := svc.HandleTranscodeComplete(context.Background(), "uploads/videos/1-clip.mp4", model.VideoFailed, nil)
	if err != nil {
		t.Fatalf("HandleTranscodeComplete: %v", err)
	}

	if video.Progress != model.VideoFailed {
		t.Errorf("progress = %s, want failed", video.Progress)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("notifications sent = %d, want exactly 1", len(notifier.sent))
	}
	if notifier.sent[0].msg.VideoResolutions != nil {
		t.Error("a failure notification must not carry resolutions")
	}
}

func TestTranscodeCompleteRejectsNonFinalProgress(t *testing.T) {
	video := queuedVideo("vid-1", "uploads/videos/1-clip.mp4", "user-1")
	repo := newFakeVideoRepo(video)
	notifier := &fakeNotifier{}
	svc := newService(repo, &fakeTrigger{}, &fakeCounter{}, notifier)

	err := svc.HandleTranscodeComplete(context.Background(), "uploads/videos/1-clip.mp4", model.VideoProcessing, nil)
	if !errors.Is(err, ErrInvalidProgress) {
		t.Fatalf("err = %v, want ErrInvalidProgress", err)
	}
	if len(repo.updated) != 0 {
		t.Error("nothing may be persisted for an invalid progress value")
	}
	if len(notifier.sent) != 0 {
		t.Error("nothing may be notified for an invalid progress value")
	}
}

func TestTranscodeCompleteUnknownKey(t *testing.T) {
	svc := newService(newFakeVideoRepo(), &fakeTrigger{}, &fakeCounter{}, &fakeNotifier{})

	err := svc.HandleTranscodeComplete(context.Background(), "uploads/videos/1-ghost.mp4", model.VideoCompleted, nil)
	if !errors.Is(err, repository.ErrVideoNotFound) {
		t.Fatalf("err = %v, want ErrVideoNotFound", err)
	}
}

func TestTranscodeCompleteNotifierFailurePropagates(t *testing.T) {
	video := queuedVideo("vid-1", "uploads/videos/1-clip.mp4", "user-1")
	repo := newFakeVideoRepo(video)
	notifier := &fakeNotifier{err: errors.New("mailbox down")}
	counter := &fakeCounter{value: 1}
	svc := newService(repo, &fakeTrigger{}, counter, notifier)

	err := svc.HandleTranscodeComplete(context.Background(), "uploads/videos/1-clip.mp4", model.VideoCompleted, nil)
	if err == nil {
		t.Fatal("a lost notification must surface to the webhook caller")
	}
	if counter.decrementsOK != 0 {
		t.Error("counter must not decrement when the transition did not complete")
	}
}

func TestEstimateProcessingSeconds(t *testing.T) {
	if got := estimateProcessingSeconds(0); got != 30 {
		t.Errorf("floor = %d, want 30", got)
	}
	if got := estimateProcessingSeconds(400 << 20); got != 200 {
		t.Errorf("estimate(400MiB) = %d, want 200", got)
	}
}
