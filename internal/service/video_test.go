package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/coursehub/coursehub-backend/internal/model"
	"github.com/coursehub/coursehub-backend/internal/repository"
)

type fakeStorage struct {
	presigned []string
	removed   []string
	prefixes  []string
}

func (s *fakeStorage) PresignUpload(ctx context.Context, objectKey, contentType string) (string, error) {
	s.presigned = append(s.presigned, objectKey)
	return "http://minio.local/" + objectKey + "?signed", nil
}

func (s *fakeStorage) RemoveUpload(ctx context.Context, objectKey string) error {
	s.removed = append(s.removed, objectKey)
	return nil
}

func (s *fakeStorage) RemoveRenditions(ctx context.Context, prefix string) error {
	s.prefixes = append(s.prefixes, prefix)
	return nil
}

type fakeCourseRepo struct {
	lessons map[string]*model.Lesson
}

func newFakeCourseRepo(lessons ...*model.Lesson) *fakeCourseRepo {
	r := &fakeCourseRepo{lessons: make(map[string]*model.Lesson)}
	for _, l := range lessons {
		r.lessons[l.ID] = l
	}
	return r
}

func (r *fakeCourseRepo) CreateCourse(ctx context.Context, c *model.Course) (*model.Course, error) {
	return c, nil
}

func (r *fakeCourseRepo) GetCourseByID(ctx context.Context, courseID string) (*model.Course, error) {
	return nil, repository.ErrCourseNotFound
}

func (r *fakeCourseRepo) ListCourses(ctx context.Context) ([]*model.Course, error) {
	return nil, nil
}

func (r *fakeCourseRepo) ListCoursesByCoach(ctx context.Context, coachID string) ([]*model.Course, error) {
	return nil, nil
}

func (r *fakeCourseRepo) UpdateCourse(ctx context.Context, c *model.Course) error { return nil }

func (r *fakeCourseRepo) DeleteCourse(ctx context.Context, courseID string) error { return nil }

func (r *fakeCourseRepo) CreateLesson(ctx context.Context, l *model.Lesson) (*model.Lesson, error) {
	r.lessons[l.ID] = l
	return l, nil
}

func (r *fakeCourseRepo) GetLessonByID(ctx context.Context, lessonID string) (*model.Lesson, error) {
	l, ok := r.lessons[lessonID]
	if !ok {
		return nil, repository.ErrLessonNotFound
	}
	return l, nil
}

func (r *fakeCourseRepo) ListLessonsByCourse(ctx context.Context, courseID string) ([]*model.Lesson, error) {
	return nil, nil
}

func (r *fakeCourseRepo) UpdateLesson(ctx context.Context, l *model.Lesson) error {
	r.lessons[l.ID] = l
	return nil
}

func (r *fakeCourseRepo) DeleteLesson(ctx context.Context, lessonID string) error { return nil }

type deletingVideoRepo struct {
	*fakeVideoRepo
	deleted []string
}

func (r *deletingVideoRepo) DeleteVideo(ctx context.Context, videoID string) error {
	r.deleted = append(r.deleted, videoID)
	for key, v := range r.byKey {
		if v.ID == videoID {
			delete(r.byKey, key)
		}
	}
	return nil
}

func validInput() InitializeUploadInput {
	return InitializeUploadInput{
		OwnerID:     "user-1",
		FileName:    "my lecture.mp4",
		FileSize:    1 << 20,
		ContentType: "video/mp4",
		Title:       "My Lecture",
	}
}

func TestInitializeUploadGeneratesObjectKey(t *testing.T) {
	repo := newFakeVideoRepo()
	store := &fakeStorage{}
	svc := NewVideoService(repo, newFakeCourseRepo(), store)

	res, err := svc.InitializeUpload(context.Background(), validInput())
	if err != nil {
		t.Fatalf("InitializeUpload: %v", err)
	}

	// Spaces in the file name become underscores; a millisecond timestamp
	// keys the prefix.
	pattern := regexp.MustCompile(`^uploads/videos/\d+-my_lecture\.mp4$`)
	if !pattern.MatchString(res.ObjectKey) {
		t.Errorf("objectKey = %q", res.ObjectKey)
	}
	if res.UploadURL == "" || res.VideoID == "" {
		t.Errorf("incomplete result: %+v", res)
	}

	video, err := repo.GetVideoByObjectKey(context.Background(), res.ObjectKey)
	if err != nil {
		t.Fatalf("record not created: %v", err)
	}
	if video.Progress != model.VideoInitializing {
		t.Errorf("progress = %s, want initializing", video.Progress)
	}
	if video.OwnerID != "user-1" {
		t.Errorf("ownerID = %s", video.OwnerID)
	}
}

func TestInitializeUploadValidatesInput(t *testing.T) {
	svc := NewVideoService(newFakeVideoRepo(), newFakeCourseRepo(), &fakeStorage{})

	cases := []func(*InitializeUploadInput){
		func(in *InitializeUploadInput) { in.OwnerID = "" },
		func(in *InitializeUploadInput) { in.FileName = "" },
		func(in *InitializeUploadInput) { in.FileSize = 0 },
		func(in *InitializeUploadInput) { in.ContentType = "" },
		func(in *InitializeUploadInput) { in.Title = "" },
	}
	for i, mutate := range cases {
		in := validInput()
		mutate(&in)
		if _, err := svc.InitializeUpload(context.Background(), in); err == nil {
			t.Errorf("case %d: expected a validation error", i)
		}
	}
}

func TestInitializeUploadLinksLesson(t *testing.T) {
	lesson := &model.Lesson{ID: "lesson-1", CourseID: "course-1", Title: "Intro"}
	courses := newFakeCourseRepo(lesson)
	svc := NewVideoService(newFakeVideoRepo(), courses, &fakeStorage{})

	in := validInput()
	in.LessonID = "lesson-1"

	res, err := svc.InitializeUpload(context.Background(), in)
	if err != nil {
		t.Fatalf("InitializeUpload: %v", err)
	}
	if lesson.VideoID != res.VideoID {
		t.Errorf("lesson.VideoID = %q, want %q", lesson.VideoID, res.VideoID)
	}
}

func TestInitializeUploadMissingLessonRollsBack(t *testing.T) {
	repo := &deletingVideoRepo{fakeVideoRepo: newFakeVideoRepo()}
	svc := NewVideoService(repo, newFakeCourseRepo(), &fakeStorage{})

	in := validInput()
	in.LessonID = "ghost-lesson"

	_, err := svc.InitializeUpload(context.Background(), in)
	if !errors.Is(err, repository.ErrLessonNotFound) {
		t.Fatalf("err = %v, want ErrLessonNotFound", err)
	}
	if len(repo.deleted) != 1 {
		t.Errorf("rollback deletions = %d, want 1", len(repo.deleted))
	}
	if len(repo.byKey) != 0 {
		t.Error("orphaned asset record left behind")
	}
}

func TestRemoveVideoCleansUpStorage(t *testing.T) {
	video := &model.Video{
		ID:        "vid-1",
		ObjectKey: "uploads/videos/1-clip.mp4",
		OwnerID:   "user-1",
		Progress:  model.VideoCompleted,
	}
	repo := &deletingVideoRepo{fakeVideoRepo: newFakeVideoRepo(video)}
	store := &fakeStorage{}
	svc := NewVideoService(repo, newFakeCourseRepo(), store)

	if err := svc.RemoveVideo(context.Background(), "vid-1"); err != nil {
		t.Fatalf("RemoveVideo: %v", err)
	}

	if len(store.removed) != 1 || store.removed[0] != "uploads/videos/1-clip.mp4" {
		t.Errorf("raw removals = %v", store.removed)
	}
	if len(store.prefixes) != 1 || store.prefixes[0] != "videos/1-clip/" {
		t.Errorf("rendition prefixes = %v", store.prefixes)
	}
	if len(repo.deleted) != 1 {
		t.Errorf("record deletions = %d, want 1", len(repo.deleted))
	}
}
