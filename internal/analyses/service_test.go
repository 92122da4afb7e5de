package analyses

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"placement-backend/internal/extract"
	"placement-backend/internal/usage"
	"placement-backend/internal/users"
)

const docxMime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Save(ctx context.Context, userId string, fileName string, r io.Reader) (string, int64, string, error) {
	if s.saveErr != nil {
		return "", 0, "", s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := userId + "/" + fileName
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return key, int64(len(data)), "", nil
}

func (s *fakeStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[storageKey]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStore) Delete(ctx context.Context, storageKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type failingRepo struct{}

func (failingRepo) Create(ctx context.Context, analysis Analysis) error { return errors.New("db down") }
func (failingRepo) GetLatestByUser(ctx context.Context, userID string) (Analysis, error) {
	return Analysis{}, errors.New("db down")
}
func (failingRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	return nil, errors.New("db down")
}
func (failingRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	return 0, errors.New("db down")
}

type failingUsersRepo struct{}

func (failingUsersRepo) Upsert(ctx context.Context, user users.User) error { return errors.New("db down") }
func (failingUsersRepo) GetByID(ctx context.Context, userID string) (users.User, error) {
	return users.User{}, errors.New("db down")
}
func (failingUsersRepo) SyncResume(ctx context.Context, userID, resumeURL string, skills []string) error {
	return errors.New("db down")
}

func buildDocx(t *testing.T, paragraphs []string) []byte {
	t.Helper()
	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t>`)
		doc.WriteString(p)
		doc.WriteString(`</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(doc.String())); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// completeResume yields a docx whose text hits every score component: all
// five sections, ten keywords, 300+ words, newlines, over 500 bytes.
func completeResume(t *testing.T) []byte {
	t.Helper()
	return buildDocx(t, []string{
		"Jane Doe Email: jane@example.com Phone: 555-0100",
		"Education: BS Computer Science, State University",
		"Experience: backend work at Initech",
		"Skills: python java react docker kubernetes aws sql git html css",
		"Projects: built an internal billing dashboard",
		strings.TrimSpace(strings.Repeat("padding ", 300)),
	})
}

func newTestService() (*Service, *MemoryRepo, *users.MemoryRepo, *fakeStore) {
	repo := NewMemoryRepo()
	usersRepo := users.NewMemoryRepo()
	store := newFakeStore()
	svc := &Service{
		Repo:  repo,
		Users: users.NewService(usersRepo),
		Usage: usage.NewService(),
		Store: store,
	}
	return svc, repo, usersRepo, store
}

func TestAnalyzeFullPipeline(t *testing.T) {
	svc, repo, usersRepo, store := newTestService()

	analysis, err := svc.Analyze(context.Background(), "user-1", "resume.docx", docxMime, bytes.NewReader(completeResume(t)))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if analysis.ID == "" {
		t.Fatal("expected analysis ID")
	}
	if analysis.ATSScore != 100 {
		t.Fatalf("expected score 100, got %d", analysis.ATSScore)
	}
	if analysis.Sections.Count() != 5 {
		t.Fatalf("expected all sections detected, got %+v", analysis.Sections)
	}
	if len(analysis.Keywords.Found) < 10 {
		t.Fatalf("expected at least 10 keywords, got %v", analysis.Keywords.Found)
	}
	if len(analysis.Keywords.Missing) != 10 {
		t.Fatalf("expected missing capped at 10, got %d", len(analysis.Keywords.Missing))
	}
	if len(analysis.Keywords.Suggestions) == 0 {
		t.Fatal("expected keyword suggestions")
	}
	if !strings.HasPrefix(analysis.ResumeURL, "/files/") {
		t.Fatalf("unexpected resume url %q", analysis.ResumeURL)
	}
	if analysis.ExtractedText == "" || len([]rune(analysis.ExtractedText)) > 1000 {
		t.Fatalf("extracted text not truncated: %d runes", len([]rune(analysis.ExtractedText)))
	}
	if analysis.Formatting.Score != 15 {
		t.Fatalf("expected formatting score 15, got %d", analysis.Formatting.Score)
	}

	persisted, err := repo.GetLatestByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if persisted.ID != analysis.ID {
		t.Fatalf("persisted ID %q != returned ID %q", persisted.ID, analysis.ID)
	}

	if store.count() != 1 {
		t.Fatalf("expected stored file to remain, got %d objects", store.count())
	}

	profile, err := usersRepo.GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.ResumeURL != analysis.ResumeURL {
		t.Fatalf("profile resume url %q != %q", profile.ResumeURL, analysis.ResumeURL)
	}
	if len(profile.Skills) != len(analysis.Keywords.Found) {
		t.Fatalf("profile skills %v != found keywords %v", profile.Skills, analysis.Keywords.Found)
	}

	u, err := svc.Usage.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if u.Used != 1 {
		t.Fatalf("expected 1 consumed, got %d", u.Used)
	}
}

func TestAnalyzeUnsupportedTypeLeavesNoFile(t *testing.T) {
	svc, repo, _, store := newTestService()

	_, err := svc.Analyze(context.Background(), "user-1", "resume.txt", "text/plain", strings.NewReader("plain text"))
	if !errors.Is(err, extract.ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}
	if store.count() != 0 {
		t.Fatalf("expected no stored file, got %d", store.count())
	}
	if _, err := repo.GetLatestByUser(context.Background(), "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no record, got %v", err)
	}
	u, err := svc.Usage.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("expected no consumption, got %d", u.Used)
	}
}

func TestAnalyzeExtractionFailureCleansUpFile(t *testing.T) {
	svc, repo, _, store := newTestService()

	_, err := svc.Analyze(context.Background(), "user-1", "resume.docx", docxMime, strings.NewReader("not a zip"))
	if !errors.Is(err, extract.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if store.count() != 0 {
		t.Fatalf("expected stored file cleaned up, got %d", store.count())
	}
	if _, err := repo.GetLatestByUser(context.Background(), "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no record, got %v", err)
	}
}

func TestAnalyzePersistenceFailureCleansUpFile(t *testing.T) {
	svc, _, _, store := newTestService()
	svc.Repo = failingRepo{}

	_, err := svc.Analyze(context.Background(), "user-1", "resume.docx", docxMime, bytes.NewReader(completeResume(t)))
	if !errors.Is(err, ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}
	if store.count() != 0 {
		t.Fatalf("expected stored file cleaned up, got %d", store.count())
	}
}

func TestAnalyzeProfileSyncFailureIsPartialSuccess(t *testing.T) {
	svc, repo, _, store := newTestService()
	svc.Users = users.NewService(failingUsersRepo{})

	analysis, err := svc.Analyze(context.Background(), "user-1", "resume.docx", docxMime, bytes.NewReader(completeResume(t)))
	if !errors.Is(err, ErrProfileSyncFailed) {
		t.Fatalf("expected ErrProfileSyncFailed, got %v", err)
	}
	if analysis.ID == "" {
		t.Fatal("expected persisted analysis alongside the error")
	}
	persisted, err := repo.GetLatestByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if persisted.ID != analysis.ID {
		t.Fatalf("record not persisted: %q != %q", persisted.ID, analysis.ID)
	}
	if store.count() != 1 {
		t.Fatalf("expected stored file kept on partial success, got %d", store.count())
	}
}

func TestAnalyzeSkillsOverwriteNotMerge(t *testing.T) {
	svc, _, usersRepo, _ := newTestService()

	first := buildDocx(t, []string{"Skills: python django flask"})
	if _, err := svc.Analyze(context.Background(), "user-1", "v1.docx", docxMime, bytes.NewReader(first)); err != nil {
		t.Fatalf("first analyze: %v", err)
	}

	second := buildDocx(t, []string{"Skills: react redux typescript"})
	analysis, err := svc.Analyze(context.Background(), "user-1", "v2.docx", docxMime, bytes.NewReader(second))
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}

	profile, err := usersRepo.GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	for _, skill := range profile.Skills {
		if skill == "python" || skill == "django" || skill == "flask" {
			t.Fatalf("expected old skills replaced, got %v", profile.Skills)
		}
	}
	if len(profile.Skills) != len(analysis.Keywords.Found) {
		t.Fatalf("profile skills %v != second run keywords %v", profile.Skills, analysis.Keywords.Found)
	}
}

func TestAnalyzeNoKeywordsKeepsSkills(t *testing.T) {
	svc, _, usersRepo, _ := newTestService()

	first := buildDocx(t, []string{"Skills: python django"})
	if _, err := svc.Analyze(context.Background(), "user-1", "v1.docx", docxMime, bytes.NewReader(first)); err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	before, err := usersRepo.GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(before.Skills) == 0 {
		t.Fatal("expected skills after first run")
	}

	second := buildDocx(t, []string{"lorem ipsum dolor sit amet"})
	analysis, err := svc.Analyze(context.Background(), "user-1", "v2.docx", docxMime, bytes.NewReader(second))
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if len(analysis.Keywords.Found) != 0 {
		t.Fatalf("expected no keywords, got %v", analysis.Keywords.Found)
	}

	after, err := usersRepo.GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(after.Skills) != len(before.Skills) {
		t.Fatalf("expected skills untouched, before %v after %v", before.Skills, after.Skills)
	}
	if after.ResumeURL != analysis.ResumeURL {
		t.Fatalf("expected resume url still updated, got %q", after.ResumeURL)
	}
}

func TestAnalyzeLimitReached(t *testing.T) {
	svc, _, _, store := newTestService()
	if _, err := svc.Usage.Consume(context.Background(), "user-1", 20); err != nil {
		t.Fatalf("seed usage: %v", err)
	}

	_, err := svc.Analyze(context.Background(), "user-1", "resume.docx", docxMime, bytes.NewReader(completeResume(t)))
	if !errors.Is(err, usage.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if store.count() != 0 {
		t.Fatalf("expected no stored file, got %d", store.count())
	}
}

func TestAnalyzeHistoryKeepsEveryUpload(t *testing.T) {
	svc, repo, _, _ := newTestService()

	doc := buildDocx(t, []string{"Skills: python"})
	for i := 0; i < 2; i++ {
		if _, err := svc.Analyze(context.Background(), "user-1", "resume.docx", docxMime, bytes.NewReader(doc)); err != nil {
			t.Fatalf("analyze %d: %v", i, err)
		}
	}

	history, err := repo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 records, got %d", len(history))
	}
	if history[0].ID == history[1].ID {
		t.Fatal("expected distinct record IDs")
	}
}
