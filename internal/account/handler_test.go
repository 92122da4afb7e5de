package account

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"placement-backend/internal/analyses"
	"placement-backend/internal/users"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Save(ctx context.Context, userId string, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := userId + "/" + fileName
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return key, int64(len(data)), "application/octet-stream", nil
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
	if storageKey == s.failOn {
		return errors.New("delete failed")
	}
	delete(s.objects, storageKey)
	return nil
}

func seedAnalysis(t *testing.T, repo analyses.Repo, store *fakeStore, userID, id string) {
	t.Helper()
	key := userID + "/" + id + ".pdf"
	store.mu.Lock()
	store.objects[key] = []byte("pdf bytes")
	store.mu.Unlock()
	analysis := analyses.Analysis{
		ID:         id,
		UserID:     userID,
		FileName:   id + ".pdf",
		StorageKey: key,
		ATSScore:   50,
		AnalyzedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), analysis); err != nil {
		t.Fatalf("create analysis: %v", err)
	}
}

func newRouter(handler *Handler, userID string, guest bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("isGuest", guest)
		c.Next()
	})
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router
}

func TestWipeHistoryDeletesFilesRecordsAndProfile(t *testing.T) {
	analysisRepo := analyses.NewMemoryRepo()
	usersRepo := users.NewMemoryRepo()
	store := newFakeStore()
	svc := NewService(analysisRepo, usersRepo, store)
	handler := NewHandler(svc)
	router := newRouter(handler, "user-1", false)

	if err := usersRepo.SyncResume(context.Background(), "user-1", "/files/user-1/a.pdf", []string{"go"}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	seedAnalysis(t, analysisRepo, store, "user-1", "a")
	seedAnalysis(t, analysisRepo, store, "user-1", "b")
	seedAnalysis(t, analysisRepo, store, "user-2", "c")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/account/history", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	remaining, err := analysisRepo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list analyses: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected 0 analyses after wipe, got %d", len(remaining))
	}

	others, err := analysisRepo.ListByUser(context.Background(), "user-2", 10, 0)
	if err != nil {
		t.Fatalf("list other user analyses: %v", err)
	}
	if len(others) != 1 {
		t.Fatalf("expected other user untouched, got %d analyses", len(others))
	}

	store.mu.Lock()
	stored := len(store.objects)
	store.mu.Unlock()
	if stored != 1 {
		t.Fatalf("expected only the other user's file to remain, got %d objects", stored)
	}

	profile, err := usersRepo.GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.ResumeURL != "" {
		t.Fatalf("expected resume url reset, got %q", profile.ResumeURL)
	}
	if len(profile.Skills) != 0 {
		t.Fatalf("expected skills reset, got %v", profile.Skills)
	}
}

func TestWipeHistorySkipsFailedFileDeletes(t *testing.T) {
	analysisRepo := analyses.NewMemoryRepo()
	usersRepo := users.NewMemoryRepo()
	store := newFakeStore()
	store.failOn = "user-1/a.pdf"
	svc := NewService(analysisRepo, usersRepo, store)

	seedAnalysis(t, analysisRepo, store, "user-1", "a")
	seedAnalysis(t, analysisRepo, store, "user-1", "b")

	result, err := svc.WipeHistory(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("wipe: %v", err)
	}
	if result.DeletedAnalyses != 2 {
		t.Fatalf("expected 2 deleted analyses, got %d", result.DeletedAnalyses)
	}
	if result.DeletedFiles != 1 {
		t.Fatalf("expected 1 deleted file, got %d", result.DeletedFiles)
	}
}

func TestClaimGuestMigratesAnalyses(t *testing.T) {
	analysisRepo := analyses.NewMemoryRepo()
	usersRepo := users.NewMemoryRepo()
	store := newFakeStore()
	svc := NewService(analysisRepo, usersRepo, store)
	handler := NewHandler(svc)
	router := newRouter(handler, "user-1", false)

	guestID := "11111111-1111-1111-1111-111111111111"
	seedAnalysis(t, analysisRepo, store, "guest:"+guestID, "g1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	claimed, err := analysisRepo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list analyses: %v", err)
	}
	if len(claimed) != 1 {
		t.Fatalf("expected 1 migrated analysis, got %d", len(claimed))
	}

	resp2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req2.Header.Set("X-Guest-Id", guestID)
	router.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected status 200 on idempotent call, got %d", resp2.Code)
	}
}

func TestClaimGuestRejectsGuestCallers(t *testing.T) {
	svc := NewService(analyses.NewMemoryRepo(), users.NewMemoryRepo(), newFakeStore())
	handler := NewHandler(svc)
	router := newRouter(handler, "guest:22222222-2222-2222-2222-222222222222", true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", "22222222-2222-2222-2222-222222222222")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}
