package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tastebox/backend/internal/extraction"
	"github.com/tastebox/backend/internal/service"
	"github.com/tastebox/backend/internal/testhelpers"
)

const testJWTSecret = "test-secret-key-for-api-tests"

// MockExtractor implements service.IExtractor for handler tests
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, req extraction.ExtractionRequest) (*extraction.StructuredRecipe, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extraction.StructuredRecipe), args.Error(1)
}

func (m *MockExtractor) ExtractFromText(ctx context.Context, text, sourceName string) (*extraction.StructuredRecipe, error) {
	args := m.Called(ctx, text, sourceName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extraction.StructuredRecipe), args.Error(1)
}

// MockImageService implements service.IImageService for handler tests
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Fetch(ctx context.Context, rawURL string) (*service.RemoteImage, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RemoteImage), args.Error(1)
}

func (m *MockImageService) Mirror(ctx context.Context, rawURL string) (string, error) {
	args := m.Called(ctx, rawURL)
	return args.String(0), args.Error(1)
}

// memoryDrafts is an in-process draft store
type memoryDrafts struct {
	mu     sync.Mutex
	drafts map[string]*service.Draft
}

func newMemoryDrafts() *memoryDrafts {
	return &memoryDrafts{drafts: make(map[string]*service.Draft)}
}

func (d *memoryDrafts) SaveDraft(_ context.Context, userID string, recipe *extraction.StructuredRecipe) (*service.Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	draft := &service.Draft{
		ID:        uuid.NewString(),
		UserID:    userID,
		Recipe:    recipe,
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	d.drafts[draft.ID] = draft
	return draft, nil
}

func (d *memoryDrafts) GetDraft(_ context.Context, userID, id string) (*service.Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	draft, ok := d.drafts[id]
	if !ok || draft.UserID != userID {
		return nil, service.ErrDraftNotFound
	}
	return draft, nil
}

func (d *memoryDrafts) DeleteDraft(ctx context.Context, userID, id string) error {
	if _, err := d.GetDraft(ctx, userID, id); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.drafts, id)
	return nil
}

type testEnv struct {
	router    *gin.Engine
	auth      *service.AuthService
	extractor *MockExtractor
	images    *MockImageService
	drafts    *memoryDrafts
}

func setupTestRouter(t *testing.T, withDrafts bool, overrides ...func(*Dependencies)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLiteDatabase(t)
	env := &testEnv{
		router:    gin.New(),
		auth:      service.NewAuthService(db, testJWTSecret),
		extractor: new(MockExtractor),
		images:    new(MockImageService),
	}

	deps := Dependencies{
		DB:        db,
		Auth:      env.auth,
		Recipes:   service.NewRecipeService(db, service.NewHashEmbeddingService()),
		Extractor: env.extractor,
		Documents: service.NewDocumentService(),
		Images:    env.images,
		Exporter:  service.NewPDFExporter(),
	}
	if withDrafts {
		env.drafts = newMemoryDrafts()
		deps.Drafts = env.drafts
	}
	for _, override := range overrides {
		override(&deps)
	}
	RegisterRoutes(env.router, deps)
	return env
}

// registerUser creates an account and returns its bearer token
func (e *testEnv) registerUser(t *testing.T, email string) string {
	t.Helper()
	_, token, err := e.auth.Register(context.Background(), "Test User", email, "password123")
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func recipePath(id uuid.UUID, suffix string) string {
	return fmt.Sprintf("/api/v1/recipes/%s%s", id, suffix)
}

func sampleRecipe(title string) *extraction.StructuredRecipe {
	return &extraction.StructuredRecipe{
		Title:       title,
		Description: "Receta de prueba",
		Images:      []extraction.Image{},
		Ingredients: []extraction.Ingredient{
			{Name: "Patatas", Amount: "500", Unit: "g", Order: 1},
			{Name: "Huevos", Amount: "4", Order: 2},
		},
		Instructions: []extraction.Instruction{
			{Step: 1, Description: "Pelar y cortar las patatas."},
			{Step: 2, Description: "Batir los huevos y cuajar."},
		},
		PrepTime:   20,
		Servings:   4,
		Difficulty: "Medio",
		RecipeType: "Principal",
		Tags:       []string{"española"},
	}
}
