package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/campuslib/backend/logger"
	"github.com/campuslib/backend/middleware"
	"github.com/campuslib/backend/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakePromptStore struct {
	history []models.HistoryWithBook
	prefs   *models.UserPreferences
	catalog []models.Book
}

func (f *fakePromptStore) HistoryForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.HistoryWithBook, error) {
	return f.history, nil
}

func (f *fakePromptStore) PreferencesForUser(ctx context.Context, userID primitive.ObjectID) (*models.UserPreferences, error) {
	return f.prefs, nil
}

func (f *fakePromptStore) TopRatedBooks(ctx context.Context, limit int64) ([]models.Book, error) {
	return f.catalog, nil
}

type fakeAI struct {
	gotSystem string
	gotUser   string
	response  string
	err       error
}

func (f *fakeAI) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.gotSystem = systemPrompt
	f.gotUser = userPrompt
	return f.response, f.err
}

const testSecret = "test-secret"

func newRecommendHandler(ai *fakeAI, store *fakePromptStore) *RecommendHandler {
	if store == nil {
		store = &fakePromptStore{}
	}
	return &RecommendHandler{
		Store:     store,
		AI:        ai,
		JWTSecret: testSecret,
		Log:       logger.NewNop(),
	}
}

func TestRecommendMissingQuery(t *testing.T) {
	h := newRecommendHandler(&fakeAI{}, nil)
	for _, body := range []string{`{}`, `{"query":""}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Recommend(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Query is required"}`, rec.Body.String())
	}
}

func TestRecommendWithCurrentBook(t *testing.T) {
	ai := &fakeAI{response: `You might enjoy "Hyperion", a science fiction classic.`}
	h := newRecommendHandler(ai, nil)

	body := `{"query":"recommend something similar","currentBook":{"title":"Dune","author":"Frank Herbert"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Recommend(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"You might enjoy \"Hyperion\", a science fiction classic."}`, rec.Body.String())
	assert.Contains(t, ai.gotSystem, `"Dune"`)
	assert.Contains(t, ai.gotSystem, "Frank Herbert")
	assert.Equal(t, "recommend something similar", ai.gotUser)
}

func TestRecommendEnrichedFromBearer(t *testing.T) {
	userID := primitive.NewObjectID()
	rating := 4
	store := &fakePromptStore{
		history: []models.HistoryWithBook{{
			ReadingHistory: models.ReadingHistory{Status: "completed", Rating: &rating},
			BookTitle:      "Foundation",
			BookAuthor:     "Isaac Asimov",
		}},
		prefs:   &models.UserPreferences{FavoriteGenres: []string{"Sci-Fi"}},
		catalog: []models.Book{{Title: "Hyperion", Author: "Dan Simmons", Genre: "Sci-Fi"}},
	}
	ai := &fakeAI{response: "ok"}
	h := newRecommendHandler(ai, store)

	token := signToken(t, userID)
	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(`{"query":"what next?"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.Recommend(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, ai.gotSystem, "Foundation by Isaac Asimov")
	assert.Contains(t, ai.gotSystem, "Favorite genres: Sci-Fi")
	assert.Contains(t, ai.gotSystem, "Hyperion by Dan Simmons")
}

func TestRecommendAnonymousGetsCatalogOnly(t *testing.T) {
	store := &fakePromptStore{
		history: []models.HistoryWithBook{{BookTitle: "Should not leak"}},
		catalog: []models.Book{{Title: "Hyperion", Author: "Dan Simmons"}},
	}
	ai := &fakeAI{response: "ok"}
	h := newRecommendHandler(ai, store)

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(`{"query":"what next?"}`))
	rec := httptest.NewRecorder()
	h.Recommend(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, ai.gotSystem, "Hyperion")
	assert.NotContains(t, ai.gotSystem, "Should not leak")
}

func TestRecommendUpstreamFailure(t *testing.T) {
	ai := &fakeAI{err: errors.New("failed to get AI recommendation")}
	h := newRecommendHandler(ai, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(`{"query":"anything"}`))
	rec := httptest.NewRecorder()
	h.Recommend(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to get AI recommendation"}`, rec.Body.String())
}

func TestRecommendPreflight(t *testing.T) {
	h := newRecommendHandler(&fakeAI{}, nil)
	handler := middleware.AllowAll()(http.HandlerFunc(h.Recommend))

	req := httptest.NewRequest(http.MethodOptions, "/api/recommendations", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func signToken(t *testing.T, userID primitive.ObjectID) string {
	t.Helper()
	claims := &middleware.Claims{
		UserID: userID.Hex(),
		Email:  "reader@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}
