package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/campuslib/backend/logger"
	"github.com/campuslib/backend/middleware"
	"github.com/campuslib/backend/models"
	"github.com/campuslib/backend/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// PromptContextStore supplies the caller's reading context and a catalog
// snapshot for prompt enrichment.
type PromptContextStore interface {
	HistoryForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.HistoryWithBook, error)
	PreferencesForUser(ctx context.Context, userID primitive.ObjectID) (*models.UserPreferences, error)
	TopRatedBooks(ctx context.Context, limit int64) ([]models.Book, error)
}

// AICompleter is the single chat-completion call the proxy forwards to.
type AICompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// RecommendHandler forwards a chat prompt, optionally enriched with the
// caller's history/preferences and a catalog snapshot, to the AI gateway.
type RecommendHandler struct {
	Store     PromptContextStore
	AI        AICompleter
	JWTSecret string
	Log       *logger.Logger
}

type CurrentBook struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

type RecommendRequest struct {
	Query       string       `json:"query"`
	CurrentBook *CurrentBook `json:"currentBook,omitempty"`
}

type RecommendResponse struct {
	Response string `json:"response"`
}

func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeJSONError(w, http.StatusBadRequest, "Query is required")
		return
	}

	var systemPrompt string
	if req.CurrentBook != nil {
		systemPrompt = service.SimilarBooksPrompt(req.CurrentBook.Title, req.CurrentBook.Author)
	} else {
		reader, catalog := h.gatherContext(r)
		systemPrompt = service.GeneralPrompt(reader, catalog)
	}

	response, err := h.AI.Complete(r.Context(), systemPrompt, req.Query)
	if err != nil {
		h.Log.Error("recommendation proxy", "error", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RecommendResponse{Response: response})
}

// gatherContext collects best-effort prompt enrichment: the caller's
// identity comes from an optional bearer token, and each fetch failure is
// logged and skipped rather than failing the request.
func (h *RecommendHandler) gatherContext(r *http.Request) (*service.ReaderContext, []models.Book) {
	var (
		reader  service.ReaderContext
		catalog []models.Book
	)

	var userID primitive.ObjectID
	if claims, ok := middleware.ParseBearer(r.Header.Get("Authorization"), h.JWTSecret); ok {
		if id, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
			userID = id
		}
	}

	g, ctx := errgroup.WithContext(r.Context())
	if !userID.IsZero() {
		g.Go(func() error {
			history, err := h.Store.HistoryForUser(ctx, userID, 10)
			if err != nil {
				h.Log.Warn("recommend: history fetch", "error", err)
				return nil
			}
			for _, row := range history {
				reader.History = append(reader.History, service.HistoryEntry{
					Title:  row.BookTitle,
					Author: row.BookAuthor,
					Status: row.Status,
					Rating: row.Rating,
				})
			}
			return nil
		})
		g.Go(func() error {
			prefs, err := h.Store.PreferencesForUser(ctx, userID)
			if err != nil {
				h.Log.Warn("recommend: preferences fetch", "error", err)
				return nil
			}
			reader.Preferences = prefs
			return nil
		})
	}
	g.Go(func() error {
		books, err := h.Store.TopRatedBooks(ctx, 50)
		if err != nil {
			h.Log.Warn("recommend: catalog fetch", "error", err)
			return nil
		}
		catalog = books
		return nil
	})
	_ = g.Wait()

	return &reader, catalog
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
