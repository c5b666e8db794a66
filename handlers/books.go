package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/campuslib/backend/logger"
	"github.com/campuslib/backend/middleware"
	"github.com/campuslib/backend/models"
	"github.com/campuslib/backend/realtime"
	"github.com/campuslib/backend/service"
	"github.com/campuslib/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultListLimit = 100

type BooksHandler struct {
	DB       *store.DB
	S3       *service.S3Service
	Hub      *realtime.Hub
	MaxBytes int64
	Log      *logger.Logger
}

func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.BookFilter{
		Genre:      r.URL.Query().Get("genre"),
		Department: r.URL.Query().Get("department"),
		Limit:      defaultListLimit,
	}
	if v := r.URL.Query().Get("categoryId"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			http.Error(w, `{"error":"invalid category id"}`, http.StatusBadRequest)
			return
		}
		filter.CategoryID = id
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 && n <= defaultListLimit {
			filter.Limit = n
		}
	}
	books, err := h.DB.ListBooks(r.Context(), filter)
	if err != nil {
		http.Error(w, `{"error":"failed to list books"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(books)
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	book, err := h.DB.BookByID(r.Context(), id)
	if store.IsNotFound(err) {
		http.Error(w, `{"error":"book not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"failed to load book"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}

// Related returns up to 8 catalog siblings of a book, most relevant first.
func (h *BooksHandler) Related(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	book, err := h.DB.BookByID(r.Context(), id)
	if store.IsNotFound(err) {
		http.Error(w, `{"error":"book not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"failed to load book"}`, http.StatusInternalServerError)
		return
	}
	related, err := service.RelatedBooks(r.Context(), h.DB, book)
	if err != nil {
		http.Error(w, `{"error":"failed to load related books"}`, http.StatusInternalServerError)
		return
	}
	if related == nil {
		related = []models.Book{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(related)
}

type BookRequest struct {
	Title         string   `json:"title" validate:"required"`
	Author        string   `json:"author" validate:"required"`
	Description   string   `json:"description"`
	Genre         string   `json:"genre" validate:"required"`
	Rating        *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	PublishedYear int      `json:"publishedYear" validate:"omitempty,gte=0"`
	CoverURL      string   `json:"coverUrl"`
	Department    string   `json:"department"`
	Semester      int      `json:"semester" validate:"omitempty,gte=1,lte=8"`
	CourseCode    string   `json:"courseCode"`
	ISBN          string   `json:"isbn"`
	PDFURL        string   `json:"pdfUrl"`
	TotalCopies   int      `json:"totalCopies" validate:"gte=0"`
	CategoryID    string   `json:"categoryId"`
}

func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	book := &models.Book{
		Title:           req.Title,
		Author:          req.Author,
		Description:     req.Description,
		Genre:           req.Genre,
		Rating:          req.Rating,
		PublishedYear:   req.PublishedYear,
		CoverURL:        req.CoverURL,
		Department:      req.Department,
		Semester:        req.Semester,
		CourseCode:      req.CourseCode,
		ISBN:            req.ISBN,
		PDFURL:          req.PDFURL,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
	}
	if req.CategoryID != "" {
		catID, err := primitive.ObjectIDFromHex(req.CategoryID)
		if err != nil {
			http.Error(w, `{"error":"invalid category id"}`, http.StatusBadRequest)
			return
		}
		book.CategoryID = catID
	}
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		book.CreatedBy = userID
	}
	id, err := h.DB.InsertBook(r.Context(), book)
	if err != nil {
		http.Error(w, `{"error":"failed to create book"}`, http.StatusInternalServerError)
		return
	}
	book.ID = id
	h.Hub.Publish(r.Context(), realtime.NewEvent("books", realtime.EventInsert, book))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(book)
}

func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	set := bson.M{
		"title":         req.Title,
		"author":        req.Author,
		"description":   req.Description,
		"genre":         req.Genre,
		"publishedYear": req.PublishedYear,
		"coverUrl":      req.CoverURL,
		"department":    req.Department,
		"semester":      req.Semester,
		"courseCode":    req.CourseCode,
		"isbn":          req.ISBN,
		"pdfUrl":        req.PDFURL,
		"totalCopies":   req.TotalCopies,
	}
	if req.Rating != nil {
		set["rating"] = *req.Rating
	}
	if req.CategoryID != "" {
		catID, err := primitive.ObjectIDFromHex(req.CategoryID)
		if err != nil {
			http.Error(w, `{"error":"invalid category id"}`, http.StatusBadRequest)
			return
		}
		set["categoryId"] = catID
	}
	book, err := h.DB.UpdateBook(r.Context(), id, set)
	if store.IsNotFound(err) {
		http.Error(w, `{"error":"book not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"failed to update book"}`, http.StatusInternalServerError)
		return
	}
	h.Hub.Publish(r.Context(), realtime.NewEvent("books", realtime.EventUpdate, book))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}

func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	pdfKey, coverKey, err := h.DB.DeleteBook(r.Context(), id)
	if store.IsNotFound(err) {
		http.Error(w, `{"error":"book not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"failed to delete book"}`, http.StatusInternalServerError)
		return
	}
	if h.S3 != nil {
		if pdfKey != "" {
			_ = h.S3.Delete(r.Context(), pdfKey)
		}
		if coverKey != "" {
			_ = h.S3.Delete(r.Context(), coverKey)
		}
	}
	h.Hub.Publish(r.Context(), realtime.NewEvent("books", realtime.EventDelete, map[string]string{"id": id.Hex()}))
	w.WriteHeader(http.StatusNoContent)
}

// Upload receives a multipart cover or PDF for a book and stores it in S3.
// Field name "file"; query param kind=cover|pdf (default pdf).
func (h *BooksHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	if h.S3 == nil {
		http.Error(w, `{"error":"uploads not configured"}`, http.StatusServiceUnavailable)
		return
	}
	if _, err := h.DB.BookByID(r.Context(), id); err != nil {
		if store.IsNotFound(err) {
			http.Error(w, `{"error":"book not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"failed to load book"}`, http.StatusInternalServerError)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		http.Error(w, `{"error":"file too large or invalid form"}`, http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, `{"error":"file field required"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	kind := r.URL.Query().Get("kind")
	prefix := "pdfs/"
	urlField, keyField := "pdfUrl", "pdfS3Key"
	if kind == "cover" {
		prefix = "covers/"
		urlField, keyField = "coverUrl", "coverS3Key"
	}
	key, err := h.S3.Upload(r.Context(), prefix, header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		h.Log.Error("upload to s3", "bookId", id.Hex(), "error", err)
		http.Error(w, `{"error":"failed to store file"}`, http.StatusInternalServerError)
		return
	}
	book, err := h.DB.UpdateBook(r.Context(), id, bson.M{
		urlField: "/api/books/" + id.Hex() + "/download",
		keyField: key,
	})
	if err != nil {
		http.Error(w, `{"error":"failed to update book"}`, http.StatusInternalServerError)
		return
	}
	h.Hub.Publish(r.Context(), realtime.NewEvent("books", realtime.EventUpdate, book))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}

type DownloadResponse struct {
	URL string `json:"url"`
}

// Download returns a short-lived presigned URL for the book's stored PDF.
func (h *BooksHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	book, err := h.DB.BookByID(r.Context(), id)
	if store.IsNotFound(err) {
		http.Error(w, `{"error":"book not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"failed to load book"}`, http.StatusInternalServerError)
		return
	}
	if book.PDFS3Key == "" {
		http.Error(w, `{"error":"no file for this book"}`, http.StatusNotFound)
		return
	}
	if h.S3 == nil {
		http.Error(w, `{"error":"download not configured"}`, http.StatusServiceUnavailable)
		return
	}
	url, err := h.S3.PresignedGetURL(r.Context(), book.PDFS3Key, 15*time.Minute, book.Title+".pdf")
	if err != nil {
		http.Error(w, `{"error":"failed to generate download url"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DownloadResponse{URL: url})
}
