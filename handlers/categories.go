package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/campuslib/backend/models"
	"github.com/campuslib/backend/realtime"
	"github.com/campuslib/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoriesHandler struct {
	DB  *store.DB
	Hub *realtime.Hub
}

func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.DB.ListCategories(r.Context())
	if err != nil {
		http.Error(w, `{"error":"failed to list categories"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(categories)
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
		return
	}
	category := &models.Category{Name: req.Name, Description: req.Description}
	id, err := h.DB.InsertCategory(r.Context(), category)
	if err != nil {
		http.Error(w, `{"error":"failed to create category"}`, http.StatusInternalServerError)
		return
	}
	category.ID = id
	h.Hub.Publish(r.Context(), realtime.NewEvent("categories", realtime.EventInsert, category))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(category)
}

func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid category id"}`, http.StatusBadRequest)
		return
	}
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	category, err := h.DB.UpdateCategory(r.Context(), id, req.Name, req.Description)
	if store.IsNotFound(err) {
		http.Error(w, `{"error":"category not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"failed to update category"}`, http.StatusInternalServerError)
		return
	}
	h.Hub.Publish(r.Context(), realtime.NewEvent("categories", realtime.EventUpdate, category))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(category)
}

func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid category id"}`, http.StatusBadRequest)
		return
	}
	if err := h.DB.DeleteCategory(r.Context(), id); err != nil {
		http.Error(w, `{"error":"failed to delete category"}`, http.StatusInternalServerError)
		return
	}
	h.Hub.Publish(r.Context(), realtime.NewEvent("categories", realtime.EventDelete, map[string]string{"id": id.Hex()}))
	w.WriteHeader(http.StatusNoContent)
}
