package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/campuslib/backend/logger"
	"github.com/campuslib/backend/middleware"
	"github.com/campuslib/backend/models"
	"github.com/campuslib/backend/service"
	"github.com/campuslib/backend/store"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	DB        *store.DB
	Roles     *service.RoleResolver
	JWTSecret string
	// Bootstrap credentials (from config); used to seed the first admin
	// when the users collection is empty.
	AdminEmail string
	AdminPass  string
	Log        *logger.Logger
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(&req); err != nil {
		http.Error(w, `{"error":"email, password (min 8 chars) and fullName are required"}`, http.StatusBadRequest)
		return
	}

	existing, err := h.DB.UserByEmail(r.Context(), req.Email)
	if err != nil {
		http.Error(w, `{"error":"signup failed"}`, http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, `{"error":"email already registered"}`, http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, `{"error":"signup failed"}`, http.StatusInternalServerError)
		return
	}
	user := &models.User{Email: req.Email, Password: string(hash)}
	userID, err := h.DB.CreateUser(r.Context(), user)
	if err != nil {
		http.Error(w, `{"error":"signup failed"}`, http.StatusInternalServerError)
		return
	}
	user.ID = userID

	// Profile is created implicitly at signup; membership starts now.
	profile := &models.Profile{
		UserID:   userID,
		FullName: req.FullName,
		Email:    req.Email,
	}
	if _, err := h.DB.CreateProfile(r.Context(), profile); err != nil {
		h.Log.Error("signup: create profile", "userId", userID.Hex(), "error", err)
	}

	h.respondWithToken(w, r, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"email and password required"}`, http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.DB.UserByEmail(r.Context(), req.Email)
	if err != nil {
		http.Error(w, `{"error":"login failed"}`, http.StatusInternalServerError)
		return
	}
	if user == nil {
		// Empty deployment: accept the bootstrap credentials and seed the
		// first admin so the back office is reachable.
		count, err := h.DB.UsersCount(r.Context())
		if err != nil || count > 0 || req.Email != h.AdminEmail || req.Password != h.AdminPass {
			http.Error(w, `{"error":"invalid email or password"}`, http.StatusUnauthorized)
			return
		}
		user, err = h.seedAdmin(r)
		if err != nil {
			h.Log.Error("login: seed admin", "error", err)
			http.Error(w, `{"error":"login failed"}`, http.StatusInternalServerError)
			return
		}
	} else {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			http.Error(w, `{"error":"invalid email or password"}`, http.StatusUnauthorized)
			return
		}
	}

	h.respondWithToken(w, r, user)
}

func (h *AuthHandler) seedAdmin(r *http.Request) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(h.AdminPass), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: h.AdminEmail, Password: string(hash)}
	id, err := h.DB.CreateUser(r.Context(), user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	if err := h.DB.GrantRole(r.Context(), id, models.RoleAdmin); err != nil {
		return nil, err
	}
	if _, err := h.DB.CreateProfile(r.Context(), &models.Profile{UserID: id, FullName: "Administrator", Email: h.AdminEmail}); err != nil {
		h.Log.Error("seed admin: create profile", "error", err)
	}
	return user, nil
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, user *models.User) {
	claims := &middleware.Claims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour * 7)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.JWTSecret))
	if err != nil {
		http.Error(w, `{"error":"could not create token"}`, http.StatusInternalServerError)
		return
	}
	role := h.Roles.Resolve(r.Context(), user.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{Token: token, Email: user.Email, Role: role})
}

type MeResponse struct {
	ID      string          `json:"id"`
	Email   string          `json:"email"`
	Role    string          `json:"role"`
	IsAdmin bool            `json:"isAdmin"`
	IsStaff bool            `json:"isStaff"`
	Profile *models.Profile `json:"profile,omitempty"`
}

// Me returns the caller's identity, effective role, and profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	role := h.Roles.Resolve(r.Context(), userID)
	profile, err := h.DB.ProfileByUserID(r.Context(), userID)
	if err != nil {
		h.Log.Error("me: load profile", "userId", userID.Hex(), "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MeResponse{
		ID:      userID.Hex(),
		Email:   middleware.EmailFromContext(r.Context()),
		Role:    role,
		IsAdmin: service.IsAdmin(role),
		IsStaff: service.IsStaff(role),
		Profile: profile,
	})
}

type UpdateProfileRequest struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	profile, err := h.DB.UpdateProfile(r.Context(), userID, req.FullName, req.Phone, req.Address)
	if err != nil {
		http.Error(w, `{"error":"failed to update profile"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}
