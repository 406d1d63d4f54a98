package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-desk/auth"
	"github.com/diewo77/invoice-desk/httpx"
	"github.com/diewo77/invoice-desk/internal/apperr"
	"github.com/diewo77/invoice-desk/internal/models"
	"github.com/diewo77/invoice-desk/validation"
)

type AuthHandler struct {
	db       *gorm.DB
	sessions *auth.Sessions
	log      *zap.Logger
}

func NewAuthHandler(db *gorm.DB, sessions *auth.Sessions, log *zap.Logger) *AuthHandler {
	return &AuthHandler{db: db, sessions: sessions, log: log}
}

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"max=255"`
}

type userResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := httpx.Decode(r.Body, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, r, h.log, apperr.InvalidField("email", "Email and password are required"))
		return
	}

	var user models.User
	err := h.db.WithContext(r.Context()).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, r, h.log, apperr.DataAccess(err, "load user"))
		return
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	h.sessions.Create(w, user.ID)
	httpx.JSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := httpx.Decode(r.Body, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	v := validation.Struct(req, map[string]string{
		"password.min": "Password must be at least 8 characters",
	})
	if !v.Empty() {
		writeError(w, r, h.log, apperr.Invalid(v))
		return
	}

	email := normalizeEmail(req.Email)
	var count int64
	if err := h.db.WithContext(r.Context()).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		writeError(w, r, h.log, apperr.DataAccess(err, "check email"))
		return
	}
	if count > 0 {
		writeError(w, r, h.log, apperr.InvalidField("email", "Email already exists"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	user := models.User{
		Email:    email,
		Password: string(hashedPassword),
		Name:     strings.TrimSpace(req.Name),
	}
	if err := h.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		writeError(w, r, h.log, apperr.DataAccess(err, "create user"))
		return
	}

	h.sessions.Create(w, user.ID)
	httpx.JSON(w, http.StatusCreated, userResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
