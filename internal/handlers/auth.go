package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/kaiunlab/kaiun/internal/auth"
	"github.com/kaiunlab/kaiun/internal/config"
)

// AuthHandler issues admin JWTs.
type AuthHandler struct {
	logger       *slog.Logger
	username     string
	passwordHash []byte
	jwtSecret    string
	expiresIn    time.Duration
}

// NewAuthHandler creates the login handler. The admin password is hashed
// at startup so the plaintext is not held for the process lifetime.
func NewAuthHandler(log *slog.Logger, cfg config.Config) (*AuthHandler, error) {
	if log == nil {
		log = slog.Default()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	expiresIn, err := time.ParseDuration(cfg.Auth.JWTExpiresIn)
	if err != nil || expiresIn <= 0 {
		expiresIn = 24 * time.Hour
	}
	return &AuthHandler{
		logger:       log.With(slog.String("handler", "auth")),
		username:     cfg.Admin.Username,
		passwordHash: hash,
		jwtSecret:    cfg.Auth.JWTSecret,
		expiresIn:    expiresIn,
	}, nil
}

// Register registers auth routes.
func (h *AuthHandler) Register(e *echo.Echo) {
	e.POST("/auth/login", h.Login)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login checks the admin credentials and returns a signed JWT.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username != h.username ||
		bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)) != nil {
		h.logger.Warn("login rejected", slog.String("username", req.Username))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, expiresAt, err := auth.GenerateToken(req.Username, h.jwtSecret, h.expiresIn)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}
