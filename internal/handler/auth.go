package handler

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/azure-divers/booking-api/internal/repository"
	"github.com/azure-divers/booking-api/internal/service"
	"github.com/azure-divers/booking-api/internal/utils"
)

// AuthHandler issues access tokens for staff accounts. There is no
// self-service registration: accounts are provisioned by dbinit (or by
// hand) and only active accounts may log in.
type AuthHandler struct {
	Users     *repository.UserRepo
	JWTSecret string
	AccessTTL int // minutes
}

func NewAuthHandler(users *repository.UserRepo, jwtSecret string, accessTTLMin int) *AuthHandler {
	if users == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Users: users, JWTSecret: jwtSecret, AccessTTL: accessTTLMin}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login. Invalid email, unknown account,
// wrong password and disabled account all return the same 401 so the
// response does not leak which part failed.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !service.ValidEmail(req.Email) || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	u, err := h.Users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		log.Printf("handler: login lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	tok, err := utils.NewAccessToken(h.JWTSecret, u.ID, u.Role, h.AccessTTL)
	if err != nil {
		log.Printf("handler: sign access token failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":    u.ID,
			"email": u.Email,
			"role":  u.Role,
		},
		"access": echo.Map{
			"token":     tok.Token,
			"expiresAt": tok.Exp,
		},
	})
}

// Me handles GET /api/auth/me. Requires JWTAuth.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := userID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token subject"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account no longer exists"})
		}
		log.Printf("handler: me lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch account"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":        u.ID,
		"email":     u.Email,
		"role":      u.Role,
		"isActive":  u.IsActive,
		"createdAt": u.CreatedAt,
	})
}

// userID extracts the authenticated user's id set by the JWT
// middleware. The "sub" claim round-trips through JSON, so it may come
// back as a float64 or a string depending on how it was issued.
func userID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}
