package auth

import (
	"net/http"

	autherrors "go-hrpayroll/internal/auth/errors"
	"go-hrpayroll/internal/shared/apperror"
	"go-hrpayroll/internal/shared/response"

	"github.com/gin-gonic/gin"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

type Handler struct {
	service      Service
	secureCookie bool
	refreshTTL   int
}

// NewHandler takes the refresh cookie lifetime in seconds; secureCookie
// should be true outside local development.
func NewHandler(s Service, secureCookie bool, refreshTTL int) *Handler {
	return &Handler{service: s, secureCookie: secureCookie, refreshTTL: refreshTTL}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) setCookies(c *gin.Context, resp TokenResponse) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     accessCookie,
		Value:    resp.AccessToken,
		Path:     "/",
		MaxAge:   int(resp.ExpiresIn),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     refreshCookie,
		Value:    resp.RefreshToken,
		Path:     "/",
		MaxAge:   h.refreshTTL,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookies(c *gin.Context) {
	for _, name := range []string{accessCookie, refreshCookie} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if isWebClient(c) {
		h.setCookies(c, resp)
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) RefreshToken(c *gin.Context) {
	var raw string
	if isWebClient(c) {
		if cookie, err := c.Cookie(refreshCookie); err == nil {
			raw = cookie
		}
	}
	if raw == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeServiceError(c, autherrors.ErrTokenNotFound)
			return
		}
		raw = req.RefreshToken
	}

	resp, err := h.service.RefreshToken(c.Request.Context(), raw)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if isWebClient(c) {
		h.setCookies(c, resp)
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Me(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		writeServiceError(c, autherrors.ErrTokenNotFound)
		return
	}

	resp, err := h.service.GetMe(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Logout(c *gin.Context) {
	h.clearCookies(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, nil)
}
