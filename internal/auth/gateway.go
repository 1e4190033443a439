package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starquake/kuis/internal/httputil"
)

// Messages returned to callers.
const (
	MsgWrongCode    = "Kode salah!"
	MsgUnauthorized = "Unauthorized"
)

// Gateway authenticates callers and gates handlers by role.
type Gateway struct {
	logger   *slog.Logger
	codes    Codes
	sessions SessionStore
	cookie   string
	ttl      time.Duration
	secure   bool
	now      func() time.Time
	newID    func() string
}

// NewGateway returns a Gateway issuing cookies named cookie that live for ttl.
// Secure cookies are only sent over HTTPS.
func NewGateway(
	logger *slog.Logger,
	codes Codes,
	sessions SessionStore,
	cookie string,
	ttl time.Duration,
	secure bool,
) *Gateway {
	return &Gateway{
		logger:   logger,
		codes:    codes,
		sessions: sessions,
		cookie:   cookie,
		ttl:      ttl,
		secure:   secure,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// HandleLogin checks the access code and starts a session.
// Returns 200 with the granted role.
// Returns 400 if the body is malformed or the name is empty.
// Returns 401 if the code matches neither list.
func (g *Gateway) HandleLogin() http.Handler {
	type loginRequest struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}

	type loginResponse struct {
		Success bool `json:"success"`
		Role    Role `json:"role"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		req, err := httputil.DecodeJSON[loginRequest](r)
		if err != nil {
			g.logger.ErrorContext(ctx, "error decoding loginRequest", slog.Any("err", err))
			httputil.Fail(w, r, g.logger, http.StatusBadRequest, err.Error())

			return
		}

		name := req.Name

		role, ok := g.codes.Resolve(strings.TrimSpace(req.Code))
		if !ok {
			g.logger.InfoContext(ctx, "login rejected", slog.String("name", name))
			httputil.Fail(w, r, g.logger, http.StatusUnauthorized, MsgWrongCode)

			return
		}

		id := g.newID()
		s := Session{Name: name, Role: role, CreatedAt: g.now()}
		if err = g.sessions.Save(ctx, id, s, g.ttl); err != nil {
			g.logger.ErrorContext(ctx, "error saving session", slog.Any("err", err))
			httputil.Fail(w, r, g.logger, http.StatusInternalServerError, err.Error())

			return
		}

		http.SetCookie(w, g.newCookie(id, int(g.ttl.Seconds())))
		g.logger.InfoContext(ctx, "logged in", slog.String("name", name), slog.String("role", string(role)))

		if err = httputil.EncodeJSON(w, http.StatusOK, loginResponse{Success: true, Role: role}); err != nil {
			g.logger.ErrorContext(ctx, "error encoding loginResponse", slog.Any("err", err))
		}
	})
}

// HandleLogout ends the caller's session and clears the cookie.
func (g *Gateway) HandleLogout() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(g.cookie); err == nil && c.Value != "" {
			if err = g.sessions.Delete(r.Context(), c.Value); err != nil {
				g.logger.ErrorContext(r.Context(), "error deleting session", slog.Any("err", err))
			}
		}
		http.SetCookie(w, g.newCookie("", -1))
		httputil.OK(w, r, g.logger)
	})
}

// HandleSession reports who the caller is logged in as.
func (g *Gateway) HandleSession() http.Handler {
	type sessionResponse struct {
		LoggedIn bool   `json:"loggedIn"`
		Name     string `json:"name,omitempty"`
		Role     Role   `json:"role,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var res sessionResponse
		if s, ok := FromContext(r.Context()); ok {
			res = sessionResponse{LoggedIn: true, Name: s.Name, Role: s.Role}
		}

		if err := httputil.EncodeJSON(w, http.StatusOK, res); err != nil {
			g.logger.ErrorContext(r.Context(), "error encoding sessionResponse", slog.Any("err", err))
		}
	})
}

// Middleware attaches the caller's session, if any, to the request context.
// Requests without a valid session pass through anonymously.
func (g *Gateway) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(g.cookie)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)

			return
		}

		s, err := g.sessions.Load(r.Context(), c.Value)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				next.ServeHTTP(w, r)

				return
			}
			g.logger.ErrorContext(r.Context(), "error loading session", slog.Any("err", err))
			httputil.Fail(w, r, g.logger, http.StatusInternalServerError, err.Error())

			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// RequireRole only lets callers holding role through to next.
func RequireRole(logger *slog.Logger, role Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := FromContext(r.Context())
		if !ok || s.Role != role {
			logger.InfoContext(r.Context(), "forbidden", slog.String("path", r.URL.Path), slog.String("role", string(s.Role)))
			httputil.Fail(w, r, logger, http.StatusForbidden, MsgUnauthorized)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) newCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     g.cookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
