package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"nexus-ai-chat/internal/infra/logging"
	"nexus-ai-chat/internal/usecase"
)

// clientCookie carries the anonymous client id that keys local history and
// in-memory conversation state. It exists independently of sign-in.
const clientCookie = "nexus_client"

type ctxKey int

const (
	ctxClientState ctxKey = iota
	ctxClientID
)

type MediaHandler interface {
	Handler() http.Handler
}

type Server struct {
	hub     *usecase.Hub
	auth    *AuthManager
	media   MediaHandler
	history HistoryAPI
	log     *zerolog.Logger
}

// HistoryAPI is the slice of the history store the web layer talks to
// directly (theme preference); chat history goes through the orchestrator.
type HistoryAPI interface {
	Theme(ctx context.Context, clientID string) (string, error)
	SetTheme(ctx context.Context, clientID, theme string) error
}

func NewServer(hub *usecase.Hub, auth *AuthManager, media MediaHandler, history HistoryAPI, logger *zerolog.Logger) *Server {
	return &Server{hub: hub, auth: auth, media: media, history: history, log: logger}
}

// Router assembles the full route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/media", s.media.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.clientMiddleware)

		r.Post("/auth/signup", s.handleSignUp())
		r.Post("/auth/signin", s.handleSignIn())
		r.Post("/auth/signout", s.handleSignOut())
		r.Get("/auth/me", s.handleMe())

		r.Get("/models", s.handleModels())
		r.Get("/templates", s.handleTemplates())

		r.Route("/chat", func(r chi.Router) {
			r.Get("/", s.handleChatState())
			r.Post("/send", s.handleSend())
			r.Get("/stream", s.handleStream())
			r.Post("/new", s.handleNewChat())
			r.Post("/input", s.handleSetInput())
			r.Post("/model", s.handleSetModel())
			r.Post("/params", s.handleSetParams())
			r.Post("/image", s.handleAttachImage())
			r.Delete("/image", s.handleClearImage())
		})

		r.Get("/sessions", s.handleListSessions())
		r.Get("/sessions/{id}", s.handleLoadSession())
		r.Delete("/sessions/{id}", s.handleDeleteSession())

		r.Get("/history", s.handleHistory())
		r.Get("/theme", s.handleGetTheme())
		r.Put("/theme", s.handleSetTheme())
	})
	return r
}

// clientMiddleware resolves (or mints) the client id, attaches the client's
// state, and restores a signed-in identity from a still-valid token when the
// in-memory state has been lost.
func (s *Server) clientMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := ""
		if c, err := r.Cookie(clientCookie); err == nil && c.Value != "" {
			clientID = c.Value
		}
		if clientID == "" {
			clientID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     clientCookie,
				Value:    clientID,
				Path:     "/",
				MaxAge:   int((365 * 24 * time.Hour).Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		st := s.hub.Client(clientID)
		if st.Auth.Identity() == nil {
			if claims, err := s.auth.ParseFromRequest(r); err == nil {
				if err := st.Auth.Restore(r.Context(), claims.Subject); err != nil {
					s.log.Debug().Err(err).Msg("token identity no longer exists")
				}
			}
		}

		ctx := context.WithValue(r.Context(), ctxClientState, st)
		ctx = context.WithValue(ctx, ctxClientID, clientID)
		ctx = logging.WithClientID(ctx, clientID)
		if id := st.Auth.Identity(); id != nil {
			ctx = logging.WithUserID(ctx, id.ID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientState(r *http.Request) *usecase.ClientState {
	st, _ := r.Context().Value(ctxClientState).(*usecase.ClientState)
	return st
}

func clientID(r *http.Request) string {
	id, _ := r.Context().Value(ctxClientID).(string)
	return id
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
