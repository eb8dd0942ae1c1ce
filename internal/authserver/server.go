package authserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"

	"github.com/rwx-research/lms-cli/internal/errors"
)

const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
	expiryKey       = "expiry"

	sessionMaxAge   = 30 * 24 * 60 * 60
	shutdownTimeout = 5 * time.Second
)

// Server serves the same-origin auth routes the API client depends on. Tokens live in an encrypted
// session cookie; the client only ever sees the access token.
type Server struct {
	cfg    Config
	store  *sessions.CookieStore
	oauth  *oauth2.Config
	logger *slog.Logger
	router *mux.Router
}

func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	cfg = cfg.withDefaults()

	hashKey, blockKey, err := deriveKeys(cfg.SessionSecret)
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Server{
		cfg:   cfg,
		store: store,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		logger: cfg.Logger.With("component", "auth-server"),
	}
	s.router = s.routes()

	return s, nil
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	auth := router.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/sign-in", s.signIn).Methods(http.MethodPost)
	auth.HandleFunc("/token", s.token).Methods(http.MethodGet)
	auth.HandleFunc("/refresh", s.refresh).Methods(http.MethodPost)
	auth.HandleFunc("/sign-out", s.signOut).Methods(http.MethodPost)

	return router
}

func (s *Server) Handler() http.Handler {
	return logRequests(s.logger, s.router)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "unable to listen on %q", addr)
	}

	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("address", listener.Addr().String()))
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "auth server stopped")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return errors.Wrap(server.Shutdown(shutdownCtx), "unable to shut down auth server")
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if creds.Email == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, err := s.oauth.PasswordCredentialsToken(s.oauthContext(r), creds.Email, creds.Password)
	if err != nil {
		s.logger.Warn("sign-in rejected", slog.String("email", creds.Email), slog.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := s.saveToken(w, r, token); err != nil {
		s.logger.Error("unable to save session", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "unable to save session")
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, s.cfg.CookieName)

	accessToken, _ := session.Values[accessTokenKey].(string)
	if accessToken == "" {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	if expiry, ok := session.Values[expiryKey].(string); ok {
		if t, err := time.Parse(time.RFC3339, expiry); err == nil && time.Now().After(t) {
			writeError(w, http.StatusUnauthorized, "access token expired")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, s.cfg.CookieName)

	refreshToken, _ := session.Values[refreshTokenKey].(string)
	if refreshToken == "" {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	token, err := s.oauth.TokenSource(s.oauthContext(r), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		s.logger.Warn("refresh rejected", slog.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, "unable to refresh session")
		return
	}

	if err := s.saveToken(w, r, token); err != nil {
		s.logger.Error("unable to save session", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "unable to save session")
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, s.cfg.CookieName)
	session.Values = map[any]any{}
	session.Options.MaxAge = -1

	if err := session.Save(r, w); err != nil {
		s.logger.Error("unable to clear session", slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) saveToken(w http.ResponseWriter, r *http.Request, token *oauth2.Token) error {
	// A cookie that fails to decode (e.g. after a secret rotation) still yields a fresh session.
	session, _ := s.store.Get(r, s.cfg.CookieName)

	session.Values[accessTokenKey] = token.AccessToken
	if token.RefreshToken != "" {
		session.Values[refreshTokenKey] = token.RefreshToken
	}
	if token.Expiry.IsZero() {
		delete(session.Values, expiryKey)
	} else {
		session.Values[expiryKey] = token.Expiry.UTC().Format(time.RFC3339)
	}

	return session.Save(r, w)
}

func (s *Server) oauthContext(r *http.Request) context.Context {
	if s.cfg.HTTPClient == nil {
		return r.Context()
	}
	return context.WithValue(r.Context(), oauth2.HTTPClient, s.cfg.HTTPClient)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"code":    status,
		"status":  "error",
		"message": message,
	})
}
