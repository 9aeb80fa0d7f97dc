package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/simaris-dev/simaris-auth/internal/config"
	"github.com/simaris-dev/simaris-auth/session"
	"github.com/simaris-dev/simaris-auth/sso"
	"github.com/simaris-dev/simaris-auth/users"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "production")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	users    users.Repo
	sessions session.Repo
	sso      *sso.Client
	decoder  *sso.TokenDecoder
	metrics  *Metrics
	log      zerolog.Logger
}

func New(cfg config.Config, userRepo users.Repo, sessionRepo session.Repo, ssoClient *sso.Client) (*Server, error) {
	decoder, err := sso.NewTokenDecoder(cfg.ProviderPublicKey)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create token decoder: %w", err)
	}
	if !decoder.Verifying() {
		log.Warn().Msg("no provider public key configured; callback tokens will not be signature-verified")
	}

	s := &Server{
		env:      cfg.Env,
		mux:      http.NewServeMux(),
		config:   cfg,
		users:    userRepo,
		sessions: sessionRepo,
		sso:      ssoClient,
		decoder:  decoder,
		metrics:  NewMetrics(),
		log:      log.With().Str("component", "server").Logger(),
	}

	// Bootstrap: ensure the seeded super admin exists
	if err := s.InitialiseSystem(cfg); err != nil {
		return nil, fmt.Errorf("[Server New] failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.log.Info().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			s.log.Info().Str("path", parts[0]).Msg("route")
		}
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
