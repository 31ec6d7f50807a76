package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-crm-connector/auth"
	"github.com/jrsteele09/go-crm-connector/crm"
	"github.com/jrsteele09/go-crm-connector/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// LocationReader is the platform call behind /api/location
type LocationReader interface {
	GetLocation(ctx context.Context, accessToken, locationID string) (*crm.Location, error)
}

// HealthCheck reports whether a backing store is reachable
type HealthCheck func(ctx context.Context) error

// Dependencies are the collaborators the HTTP surface is wired to
type Dependencies struct {
	Auth      *auth.Service
	Locations LocationReader
	Health    HealthCheck         // Optional, nil reports healthy
	Gatherer  prometheus.Gatherer // Optional, nil disables /metrics
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	auth    *auth.Service
	crm     LocationReader
	health  HealthCheck
	metrics http.Handler
}

func New(config config.Config, deps Dependencies) (*Server, error) {
	if deps.Auth == nil {
		return nil, fmt.Errorf("[Server New] auth service is required")
	}
	if deps.Locations == nil {
		return nil, fmt.Errorf("[Server New] location reader is required")
	}

	s := &Server{
		env:    config.GetEnv(),
		mux:    http.NewServeMux(),
		config: config,
		auth:   deps.Auth,
		crm:    deps.Locations,
		health: deps.Health,
	}
	if deps.Gatherer != nil {
		s.metrics = promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})
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
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%s %-7s%s] %s", color, method, ResetColor, path)
}
