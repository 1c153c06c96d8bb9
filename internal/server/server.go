package server

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"time"
)

// BuildInfo identifies the running binary in logs and health output.
type BuildInfo struct {
	Version string
	Commit  string
}

// Config wires the request handlers to their collaborators. Everything
// is injected; nothing reaches for ambient globals.
type Config struct {
	Addr        string // e.g. ":8080"
	Build       BuildInfo
	Session     SessionConfig
	Credentials *CredentialStore
	Catalog     Catalog
	Objects     ObjectStore // nil when storage is misconfigured
	DB          *sql.DB
}

type Server struct {
	httpServer *http.Server
	db         *sql.DB
	objects    ObjectStore
	build      BuildInfo
}

func New(cfg Config) *Server {
	s := &Server{
		db:      cfg.DB,
		objects: cfg.Objects,
		build:   cfg.Build,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/live", s.handleLive)

	mux.Handle("/auth/verify", cfg.verifyHandler())
	mux.Handle("/auth/change-password", cfg.changePasswordHandler())

	mux.Handle("/files", cfg.filesHandler())
	mux.Handle("/files/presign-upload", cfg.presignUploadHandler())
	mux.Handle("/files/download-url", cfg.downloadURLHandler())

	// Wrap middleware: requestID -> logging -> mux
	var handler http.Handler = mux
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler exposes the full middleware-wrapped handler, mainly for tests
// that mount the server inside httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
