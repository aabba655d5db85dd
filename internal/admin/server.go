// Package admin exposes a live, read-only operator dashboard over SSH:
// open matches, running matches, and recent history. It never mutates
// lobby state — every value it shows comes from lobby.Snapshot(), the
// same call a future metrics exporter would use. Modeled on the
// teacher's SSHServer: a wish.Server with a Bubble Tea middleware
// handler, one program per SSH session.
package admin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/open5dchess/matchd/internal/lobby"
	"github.com/open5dchess/matchd/internal/session"
)

// Config holds the admin console's own settings, distinct from the game
// protocol's session.Config.
type Config struct {
	// Address is the host:port the SSH console listens on.
	Address string
	// HostKeyPath is where the console's SSH host key lives. An empty
	// value auto-generates one under the user's home directory.
	HostKeyPath string
	// IdleTimeout closes an operator's SSH session after this long with
	// no input.
	IdleTimeout time.Duration
}

// DefaultConfig returns sensible admin console defaults.
func DefaultConfig() Config {
	return Config{
		Address:     ":2323",
		IdleTimeout: 30 * time.Minute,
	}
}

// Server is the SSH-exposed admin dashboard.
type Server struct {
	config   Config
	server   *ssh.Server
	logger   *log.Logger
	lobby    *lobby.Lobby
	registry *session.Registry
}

// NewServer builds an admin Server reading from lobby and registry. The
// returned server is not yet listening; call ListenAndServe.
//
// The dashboard polls lobby.Snapshot() on a fixed tick rather than
// subscribing to the lobby's AdminEvent channel: that channel is a
// single best-effort stream with one reader, which fits a single
// in-process consumer but not an arbitrary number of concurrently
// connected operators, each running their own Bubble Tea program.
func NewServer(cfg Config, l *lobby.Lobby, registry *session.Registry, logger *log.Logger) (*Server, error) {
	srv := &Server{
		config:   cfg,
		logger:   logger,
		lobby:    l,
		registry: registry,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("admin: cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".matchd", "admin_host_key")
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("admin: cannot create host key directory: %w", err)
	}

	wishServer, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("admin: cannot create SSH server: %w", err)
	}
	srv.server = wishServer
	return srv, nil
}

func (s *Server) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	width, height := 100, 30
	if ok {
		width, height = pty.Window.Width, pty.Window.Height
	}
	model := newDashboardModel(s.lobby, s.registry, width, height)
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

func (s *Server) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("admin session started", "user", sshSession.User(), "remote", sshSession.RemoteAddr().String())
		next(sshSession)
		s.logger.Info("admin session ended", "user", sshSession.User(), "remote", sshSession.RemoteAddr().String())
	}
}

// ListenAndServe starts the SSH console and blocks until ctx is
// cancelled, at which point it shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting admin console", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
