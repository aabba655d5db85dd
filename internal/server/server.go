// Package server runs the TCP accept loop for the match protocol,
// handing each accepted connection to a new session.Session. Its accept
// loop is grounded on the same temporary-error backoff shape used by
// production TCP servers: a failure to accept (too many open files, a
// transient network blip) should slow the loop down, not spin it or
// bring the listener down.
package server

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/open5dchess/matchd/internal/lobby"
	"github.com/open5dchess/matchd/internal/session"
)

// Server accepts game-protocol connections and runs one session.Session
// per connection against a shared Lobby.
type Server struct {
	Lobby    *lobby.Lobby
	Registry *session.Registry
	Logger   *log.Logger
	Config   session.Config

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// ListenAndServe binds addr and serves until ctx is cancelled or Serve
// returns an unrecoverable error.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is cancelled. It always
// closes ln before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var tempDelay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				return nil
			}
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				s.Logger.Error("accept error, retrying", "delay", tempDelay, "err", err)
				time.Sleep(tempDelay)
				continue
			}
			return err
		}
		tempDelay = 0

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	sess := session.New(conn, s.Lobby, s.Registry, s.Logger, s.Config)
	s.Logger.Debug("session connected", "remote", conn.RemoteAddr())
	_ = sess.Run()
	s.Logger.Debug("session closed", "remote", conn.RemoteAddr())
}
