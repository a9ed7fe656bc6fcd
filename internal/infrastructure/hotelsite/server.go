package hotelsite

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Server serves a Site on a TCP listener.
type Server struct {
	listener net.Listener
	http     *http.Server
	done     chan error
}

// Start listens on addr ("127.0.0.1:0" picks a free port) and serves in the
// background until Shutdown.
func Start(addr string, opts Options) (*Server, error) {
	site, err := New(opts)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	s := &Server{
		listener: ln,
		http: &http.Server{
			Handler:           site,
			ReadHeaderTimeout: 10 * time.Second,
		},
		done: make(chan error, 1),
	}
	go func() {
		err := s.http.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	return s, nil
}

// URL is the server's base URL without a trailing slash.
func (s *Server) URL() string {
	return "http://" + s.listener.Addr().String()
}

// Done receives the serve error once the server stops; nil after Shutdown.
func (s *Server) Done() <-chan error {
	return s.done
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
