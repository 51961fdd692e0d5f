// Package server serves a built book over HTTP for local preview.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/quantmind-br/folio/internal/domain"
	"github.com/quantmind-br/folio/internal/utils"
	"golang.org/x/net/netutil"
)

// DefaultMaxConns caps concurrent connections when Options.MaxConns is unset
const DefaultMaxConns = 64

// Options contains options for starting the dev server
type Options struct {
	// Dir is the directory served; files are read on every request
	Dir  string
	Host string
	// Port 0 picks a free port
	Port     int
	Logger   *utils.Logger
	MaxConns int
}

// Handle controls a running server
type Handle struct {
	server   *http.Server
	listener net.Listener
	url      string
	logger   *utils.Logger

	done chan struct{}
	err  error
	once sync.Once
}

// Serve binds the listening socket and starts serving opts.Dir in the
// background. Binding happens before Serve returns, so a busy port is
// reported as a PortInUseError here rather than later.
func Serve(ctx context.Context, opts Options) (*Handle, error) {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	logger = logger.WithComponent("server")

	info, err := os.Stat(opts.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &domain.NotFoundError{Path: opts.Dir}
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, domain.NewConfigError("dir", opts.Dir+" is not a directory", nil)
	}
	if opts.Port < 0 || opts.Port > 65535 {
		return nil, domain.NewConfigError("port", "port must be between 0 and 65535", nil)
	}

	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, &domain.PortInUseError{Port: opts.Port, Err: err}
		}
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	maxConns := opts.MaxConns
	if maxConns < 1 {
		maxConns = DefaultMaxConns
	}

	h := &Handle{
		listener: ln,
		url:      displayURL(opts.Host, ln.Addr()),
		logger:   logger,
		done:     make(chan struct{}),
	}
	h.server = &http.Server{
		Handler:           NewHandler(opts.Dir, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		defer close(h.done)
		err := h.server.Serve(netutil.LimitListener(ln, maxConns))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server stopped")
			h.err = err
		}
	}()

	event := logger.Debug().Str("addr", ln.Addr().String()).Str("dir", opts.Dir)
	if files, size, err := utils.DirStats(opts.Dir); err == nil {
		event = event.Int("files", files).Int64("bytes", size)
	}
	event.Msg("Listening")
	return h, nil
}

// URL returns the browsable address, e.g. http://localhost:4000
func (h *Handle) URL() string {
	return h.url
}

// Addr returns the bound address
func (h *Handle) Addr() net.Addr {
	return h.listener.Addr()
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires. The port is released when it returns.
func (h *Handle) Shutdown(ctx context.Context) error {
	var err error
	h.once.Do(func() {
		err = h.server.Shutdown(ctx)
		if err != nil {
			_ = h.server.Close()
		}
		<-h.done
		h.logger.Debug().Msg("Server shut down")
	})
	return err
}

// Wait blocks until the server stops and returns the serve error, if any
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

func displayURL(host string, addr net.Addr) string {
	port := strconv.Itoa(addr.(*net.TCPAddr).Port)
	switch host {
	case "", "0.0.0.0", "::", "127.0.0.1", "::1":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
