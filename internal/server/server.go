package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/clock"
	"github.com/muurk/midnightbrew/internal/discovery"
	"github.com/muurk/midnightbrew/internal/logging"
	"github.com/muurk/midnightbrew/internal/version"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultPort is the default HTTP port
	DefaultPort = 8080

	// DefaultSignupDelay simulates the time taken to process an application
	DefaultSignupDelay = 2 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds the server configuration
type Config struct {
	Host     string
	Port     int
	CertPath string // Path to certificate file (optional, enables HTTPS with KeyPath)
	KeyPath  string // Path to private key file

	Catalog *catalog.Catalog // Content served by the API (default catalog.Default())
	Clock   clock.Clock      // Drives delays and carousels (default clock.Real())

	SignupDelay      time.Duration // Simulated processing time per application (0 = none)
	AutoplayInterval time.Duration // Testimonial carousel period (0 = carousel default)

	Advertise    bool   // Register the server via mDNS
	InstanceName string // mDNS instance name (default "Midnight Brew on <hostname>")
}

// Server is the Midnight Brew storefront API
type Server struct {
	config   *Config
	catalog  *catalog.Catalog
	clock    clock.Clock
	signups  *signupStore
	upgrader websocket.Upgrader
	handler  http.Handler

	mu          sync.Mutex
	httpServer  *http.Server
	listener    net.Listener
	activeConns map[string]*websocket.Conn
	wg          sync.WaitGroup
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	if config == nil {
		config = &Config{}
	}
	if config.Port < 0 || config.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", config.Port)
	}
	if (config.CertPath == "") != (config.KeyPath == "") {
		return nil, fmt.Errorf("both a certificate and a key are required for HTTPS")
	}

	cat := config.Catalog
	if cat == nil {
		cat = catalog.Default()
	} else if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	s := &Server{
		config:      config,
		catalog:     cat,
		clock:       clk,
		signups:     newSignupStore(),
		activeConns: make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The terminal client sends no Origin; browsers on other
			// hosts are not expected.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listening address once Start has bound it
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run starts the server and blocks until SIGINT/SIGTERM or a fatal error
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Start(ctx)
}

// Start binds the listener, serves HTTP and (optionally) advertises the
// server via mDNS. It blocks until ctx ends or serving fails, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))

	var tlsConfig *tls.Config
	if s.config.CertPath != "" {
		var err error
		tlsConfig, err = NewTLSConfig(s.config.CertPath, s.config.KeyPath)
		if err != nil {
			return fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if tlsConfig != nil {
		listener = tls.NewListener(listener, tlsConfig)
	}

	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(logging.GetLogger()),
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = httpServer
	s.mu.Unlock()

	logging.Info("Starting Midnight Brew server",
		zap.String("addr", listener.Addr().String()),
		zap.Bool("tls", tlsConfig != nil),
		zap.String("version", version.Version),
		zap.Int("plans", len(s.catalog.Plans)),
		zap.Int("testimonials", len(s.catalog.Testimonials)),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.config.Advertise {
		g.Go(func() error {
			reg, err := discovery.Register(s.instanceName(), listener.Addr().(*net.TCPAddr).Port, map[string]string{
				"version": version.Version,
				"path":    "/api/v1",
			})
			if err != nil {
				// Discovery is a convenience; serving continues without it
				logging.Warn("mDNS advertisement failed", zap.Error(err))
				return nil
			}
			<-gctx.Done()
			reg.Shutdown()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutdown requested, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) instanceName() string {
	if s.config.InstanceName != "" {
		return s.config.InstanceName
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "Midnight Brew"
	}
	return "Midnight Brew on " + host
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	conns := make(map[string]*websocket.Conn, len(s.activeConns))
	for addr, conn := range s.activeConns {
		conns[addr] = conn
	}
	s.mu.Unlock()

	var err error
	if httpServer != nil {
		// Hijacked WebSocket connections are not tracked by http.Server
		err = httpServer.Shutdown(ctx)
	}

	for addr, conn := range conns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()

	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// GetActiveConnections returns the number of open WebSocket connections
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}
