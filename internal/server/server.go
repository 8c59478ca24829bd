package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/minesweeper/internal/game"
	"github.com/lox/minesweeper/internal/randutil"
	"github.com/lox/minesweeper/internal/statistics"
)

// DefaultMaxCells caps the board size a client may request.
const DefaultMaxCells = 10000

// Config controls what every session is allowed to play.
type Config struct {
	// Presets are offered alongside the built-in difficulties.
	Presets []game.Preset
	// EngineOptions are applied to every engine after the session's own.
	EngineOptions []game.Option
	// AllowedOrigins lists accepted Origin headers. "*" accepts any.
	AllowedOrigins []string
	// MaxCells is the largest board, in cells, a session will build.
	MaxCells int
	Clock    quartz.Clock

	newEngine func(game.Params, ...game.Option) (*game.Engine, error)
}

// Option configures a Server.
type Option func(*Config)

func WithPresets(presets ...game.Preset) Option {
	return func(c *Config) { c.Presets = append(c.Presets, presets...) }
}

func WithEngineOptions(opts ...game.Option) Option {
	return func(c *Config) { c.EngineOptions = append(c.EngineOptions, opts...) }
}

func WithAllowedOrigins(origins ...string) Option {
	return func(c *Config) { c.AllowedOrigins = origins }
}

func WithClock(clock quartz.Clock) Option {
	return func(c *Config) { c.Clock = clock }
}

func WithMaxCells(n int) Option {
	return func(c *Config) { c.MaxCells = n }
}

// checkParams rejects boards that are unplayable or larger than MaxCells.
func (c Config) checkParams(p game.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Cells() > c.MaxCells {
		return fmt.Errorf("%w: %s has %d cells, the limit is %d", game.ErrInvalidParameters, p, p.Cells(), c.MaxCells)
	}
	return nil
}

// Server hosts one minesweeper session per WebSocket connection.
type Server struct {
	config   Config
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu       sync.Mutex
	rng      *rand.Rand
	sessions map[*Connection]struct{}
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc

	statsMu sync.Mutex
	stats   statistics.Statistics
}

// NewServer creates a server. Session layouts are seeded from rng, so a
// seeded server replays the same boards for the same connection order.
func NewServer(logger *log.Logger, rng *rand.Rand, opts ...Option) *Server {
	cfg := Config{AllowedOrigins: []string{"*"}, MaxCells: DefaultMaxCells}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.newEngine == nil {
		cfg.newEngine = game.New
	}
	if rng == nil {
		rng = randutil.New(time.Now().UnixNano())
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:   cfg,
		logger:   logger.WithPrefix("server"),
		rng:      rng,
		sessions: make(map[*Connection]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:     s.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return s
}

// Handler returns the HTTP routes served by s.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))

	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Get("/presets", s.handlePresets)
	r.Get("/stats", s.handleStats)
	return r
}

// Serve listens on addr until ctx is cancelled, then shuts down the HTTP
// server and closes every session.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.Stop()
		return err
	})
	return g.Wait()
}

// Stop closes every open session and waits for their goroutines to exit.
func (s *Server) Stop() {
	s.cancel()

	s.mu.Lock()
	for conn := range s.sessions {
		_ = conn.Close() // Ignore close errors during shutdown
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Sessions reports the number of connected clients.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.ContainsFunc(s.config.AllowedOrigins, func(allowed string) bool {
		return allowed == "*" || strings.EqualFold(allowed, origin)
	})
}

// sessionRand derives an independent generator for a new session.
func (s *Server) sessionRand() (*rand.Rand, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seed := s.rng.Int64()
	return randutil.New(seed), seed
}

// boardKeys are the query keys that describe a board.
var boardKeys = []string{"preset", "rows", "columns", "mines"}

// handleWebSocket upgrades the request and runs a session on it. When the
// query names a board the game starts straight away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	var (
		params game.Params
		err    error
	)
	query := r.URL.Query()
	hasParams := slices.ContainsFunc(boardKeys, query.Has)
	if hasParams {
		params, err = game.ParseQuery(query, s.config.Presets...)
		if err == nil {
			err = s.config.checkParams(params)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	rng, seed := s.sessionRand()
	conn := NewConnection(ws, s.logger)
	sess := newSession(conn, s.config, rng, s.logger.With("remote", r.RemoteAddr))
	sess.onResult = s.record

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.sessions[conn] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Client connected", "remote", r.RemoteAddr, "seed", seed, "total", s.Sessions())
	conn.Start()

	go func() {
		defer s.wg.Done()
		defer func() {
			_ = conn.Close()
			s.mu.Lock()
			delete(s.sessions, conn)
			total := len(s.sessions)
			s.mu.Unlock()
			s.logger.Info("Client disconnected", "remote", r.RemoteAddr, "total", total)
		}()

		if hasParams {
			if err := sess.start(params); err != nil {
				sess.sendError(ErrCodeInvalidParameters, err.Error())
			}
			sess.syncTicker()
		}
		sess.run(s.ctx)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	presets := append(game.Presets(), s.config.Presets...)
	out := make([]PresetInfo, 0, len(presets))
	for _, p := range presets {
		out = append(out, PresetInfo{
			Name:    p.Name,
			Rows:    p.Params.Rows,
			Columns: p.Params.Columns,
			Mines:   p.Params.Mines,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.logger.Debug("Failed to write presets", "error", err)
	}
}

// record adds a finished game to the server-wide statistics.
func (s *Server) record(result statistics.Result) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.stats.Add(result)
	s.logger.Info("Game finished", "params", result.Params, "won", result.Won, "elapsed", result.Elapsed, "record", s.stats.String())
}

// Stats returns a snapshot of the results recorded since start.
func (s *Server) Stats() StatsData {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return StatsDataFromStatistics(&s.stats)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Stats()); err != nil {
		s.logger.Debug("Failed to write stats", "error", err)
	}
}
