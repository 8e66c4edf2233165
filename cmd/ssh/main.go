package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/astrds/internal/config"
	"github.com/tomz197/astrds/internal/game"
	"github.com/tomz197/astrds/internal/loop"
	"github.com/tomz197/astrds/internal/object"
	"github.com/tomz197/astrds/internal/store"
)

// slotPrefix namespaces per-user high score slots.
const slotPrefix = "astrds:"

// server holds what every SSH session shares: settings, the score
// database and the logger. Each session still gets its own game.
type server struct {
	settings config.Settings
	db       *store.SQLite
	logger   *log.Logger
	sessions atomic.Int64
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "astrds-ssh",
	})

	settings, err := config.LoadSettings(config.GetEnv("ASTRDS_CONFIG", ""))
	if err != nil {
		logger.Fatal("failed to load settings", "error", err)
	}
	settings.ApplyEnv()

	hostKeyPath, err := config.ExpandHome(settings.SSH.HostKey)
	if err != nil {
		logger.Fatal("invalid host key path", "error", err)
	}
	logger.Info("SSH config", "host", settings.SSH.Host, "port", settings.SSH.Port, "hostKeyPath", hostKeyPath, "db", settings.DBPath)

	srv := &server{settings: settings, logger: logger}
	db, err := store.Open(settings.DBPath)
	if err != nil {
		logger.Warn("high scores will not be saved", "error", err)
	} else {
		srv.db = db
		defer db.Close()
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(settings.SSH.Host, settings.SSH.Port)),
		wish.WithMiddleware(
			srv.gameMiddleware,
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}
	if settings.SSH.IdleTimeout > 0 {
		// Backstop for connections stuck outside the game loop.
		opts = append(opts, wish.WithIdleTimeout(settings.SSH.IdleTimeout+time.Minute))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting SSH server", "address", net.JoinHostPort(settings.SSH.Host, settings.SSH.Port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "error", err)
		}
	}()

	<-done
	logger.Info("Shutting down server...", "sessions", srv.sessions.Load())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("shutdown error", "error", err)
	}
}

// highScoreStore returns the per-user slot, or an in-memory store when the
// database is unavailable.
func (srv *server) highScoreStore(user string) game.HighScoreStore {
	if srv.db == nil {
		return store.NewMemory(0)
	}
	slot, err := srv.db.Slot(slotPrefix + user)
	if err != nil {
		srv.logger.Warn("no high score slot", "user", user, "error", err)
		return store.NewMemory(0)
	}
	srv.logger.Debug("high score slot", "user", user, "slot", slot.Key())
	return slot
}

// gameMiddleware runs one independent game per SSH session.
func (srv *server) gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		id := srv.sessions.Add(1)
		defer srv.sessions.Add(-1)
		logger := srv.logger.With("user", sess.User(), "session", id)
		logger.Info("New game session", "terminal", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		seed := srv.settings.Seed
		if seed == 0 {
			seed = time.Now().UnixNano() + id
		}

		c := loop.NewClient(bufio.NewReader(sess), sess, loop.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     sess.User(),
			Store:        srv.highScoreStore(sess.User()),
			Rand:         object.NewRand(seed),
			Logger:       logger,
			FPS:          srv.settings.FPS,
			IdleTimeout:  srv.settings.SSH.IdleTimeout,
			ForceColor:   true,
		})
		if err := c.Run(sess.Context()); err != nil {
			logger.Error("Game error", "error", err)
		}

		logger.Info("Session ended", "score", c.Session().Score(), "high_score", c.Session().HighScore())
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}
