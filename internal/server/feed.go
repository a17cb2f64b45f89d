package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-lifeclock/internal/config"
)

// feedItem is one published version of the milestone calendar.
type feedItem struct {
	data    []byte
	etag    string
	modTime time.Time
}

// FeedServer publishes the milestone calendar on localhost.
// Readers never block: Publish swaps the whole item atomically.
type FeedServer struct {
	Port string

	cache atomic.Pointer[feedItem]
}

// NewFeedServer creates a server bound to the loopback interface on port.
func NewFeedServer(port string) *FeedServer {
	return &FeedServer{Port: port}
}

// Start listens on the configured port and serves until ctx is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", config.LocalhostBindAddr+config.AddrSeparator+s.Port)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully.
func (s *FeedServer) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(config.RouteRoot, s)

	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serveErr := make(chan error, config.ChannelBufferSize)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, ln.Addr().String(),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil
	case err := <-serveErr:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Publish replaces the served calendar. Publishing identical bytes keeps the
// previous modification time, so conditional requests keep returning 304.
func (s *FeedServer) Publish(data []byte) {
	sum := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(sum[:]))

	if prev := s.cache.Load(); prev != nil && prev.etag == etag {
		return
	}

	s.cache.Store(&feedItem{
		data:    data,
		etag:    etag,
		modTime: time.Now().UTC().Truncate(time.Second),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// Ready reports whether a calendar has been published.
func (s *FeedServer) Ready() bool {
	return s.cache.Load() != nil
}

// ServeHTTP answers GET and HEAD with the current calendar.
// Conditional headers and HEAD bodies are handled by http.ServeContent.
func (s *FeedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	h := w.Header()
	h.Set(config.HeaderContentType, config.MimeTextCalendar)
	h.Set(config.HeaderXContentType, config.MimeNoSniff)
	h.Set(config.HeaderCacheControl, config.CacheControlPrivate)
	h.Set(config.HeaderETag, item.etag)

	http.ServeContent(w, r, config.FeedFileName, item.modTime, bytes.NewReader(item.data))
}
