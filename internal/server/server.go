// Package server exposes the latest run report and calendar feed over HTTP.
// It is the data source for any external dashboard: plain text at "/",
// iCalendar at "/calendar".
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-greetings/internal/config"
)

// cacheItem stores one rendered artifact and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// ReportServer serves the last run's report and ICS feed.
type ReportServer struct {
	// Atomic pointers give lock-free reads: the artifacts are read often by
	// clients but replaced only once per run, so this beats a RWMutex on
	// the hot path.
	report   atomic.Pointer[cacheItem]
	calendar atomic.Pointer[cacheItem]

	Port string
	log  *slog.Logger
}

// NewReportServer creates a new instance of the server.
func NewReportServer(port string, log *slog.Logger) *ReportServer {
	return &ReportServer{
		Port: port,
		log:  log.With(config.LogKeyComponent, config.CompServer),
	}
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *ReportServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteReport, func(w http.ResponseWriter, r *http.Request) {
		s.serveItem(w, r, s.report.Load(), config.MimeTextPlain)
	})
	mux.HandleFunc(config.RouteCalendar, func(w http.ResponseWriter, r *http.Request) {
		s.serveItem(w, r, s.calendar.Load(), config.MimeTextCalendar)
	})

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      mux,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		s.log.Info(config.MsgServerListen, config.LogKeyPort, s.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info(config.MsgServerStop)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// UpdateReport atomically replaces the served report text.
func (s *ReportServer) UpdateReport(data []byte) {
	s.update(&s.report, config.RouteReport, data)
}

// UpdateCalendar atomically replaces the served ICS feed.
func (s *ReportServer) UpdateCalendar(data []byte) {
	s.update(&s.calendar, config.RouteCalendar, data)
}

func (s *ReportServer) update(slot *atomic.Pointer[cacheItem], route string, data []byte) {
	hash := sha256.Sum256(data)
	item := &cacheItem{
		data:         data,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}

	// Atomic store: a concurrent reader sees either the old or the new
	// complete item, never a partial state.
	slot.Store(item)

	s.log.Debug(config.MsgCacheUpdated,
		config.LogKeyRoute, route,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, item.etag,
	)
}

// serveItem serves one cached artifact with HTTP caching support.
func (s *ReportServer) serveItem(w http.ResponseWriter, r *http.Request, item *cacheItem, mime string) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, mime)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			s.log.Error(config.ErrWriteResp, config.LogKeyError, err)
		}
	}
}
