package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-rangepicker/internal/config"
	"github.com/tartampluch/go-rangepicker/internal/engine"
)

// rangePayload is the JSON body of config.RouteRangeJSON.
type rangePayload struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// representation is one pre-rendered body with its validators.
type representation struct {
	data        []byte
	etag        string
	contentType string
}

// cacheItem stores everything published for the last applied range.
type cacheItem struct {
	rng          engine.DateRange
	label        string
	ics          representation
	json         representation
	lastModified string // RFC1123, as HTTP headers require
}

// RangeServer publishes the last applied selection on the loopback interface.
type RangeServer struct {
	// Written on every apply, read by every HTTP request: lock-free reads.
	cache atomic.Pointer[cacheItem]
	Port  string
}

// NewRangeServer creates a server bound to port once started.
func NewRangeServer(port string) *RangeServer {
	return &RangeServer{
		Port: port,
	}
}

// Start serves until ctx is cancelled.
func (s *RangeServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
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

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Handler returns the routes served by Start.
func (s *RangeServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleCalendarRequest)
	mux.HandleFunc(config.RouteRangeJSON, s.handleJSONRequest)
	return mux
}

// Update renders r as iCalendar and JSON, then swaps the published content.
func (s *RangeServer) Update(r engine.DateRange, label string) error {
	now := time.Now()
	ics, err := engine.EncodeRange(r, label, now)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrPublish, err)
	}
	body, err := json.Marshal(rangePayload{Label: label, Start: r.Start.String(), End: r.End.String()})
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrPublish, err)
	}

	item := &cacheItem{
		rng:          r,
		label:        label,
		ics:          newRepresentation(ics, config.MimeTextCalendar),
		json:         newRepresentation(body, config.MimeJSON),
		lastModified: now.UTC().Format(http.TimeFormat),
	}
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyStart, r.Start.String(),
		config.LogKeyEnd, r.End.String(),
		config.LogKeyLabel, label,
		config.LogKeySizeBytes, len(ics),
		config.LogKeyETag, item.ics.etag,
	)
	return nil
}

// Current returns the published range and label, if any.
func (s *RangeServer) Current() (engine.DateRange, string, bool) {
	item := s.cache.Load()
	if item == nil {
		return engine.DateRange{}, "", false
	}
	return item.rng, item.label, true
}

func newRepresentation(data []byte, contentType string) representation {
	hash := sha256.Sum256(data)
	return representation{
		data:        data,
		etag:        fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		contentType: contentType,
	}
}

func (s *RangeServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, func(item *cacheItem) representation { return item.ics })
}

func (s *RangeServer) handleJSONRequest(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, func(item *cacheItem) representation { return item.json })
}

// serve writes one representation of the cached item with conditional GET support.
func (s *RangeServer) serve(w http.ResponseWriter, r *http.Request, pick func(*cacheItem) representation) {
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
	rep := pick(item)

	w.Header().Set(config.HeaderContentType, rep.contentType)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, rep.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == rep.etag {
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
		if _, err := io.Copy(w, bytes.NewReader(rep.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
