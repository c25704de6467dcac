package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gai-kavia/kavia-console/internal/config"
	"github.com/gai-kavia/kavia-console/internal/console"
	"github.com/gai-kavia/kavia-console/internal/logger"
	"github.com/gai-kavia/kavia-console/internal/storage"
	"github.com/gai-kavia/kavia-console/pkg/apiclient"
	"github.com/gai-kavia/kavia-console/pkg/httpclient"
	"github.com/gai-kavia/kavia-console/pkg/publishers"
)

// Runtime wires the backend client, console, call history and report
// publishers together.
type Runtime struct {
	cfg           *config.Config
	client        *apiclient.Client
	console       *console.Console
	store         storage.Store
	fanout        *publishers.Fanout
	watchInterval time.Duration
	log           logger.Logger
}

// Deps overrides collaborators, mainly for tests. Nil fields use the defaults
// built from config.
type Deps struct {
	Transport  httpclient.Client
	Store      storage.Store
	Publishers []publishers.Publisher
}

// NewRuntime builds a runtime from config.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger, deps Deps) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := apiclient.New(apiclient.Settings{
		BaseURL:     cfg.APIBase,
		HealthPath:  cfg.HealthcheckPath,
		DocsBaseURL: cfg.BackendURL,
		DocsPath:    cfg.BackendDocsPath,
		Timeout:     cfg.RequestTimeout,
	}, deps.Transport, log)
	log.InfoObj("api client configured", "api_config", map[string]any{
		"api_base":        client.APIBase(),
		"health_path":     cfg.HealthcheckPath,
		"docs_url":        client.DocsURL(),
		"timeout_seconds": int(cfg.RequestTimeout.Seconds()),
	})

	store := deps.Store
	if store == nil {
		var err error
		store, err = storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
			RecordTTL:       cfg.StorageTTL,
			CleanupInterval: cfg.StorageCleanupInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		log.InfoObj("storage initialized", "storage_config", map[string]any{
			"type":                     cfg.StorageType,
			"path":                     cfg.BBoltPath,
			"record_ttl_seconds":       int(cfg.StorageTTL.Seconds()),
			"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
		})
	}

	pubs := deps.Publishers
	if pubs == nil && cfg.PublishersFile != "" {
		var err error
		pubs, err = buildPublishers(ctx, cfg.PublishersFile, log)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	return &Runtime{
		cfg:           cfg,
		client:        client,
		console:       console.New(client, log),
		store:         store,
		fanout:        publishers.NewFanout(pubs, log),
		watchInterval: cfg.WatchInterval,
		log:           log,
	}, nil
}

func buildPublishers(ctx context.Context, path string, log logger.Logger) ([]publishers.Publisher, error) {
	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return pubs, nil
}

// Console exposes the underlying console state.
func (r *Runtime) Console() *console.Console { return r.console }

// Call runs one backend call, records it and publishes the report. Recording
// and publishing failures are logged, never returned.
func (r *Runtime) Call(ctx context.Context, which console.Call) (console.Outcome, error) {
	if r == nil || r.console == nil {
		return console.Outcome{}, fmt.Errorf("runtime is not initialized")
	}

	out, err := r.console.Call(ctx, which)
	if err != nil {
		return out, err
	}

	rec := storage.CallRecord{
		Call:       string(out.Call),
		URL:        r.callURL(which),
		StatusCode: out.StatusCode,
		Kind:       out.Kind,
		Output:     out.Output,
		Error:      out.Error,
		StartedAt:  out.StartedAt.UTC(),
		DurationMs: out.Duration.Milliseconds(),
	}
	if err := r.store.Record(rec); err != nil {
		r.log.ErrorObj("call history write failed", "error", err)
	}
	if r.fanout.Size() > 0 {
		if _, err := r.fanout.Publish(ctx, publishers.NewEvent(r.client.APIBase(), rec)); err != nil {
			r.log.ErrorObj("call report publish failed", "error", err)
		}
	}
	return out, nil
}

func (r *Runtime) callURL(which console.Call) string {
	switch which {
	case console.CallHealth:
		return r.client.URL(r.cfg.HealthcheckPath)
	case console.CallInfo:
		return r.client.URL(apiclient.InfoPath)
	default:
		return r.client.URL(apiclient.WelcomePath)
	}
}

// Watch runs every call once, then again on each tick until ctx is cancelled.
func (r *Runtime) Watch(ctx context.Context) error {
	if r == nil || r.console == nil {
		return fmt.Errorf("runtime is not initialized")
	}

	r.log.InfoObj("watch loop starting", "watch_state", map[string]any{
		"api_base":         r.client.APIBase(),
		"publishers_count": r.fanout.Size(),
		"interval":         r.watchInterval.String(),
	})

	r.runOnce(ctx)

	ticker := time.NewTicker(r.watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.InfoObj("watch loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

// runOnce performs every call in order and logs a summary.
func (r *Runtime) runOnce(ctx context.Context) {
	start := time.Now()
	failed := 0
	for _, which := range console.Calls {
		if ctx.Err() != nil {
			return
		}
		out, err := r.Call(ctx, which)
		if err != nil {
			r.log.WarnObj("call skipped", "call_skip", map[string]any{
				"call":  string(which),
				"error": err.Error(),
			})
			continue
		}
		if out.Failed() {
			failed++
		}
	}
	r.log.InfoObj("watch pass completed", "watch_pass", map[string]any{
		"calls":      len(console.Calls),
		"failed":     failed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
}

// History returns up to limit recorded calls, newest first.
func (r *Runtime) History(limit int) ([]storage.CallRecord, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("runtime is not initialized")
	}
	return r.store.Recent(limit)
}

// Close releases storage and publisher resources.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if err := r.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
