package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"meetscribe/internal/archive"
	"meetscribe/internal/artifact"
	"meetscribe/internal/catalog"
	"meetscribe/internal/config"
	"meetscribe/internal/logging"
	"meetscribe/internal/media"
	"meetscribe/internal/series"
	"meetscribe/internal/services"
	"meetscribe/internal/services/ffmpeg"
	"meetscribe/internal/services/whisperx"
)

// collaborators are the external systems a pipeline run talks to.
type collaborators struct {
	resolver    media.Resolver
	extractor   media.AudioExtractor
	transcriber media.Transcriber
}

// buildCollaborators is replaced in tests to run the pipeline without network or tools.
var buildCollaborators = func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) (collaborators, error) {
	client, err := archive.NewFromConfig(cfg,
		archive.WithCache(store, time.Duration(cfg.Archive.CacheTTLSeconds)*time.Second),
		archive.WithLogger(logger),
	)
	if err != nil {
		return collaborators{}, services.Wrap(services.ErrConfiguration, "startup", "archive client", "", err)
	}
	tc := cfg.Transcription
	return collaborators{
		resolver:  client,
		extractor: ffmpeg.New(cfg.FFmpeg.Binary),
		transcriber: whisperx.NewService(whisperx.Config{
			Model:       tc.WhisperXModel,
			CUDAEnabled: tc.CUDAEnabled,
			ComputeType: tc.ComputeType,
			VADMethod:   tc.VADMethod,
			HFToken:     tc.HuggingFaceToken,
			Language:    tc.Language,
			BeamSize:    tc.BeamSize,
		}),
	}, nil
}

type runtimeOptions struct {
	series []string
	since  string
	// exclusive takes the data-directory lock and wires collaborators.
	exclusive bool
}

type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *catalog.Store
	lock   *flock.Flock
	series []*series.Series
}

func (r *runtime) Close() {
	if r.store != nil {
		_ = r.store.Close()
	}
	if r.lock != nil {
		_ = r.lock.Unlock()
	}
}

// openRuntime loads every selected series from the catalog. Exclusive runtimes
// also hold the data-directory lock and carry live collaborators.
func (c *commandContext) openRuntime(ctx context.Context, opts runtimeOptions) (*runtime, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	selected, err := selectSeries(cfg, opts.series)
	if err != nil {
		return nil, err
	}
	since := strings.TrimSpace(opts.since)
	if since != "" {
		if _, err := time.Parse(config.DateLayout, since); err != nil {
			return nil, fmt.Errorf("--since must be YYYY-MM-DD: %w", err)
		}
	}

	rt := &runtime{cfg: cfg, logger: logger}
	if opts.exclusive {
		lock := flock.New(cfg.LockPath())
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", cfg.LockPath(), err)
		}
		if !ok {
			return nil, fmt.Errorf("another meetscribe pipeline is running against %s", cfg.Paths.DataDir)
		}
		rt.lock = lock
	}

	store, err := catalog.Open(cfg.Paths.StateDB)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	rt.store = store

	var collab collaborators
	if opts.exclusive {
		ttl := time.Duration(cfg.Archive.CacheTTLSeconds) * time.Second
		if removed, err := store.PruneCache(ctx, ttl); err != nil {
			logger.Debug("response cache prune failed", logging.Error(err))
		} else if removed > 0 {
			logger.Debug("response cache pruned", logging.Int64("removed", removed))
		}
		collab, err = buildCollaborators(cfg, store, logger)
		if err != nil {
			rt.Close()
			return nil, err
		}
	}

	window := series.WindowOptions{
		StartDate:    cfg.Archive.StartDate,
		EndDate:      cfg.Archive.EndDate,
		LookbackDays: cfg.Archive.LookbackDays,
	}
	if since != "" {
		window.StartDate = since
	}

	for _, sc := range selected {
		roots := artifact.NewRoots(cfg.Paths.DataDir, sc.Name)
		if opts.exclusive {
			if err := roots.Create(); err != nil {
				rt.Close()
				return nil, err
			}
		}
		ledger := store.Ledger(sc.Name)
		pipeline := &artifact.Pipeline{
			Roots:            roots,
			Resolver:         collab.resolver,
			Extractor:        collab.extractor,
			Transcriber:      collab.transcriber,
			Formats:          sc.Formats(cfg.Archive.PreferredFormats),
			FileIdentifier:   sc.FileIdentifier,
			MaxDocumentBytes: cfg.Output.MaxDocumentBytes,
			Recorder:         ledger,
			Logger:           logger,
		}
		s, err := series.New(series.Options{
			Name:     sc.Name,
			Query:    sc.SearchQuery,
			Pipeline: pipeline,
			Ledger:   ledger,
			Window:   window,
			Logger:   logger,
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		if err := s.Load(ctx); err != nil {
			rt.Close()
			return nil, err
		}
		rt.series = append(rt.series, s)
	}
	return rt, nil
}

func selectSeries(cfg *config.Config, names []string) ([]config.Series, error) {
	if len(names) == 0 {
		if len(cfg.Series) == 0 {
			return nil, errors.New("no series configured; add a [[series]] table to the config file")
		}
		return cfg.Series, nil
	}
	selected := make([]config.Series, 0, len(names))
	for _, name := range names {
		sc, ok := cfg.LookupSeries(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown series %q", name)
		}
		selected = append(selected, sc)
	}
	return selected, nil
}

// withPipeline runs fn under the data-directory lock with a run-scoped context.
// Failures are logged with their classification before being returned.
func (c *commandContext) withPipeline(cmd *cobra.Command, opts runtimeOptions, fn func(context.Context, *runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts.exclusive = true
	rt, err := c.openRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, rt.logger)

	start := time.Now()
	if err := fn(ctx, rt); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("run interrupted", logging.String(logging.FieldEventType, "run_interrupted"))
			return err
		}
		logger.Error("run failed",
			logging.Error(err),
			logging.ErrorKind(err),
			logging.String(logging.FieldEventType, "run_failed"),
		)
		return err
	}
	logger.Info("run complete", logging.Duration("elapsed", time.Since(start)))
	return nil
}
