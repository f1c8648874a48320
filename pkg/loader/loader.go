package loader

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"github.com/openfroyo/refdata/pkg/config"
	"github.com/openfroyo/refdata/pkg/policy"
	"github.com/openfroyo/refdata/pkg/refdata"
	"github.com/openfroyo/refdata/pkg/stores"
	"github.com/openfroyo/refdata/pkg/telemetry"
)

// ErrRejected is returned by Reload when policies block the new snapshot.
var ErrRejected = errors.New("snapshot rejected by policy")

// LoadResult is a snapshot built from seeds together with its lint result.
type LoadResult struct {
	Snapshot *refdata.Snapshot
	Seeds    *config.SeedSet

	// Policy is nil when policies are disabled.
	Policy *policy.Result
}

// Allowed reports whether the snapshot may be published.
func (r *LoadResult) Allowed() bool {
	return r.Policy == nil || r.Policy.Allowed
}

// ReloadResult describes the outcome of Reload.
type ReloadResult struct {
	// Status is one of the telemetry.ReloadStatus values.
	Status string

	// Load is nil when the seeds could not be loaded.
	Load *LoadResult

	// Publish is set when a snapshot was published.
	Publish *stores.PublishRecord
}

// Loader runs the seed, lint and publish pipeline.
type Loader struct {
	cfg    *config.Config
	seeds  *config.SeedLoader
	engine *policy.Engine
	store  stores.Store
	tel    *telemetry.Telemetry
	logger zerolog.Logger

	// mu serializes reloads.
	mu sync.Mutex
}

// New creates a loader for cfg that publishes into store. The policy
// engine is built from cfg.Policy; it is nil when policies are disabled.
func New(cfg *config.Config, store stores.Store, tel *telemetry.Telemetry) (*Loader, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if tel == nil {
		tel = telemetry.NewNop()
	}

	logger := tel.Logger.NewComponentLogger("loader").Zerolog()

	l := &Loader{
		cfg:    cfg,
		seeds:  config.NewSeedLoader(),
		store:  store,
		tel:    tel,
		logger: logger,
	}

	if cfg.Policy.Enabled {
		failOn, err := policy.ParseSeverity(cfg.Policy.FailOn)
		if err != nil {
			return nil, fmt.Errorf("invalid policy threshold: %w", err)
		}

		engine, err := policy.NewEngine(tel.Logger.Zerolog(), failOn)
		if err != nil {
			return nil, fmt.Errorf("failed to create policy engine: %w", err)
		}
		if err := engine.LoadPolicies(context.Background(), cfg.Policy.Paths); err != nil {
			return nil, err
		}
		l.engine = engine
	}

	return l, nil
}

// Policies returns the policy engine, or nil when policies are disabled.
func (l *Loader) Policies() *policy.Engine {
	return l.engine
}

// Store returns the snapshot store the loader publishes into.
func (l *Loader) Store() stores.Store {
	return l.store
}

// Accessor returns an accessor that always reads the current snapshot.
func (l *Loader) Accessor() *refdata.Accessor {
	return refdata.NewAccessor(l.store)
}

// Load reads the seeds, builds a snapshot and evaluates policies. Nothing
// is published.
func (l *Loader) Load(ctx context.Context) (*LoadResult, error) {
	tracer := l.tel.Tracer

	loadCtx, span := tracer.StartLoadSpan(ctx, len(l.cfg.Seeds))
	set, err := l.seeds.LoadSeeds(loadCtx, l.cfg.Seeds)
	if err != nil {
		telemetry.RecordError(span, err)
		span.End()
		return nil, fmt.Errorf("failed to load seeds: %w", err)
	}

	snap := refdata.NewSnapshot(set.Collections, refdata.WithSource(set.Source()))

	span.SetAttributes(
		telemetry.AttrRevision.String(snap.Revision()),
		telemetry.AttrSource.String(snap.Source()),
		telemetry.AttrSeedFiles.Int(len(set.Documents)),
		telemetry.AttrRecords.Int(totalRecords(snap)),
	)
	telemetry.RecordSuccess(span)
	span.End()

	result := &LoadResult{Snapshot: snap, Seeds: set}

	if l.engine == nil {
		return result, nil
	}

	policyCtx, span := tracer.StartPolicySpan(ctx, snap.Revision())
	defer span.End()

	res, err := l.engine.EvaluateSnapshot(policyCtx, snap)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to evaluate policies: %w", err)
	}
	span.SetAttributes(
		telemetry.AttrAllowed.Bool(res.Allowed),
		telemetry.AttrViolations.Int(len(res.Violations)),
	)
	telemetry.RecordSuccess(span)

	result.Policy = res
	return result, nil
}

// Reload loads the seeds and publishes the snapshot when policies allow
// it. When the data is identical to the current snapshot nothing is
// published. On failure or rejection the current snapshot stays in place;
// rejections return an error wrapping ErrRejected.
func (l *Loader) Reload(ctx context.Context) (result *ReloadResult, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	op := telemetry.StartOperation(l.tel.WithContext(ctx), "refdata.reload",
		telemetry.AttrSeedFiles.Int(len(l.cfg.Seeds)))
	result = &ReloadResult{Status: telemetry.ReloadStatusFailed}

	defer func() {
		l.tel.Metrics.RecordReload(result.Status, op.Timer.Duration())
		if op.Span != nil {
			op.Span.SetAttributes(telemetry.AttrReloadStatus.String(result.Status))
		}
		op.End(err)
	}()

	load, err := l.Load(op.Ctx)
	if err != nil {
		l.logger.Error().Err(err).Msg("Reload failed")
		_ = l.tel.Events.PublishReloadFailed(err.Error())
		return result, err
	}
	result.Load = load

	snap := load.Snapshot
	logger := l.logger.With().Str("revision", snap.Revision()).Logger()

	l.recordViolations(load)

	if !load.Allowed() {
		blocking := load.Policy.Blocking()
		for _, v := range blocking {
			logger.Warn().
				Str("policy", v.Policy).
				Str("resource", v.Resource).
				Str("severity", string(v.Severity)).
				Msg(v.Message)
		}
		logger.Warn().Int("blocking", len(blocking)).Msg("Snapshot rejected; keeping current snapshot")
		_ = l.tel.Events.PublishReloadRejected(snap.Revision(), len(blocking))

		result.Status = telemetry.ReloadStatusRejected
		return result, fmt.Errorf("%w: %d blocking violations", ErrRejected, len(blocking))
	}

	if current := l.store.Current(); current != nil && reflect.DeepEqual(current.Collections(), snap.Collections()) {
		logger.Debug().Str("current", current.Revision()).Msg("Seeds unchanged; skipping publish")
		result.Status = telemetry.ReloadStatusUnchanged
		return result, nil
	}

	publishCtx, span := l.tel.Tracer.StartPublishSpan(op.Ctx, snap.Revision())
	record, err := l.store.Publish(publishCtx, snap)
	if err != nil {
		telemetry.RecordError(span, err)
		span.End()
		logger.Error().Err(err).Msg("Failed to publish snapshot")
		_ = l.tel.Events.PublishReloadFailed(err.Error())
		return result, fmt.Errorf("failed to publish snapshot: %w", err)
	}
	span.SetAttributes(telemetry.AttrPreviousRevision.String(record.PreviousRevision))
	for _, kind := range refdata.Kinds() {
		telemetry.AddEvent(span, "records",
			telemetry.AttrKind.String(string(kind)),
			telemetry.AttrRecords.Int(record.Counts[kind]))
	}
	telemetry.RecordSuccess(span)
	span.End()

	for kind, n := range record.Counts {
		l.tel.Metrics.SetRecordCount(string(kind), n)
	}
	l.tel.Metrics.RecordPublish(record.PublishedAt)
	_ = l.tel.Events.PublishSnapshotPublished(record.Revision, record.PreviousRevision, totalRecords(snap))

	logger.Info().
		Str("previous", record.PreviousRevision).
		Str("source", record.Source).
		Int("records", totalRecords(snap)).
		Msg("Snapshot published")

	result.Status = telemetry.ReloadStatusPublished
	result.Publish = record
	return result, nil
}

// Run publishes the initial snapshot and, when watching is enabled,
// reloads whenever a seed file changes until ctx is cancelled. The initial
// reload must succeed; later failures are logged and the previous snapshot
// keeps serving.
func (l *Loader) Run(ctx context.Context) error {
	if _, err := l.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	if !l.cfg.Watch.Enabled {
		<-ctx.Done()
		return nil
	}

	watcher := config.NewWatcher(l.tel.Logger.Zerolog(), l.cfg.Watch.Debounce)
	if err := watcher.Watch(ctx, l.cfg.Seeds, func(ctx context.Context) {
		// Errors are logged and counted inside Reload.
		_, _ = l.Reload(ctx)
	}); err != nil {
		return fmt.Errorf("failed to watch seeds: %w", err)
	}
	defer watcher.Close()

	<-ctx.Done()
	return nil
}

func (l *Loader) recordViolations(load *LoadResult) {
	if load.Policy == nil {
		return
	}
	for _, v := range load.Policy.Violations {
		l.tel.Metrics.RecordPolicyViolation(v.Policy, string(v.Severity))
		_ = l.tel.Events.PublishPolicyViolation(load.Snapshot.Revision(), v.Policy, v.Resource, v.Message, string(v.Severity))
	}
	for _, msg := range load.Policy.Errors {
		l.logger.Warn().Str("revision", load.Snapshot.Revision()).Msg(msg)
	}
}

func totalRecords(snap *refdata.Snapshot) int {
	total := 0
	for _, n := range snap.Counts() {
		total += n
	}
	return total
}
