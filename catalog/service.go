package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/willibrandon/nugetcatalog/observability"
	"github.com/willibrandon/nugetcatalog/project"
)

// Mode is how a refresh relates to its caller.
type Mode int

const (
	// ModeBlocking runs the pipeline to completion before returning. Chosen
	// when the store holds no catalog yet.
	ModeBlocking Mode = iota

	// ModeDetached starts the pipeline in the background and returns at once,
	// leaving the stored catalog readable until it is replaced.
	ModeDetached
)

func (m Mode) String() string {
	switch m {
	case ModeBlocking:
		return "blocking"
	case ModeDetached:
		return "detached"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Options wires a Service. Locator, Files, Registry and Store are required.
type Options struct {
	Locator  Locator
	Files    FileResolver
	Registry Registry
	Store    Store
	Icons    IconPrefetcher // nil skips icon prefetch
	Reporter ErrorReporter  // nil discards reports
	Logger   observability.Logger

	StoreKey string          // defaults to DefaultStoreKey
	Resolve  *ResolveOptions // defaults to DefaultResolveOptions
}

// Service owns the catalog stored under one key and refreshes it.
type Service struct {
	locator  Locator
	files    FileResolver
	registry Registry
	store    Store
	icons    IconPrefetcher
	reporter ErrorReporter
	logger   observability.Logger
	key      string
	resolve  ResolveOptions

	background sync.WaitGroup
}

// NewService validates opts and returns a Service.
func NewService(opts Options) (*Service, error) {
	var missing []error
	if opts.Locator == nil {
		missing = append(missing, errors.New("locator is required"))
	}
	if opts.Files == nil {
		missing = append(missing, errors.New("file resolver is required"))
	}
	if opts.Registry == nil {
		missing = append(missing, errors.New("registry is required"))
	}
	if opts.Store == nil {
		missing = append(missing, errors.New("store is required"))
	}
	if err := errors.Join(missing...); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	s := &Service{
		locator:  opts.Locator,
		files:    opts.Files,
		registry: opts.Registry,
		store:    opts.Store,
		icons:    opts.Icons,
		reporter: opts.Reporter,
		logger:   opts.Logger,
		key:      opts.StoreKey,
		resolve:  DefaultResolveOptions(),
	}
	if s.reporter == nil {
		s.reporter = nopReporter{}
	}
	if s.logger == nil {
		s.logger = observability.NewNullLogger()
	}
	if s.key == "" {
		s.key = DefaultStoreKey
	}
	if opts.Resolve != nil {
		s.resolve = *opts.Resolve
	}
	return s, nil
}

type nopReporter struct{}

func (nopReporter) Report(context.Context, error, map[string]string) {}

// Packages returns the stored catalog. A missing key yields an empty
// catalog; an unreadable or corrupt one is reported and yields empty.
func (s *Service) Packages(ctx context.Context) Catalog {
	ctx, span := observability.StartCacheLookupSpan(ctx, s.key)
	defer span.End()

	blob, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		s.reporter.Report(ctx, fmt.Errorf("read catalog: %w", err), map[string]string{PropComponent: "store"})
		return Catalog{}
	}
	observability.RecordCacheHit(ctx, ok)
	if !ok {
		return Catalog{}
	}

	catalog, err := UnmarshalCatalog(blob)
	if err != nil {
		s.reporter.Report(ctx, err, map[string]string{PropComponent: "store"})
		return Catalog{}
	}
	return catalog
}

// Initialize inspects the store once and starts a refresh: blocking when no
// catalog is stored yet, detached otherwise.
func (s *Service) Initialize(ctx context.Context) *Refresh {
	mode := ModeDetached
	if len(s.Packages(ctx)) == 0 {
		mode = ModeBlocking
	}

	s.logger.InfoContext(ctx, "Initializing package catalog in {Mode} mode", mode.String())
	return strategyFor(mode).start(ctx, s)
}

// Refresh runs the pipeline synchronously regardless of what is stored.
func (s *Service) Refresh(ctx context.Context) Catalog {
	s.background.Add(1)
	defer s.background.Done()
	return s.run(ctx, ModeBlocking)
}

// Wait blocks until every run in progress when it is called, and the icon
// prefetches those runs start, have finished. Each run holds the background
// counter from entry, so a prefetch is always added while it is non-zero.
func (s *Service) Wait() {
	s.background.Wait()
}

// run executes locate, fetch, extract, resolve, aggregate and persist, then
// hands every icon to the prefetcher in the background. Callers hold one
// background count for the duration of run. When the repository cannot be
// listed nothing is persisted and the stored catalog is returned.
func (s *Service) run(ctx context.Context, mode Mode) Catalog {
	runID := uuid.NewString()
	start := time.Now()

	ctx, span := observability.StartPipelineSpan(ctx, runID, mode.String())
	defer span.End()

	log := s.logger.ForContext(PropRunID, runID)
	log.InfoContext(ctx, "Catalog run {RunId} started", runID)

	paths, err := LocateProjectFiles(ctx, s.locator, s.reporter)
	if err != nil {
		s.recordRun(mode, "locate_failed", start)
		log.WarnContext(ctx, "Catalog run {RunId} could not list project files; stored catalog kept", runID)
		if ctx.Err() != nil {
			return Catalog{}
		}
		return s.Packages(ctx)
	}

	var names []string
	for path, text := range FetchProjectFiles(ctx, paths, s.files, s.reporter) {
		found, err := project.PackageReferenceNames(text)
		if err != nil {
			s.reporter.Report(ctx, fmt.Errorf("extract %s: %w", path, err), map[string]string{
				PropComponent:   StageExtract,
				PropProjectPath: path,
			})
			continue
		}
		log.DebugContext(ctx, "Found {Count} package references in {ProjectPath}", len(found), path)
		names = append(names, found...)
	}

	catalog := Aggregate(ResolvePackages(ctx, s.registry, names, s.resolve, s.reporter))

	status := s.persist(ctx, catalog)
	s.recordRun(mode, status, start)

	log.InfoContext(ctx, "Catalog run {RunId} finished with {PackageCount} packages ({Status}) in {Elapsed}ms",
		runID, len(catalog), status, time.Since(start).Milliseconds())

	if status == "persisted" {
		s.prefetchIcons(ctx, catalog)
	}
	return catalog
}

func (s *Service) recordRun(mode Mode, status string, start time.Time) {
	observability.PipelineRunsTotal.WithLabelValues(mode.String(), status).Inc()
	observability.PipelineRunDuration.WithLabelValues(mode.String()).Observe(time.Since(start).Seconds())
}

func (s *Service) persist(ctx context.Context, catalog Catalog) string {
	// A cancelled run is incomplete and must not replace the stored catalog.
	if ctx.Err() != nil {
		return "cancelled"
	}

	blob, err := catalog.Marshal()
	if err == nil {
		err = s.store.Set(ctx, s.key, blob)
	}
	if err != nil {
		s.reporter.Report(ctx, fmt.Errorf("persist catalog: %w", err), map[string]string{PropComponent: StagePersist})
		return "persist_failed"
	}

	observability.CatalogPackages.Set(float64(len(catalog)))
	return "persisted"
}

func (s *Service) prefetchIcons(ctx context.Context, catalog Catalog) {
	if s.icons == nil || len(catalog) == 0 {
		return
	}

	uris := make([]string, len(catalog))
	for i, r := range catalog {
		uris[i] = r.IconURI
	}
	uris = Distinct(uris)

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		prefetch := func(ctx context.Context, uri string) (struct{}, bool, error) {
			return struct{}{}, true, s.icons.Prefetch(ctx, uri)
		}
		for range FanOut(ctx, s.reporter, StagePrefetch, uris, prefetch) {
		}
	}()
}
