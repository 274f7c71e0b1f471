package catalog

import "context"

// Refresh tracks one pipeline run started by Initialize.
type Refresh struct {
	mode    Mode
	done    chan struct{}
	catalog Catalog
}

func newRefresh(mode Mode) *Refresh {
	return &Refresh{mode: mode, done: make(chan struct{})}
}

func (r *Refresh) finish(c Catalog) {
	r.catalog = c
	close(r.done)
}

// Mode reports how the run was started.
func (r *Refresh) Mode() Mode { return r.mode }

// Done is closed when the run has finished and its result is persisted.
func (r *Refresh) Done() <-chan struct{} { return r.done }

// Catalog returns the run's result. It is nil until Done is closed.
func (r *Refresh) Catalog() Catalog {
	select {
	case <-r.done:
		return r.catalog
	default:
		return nil
	}
}

// strategy decides how a run relates to the caller of Initialize.
type strategy interface {
	start(ctx context.Context, s *Service) *Refresh
}

// blockingStrategy runs to completion on the caller's goroutine.
type blockingStrategy struct{}

func (blockingStrategy) start(ctx context.Context, s *Service) *Refresh {
	r := newRefresh(ModeBlocking)
	s.background.Add(1)
	defer s.background.Done()
	r.finish(s.run(ctx, ModeBlocking))
	return r
}

// detachedStrategy runs on a new goroutine; failures are only reported.
type detachedStrategy struct{}

func (detachedStrategy) start(ctx context.Context, s *Service) *Refresh {
	r := newRefresh(ModeDetached)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		r.finish(s.run(ctx, ModeDetached))
	}()
	return r
}

func strategyFor(mode Mode) strategy {
	if mode == ModeDetached {
		return detachedStrategy{}
	}
	return blockingStrategy{}
}
