package observability

import (
	"context"
	"sort"
)

// PropComponent is the property key that selects the errors_reported_total label.
const PropComponent = "Component"

// Reporter is the error sink for failures that are isolated rather than returned:
// fan-out units, detached runs, icon prefetches and store writes.
type Reporter struct {
	logger Logger
}

// NewReporter creates a Reporter logging through logger (nil discards).
func NewReporter(logger Logger) *Reporter {
	if logger == nil {
		logger = NewNullLogger()
	}
	return &Reporter{logger: logger}
}

// Report logs err with its properties, counts it and records it on the active span.
func (r *Reporter) Report(ctx context.Context, err error, properties map[string]string) {
	if err == nil {
		return
	}

	component := properties[PropComponent]
	if component == "" {
		component = "unknown"
	}
	ErrorsReportedTotal.WithLabelValues(component).Inc()
	RecordError(ctx, err)

	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	log := r.logger
	for _, k := range keys {
		log = log.ForContext(k, properties[k])
	}
	log.ErrorContext(ctx, "Reported error in {Component}: {Error}", component, err)
}
