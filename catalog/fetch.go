package catalog

import (
	"context"
	"fmt"
	"iter"
)

// Stage names, used as report components and metric labels.
const (
	StageLocate   = "locate"
	StageFetch    = "fetch"
	StageExtract  = "extract"
	StageResolve  = "resolve"
	StagePersist  = "persist"
	StagePrefetch = "prefetch"
)

// LocateProjectFiles asks locator for the project file paths once. A
// failure is reported unless ctx was cancelled, and returned.
func LocateProjectFiles(ctx context.Context, locator Locator, reporter ErrorReporter) ([]string, error) {
	paths, err := locator.ListProjectFilePaths(ctx)
	if err != nil {
		err = fmt.Errorf("list project files: %w", err)
		if reporter != nil && ctx.Err() == nil {
			reporter.Report(ctx, err, map[string]string{PropComponent: StageLocate})
		}
		return nil, err
	}
	return paths, nil
}

// FetchProjectFiles resolves and downloads every path concurrently,
// yielding (path, text) in completion order. Per-file failures are reported
// and skipped.
func FetchProjectFiles(ctx context.Context, paths []string, files FileResolver, reporter ErrorReporter) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		fetched := FanOut(ctx, reporter, StageFetch, paths, func(ctx context.Context, path string) (string, bool, error) {
			file, err := files.Resolve(ctx, path)
			if err != nil {
				return "", false, err
			}
			text, err := files.Download(ctx, file.DownloadURL)
			if err != nil {
				return "", false, fmt.Errorf("download %s: %w", path, err)
			}
			return text, true, nil
		})

		for path, text := range fetched {
			if !yield(path, text) {
				return
			}
		}
	}
}
