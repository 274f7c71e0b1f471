package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

type fakeLocator struct {
	paths []string
	err   error
}

func (l fakeLocator) ListProjectFilePaths(context.Context) ([]string, error) {
	return l.paths, l.err
}

// fakeFiles serves project text by path; paths in failing return that error.
type fakeFiles struct {
	texts   map[string]string
	failing map[string]error
}

func (f fakeFiles) Resolve(_ context.Context, path string) (RepositoryFile, error) {
	if err := f.failing[path]; err != nil {
		return RepositoryFile{}, err
	}
	if _, ok := f.texts[path]; !ok {
		return RepositoryFile{}, fmt.Errorf("%s: not found", path)
	}
	return RepositoryFile{Path: path, DownloadURL: "mem://" + path}, nil
}

func (f fakeFiles) Download(_ context.Context, url string) (string, error) {
	return f.texts[url[len("mem://"):]], nil
}

func projectXML(refs ...string) string {
	s := "<Project><ItemGroup>"
	for _, r := range refs {
		s += fmt.Sprintf(`<PackageReference Include=%q Version="1.0.0" />`, r)
	}
	return s + "</ItemGroup></Project>"
}

// fakeRegistry answers from entries; names in errs fail. When gate is set,
// every query waits for it to close.
type fakeRegistry struct {
	entries map[string][]PackageMetadata
	errs    map[string]error
	gate    chan struct{}

	mu    sync.Mutex
	calls map[string]int
}

func (r *fakeRegistry) QueryMetadata(ctx context.Context, name string, _, _ bool) ([]PackageMetadata, error) {
	r.mu.Lock()
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[name]++
	r.mu.Unlock()

	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := r.errs[name]; err != nil {
		return nil, err
	}
	return r.entries[name], nil
}

func (r *fakeRegistry) callCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[name]
}

type report struct {
	err   error
	props map[string]string
}

type recordingReporter struct {
	mu      sync.Mutex
	reports []report
}

func (r *recordingReporter) Report(_ context.Context, err error, props map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report{err: err, props: props})
}

func (r *recordingReporter) all() []report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]report(nil), r.reports...)
}

// mentioning returns reports whose properties or message name s.
func (r *recordingReporter) mentioning(s string) []report {
	var out []report
	for _, rep := range r.all() {
		match := false
		for _, v := range rep.props {
			if v == s {
				match = true
			}
		}
		if match || (rep.err != nil && strings.Contains(rep.err.Error(), s)) {
			out = append(out, rep)
		}
	}
	return out
}

type memStore struct {
	mu     sync.Mutex
	values map[string]string
	setErr error
	getErr error
	sets   atomic.Int32
}

func newMemStore() *memStore { return &memStore{values: make(map[string]string)} }

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.sets.Add(1)
	if s.setErr != nil {
		return s.setErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

type recordingIcons struct {
	mu   sync.Mutex
	uris []string
	fail map[string]bool
}

func (i *recordingIcons) Prefetch(_ context.Context, uri string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.uris = append(i.uris, uri)
	if i.fail[uri] {
		return errors.New("icon unavailable")
	}
	return nil
}

func (i *recordingIcons) fetched() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := append([]string(nil), i.uris...)
	sort.Strings(out)
	return out
}
