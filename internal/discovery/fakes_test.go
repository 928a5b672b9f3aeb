package discovery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var errFake = errors.New("fake provider failure")

type completerFunc func(ctx context.Context, system, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

func staticCompleter(resp string) completerFunc {
	return func(context.Context, string, string) (string, error) { return resp, nil }
}

type searcherFunc func(ctx context.Context, query string, limit int) ([]SearchHit, error)

func (f searcherFunc) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	return f(ctx, query, limit)
}

// fakeProfiles serves profiles from a map; handles in errs fail.
type fakeProfiles struct {
	profiles map[string]map[string]any
	errs     map[string]bool
	calls    atomic.Int32
}

func (f *fakeProfiles) FetchProfile(_ context.Context, handle string) (map[string]any, error) {
	f.calls.Add(1)
	if f.errs[handle] {
		return nil, errFake
	}
	return f.profiles[handle], nil
}

// fakeMedia serves media lists keyed by user id or handle.
type fakeMedia struct {
	mu    sync.Mutex
	media map[string][]map[string]any
	refs  []ProfileRef
}

func (f *fakeMedia) ListMedia(_ context.Context, ref ProfileRef, amount int) ([]map[string]any, error) {
	f.mu.Lock()
	f.refs = append(f.refs, ref)
	f.mu.Unlock()
	key := ref.UserID
	if key == "" {
		key = ref.Handle
	}
	items, ok := f.media[key]
	if !ok {
		return nil, errFake
	}
	return items, nil
}

type fakeDetails struct {
	details  map[string]map[string]any
	inflight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeDetails) FetchMediaDetail(_ context.Context, shortcode string) (map[string]any, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	d, ok := f.details[shortcode]
	if !ok {
		return nil, errFake
	}
	return d, nil
}

type fakeTranscripts struct {
	segments map[string][]string
}

func (f *fakeTranscripts) FetchTranscript(ctx context.Context, mediaURL string) ([]string, error) {
	segs, ok := f.segments[mediaURL]
	if !ok {
		return nil, errFake
	}
	if segs == nil {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return segs, nil
}

func ptr[T any](v T) *T { return &v }
