package discovery

import (
	"context"
	"testing"
	"time"
)

func TestTranscriptEnricher(t *testing.T) {
	items := []MediaItem{
		{URL: "u1"},
		{URL: "u2"},
		{URL: "u3"},
		{URL: "u4"},
		{},
	}
	tr := &fakeTranscripts{segments: map[string][]string{
		"u1": {"hello", "  ", "world"},
		"u2": {" ", ""},
		"u4": nil, // blocks until the timeout
	}}
	e := &TranscriptEnricher{Transcripts: tr, Concurrency: 2, Timeout: 30 * time.Millisecond}
	e.Attach(context.Background(), items)

	if items[0].Transcript == nil || *items[0].Transcript != "hello\nworld" {
		t.Errorf("items[0].Transcript = %v", items[0].Transcript)
	}
	for i := 1; i < len(items); i++ {
		if items[i].Transcript != nil {
			t.Errorf("items[%d].Transcript = %q, want nil", i, *items[i].Transcript)
		}
	}
}

func TestTranscriptEnricherNilProvider(t *testing.T) {
	items := []MediaItem{{URL: "u1"}}
	(&TranscriptEnricher{}).Attach(context.Background(), items)
	if items[0].Transcript != nil {
		t.Error("transcript set without provider")
	}
}
