package realtime

import (
	"context"
	"testing"

	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/synthesis"
	"github.com/kbukum/voiceshift/synthesis/stub"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{"", VersionChunkStore, false},
		{"2", VersionChunkStore, false},
		{"1", VersionCrossfade, false},
		{"crossfade", VersionCrossfade, false},
		{"3", 0, true},
		{"fast", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.IsConfiguration(err) {
				t.Errorf("expected configuration error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	conv := newConverter(t, stub.Identity())

	t.Run("crossfade", func(t *testing.T) {
		r, err := New(VersionCrossfade, DefaultOptions(conv))
		if err != nil {
			t.Fatal(err)
		}
		cf, ok := r.(*Crossfader)
		if !ok {
			t.Fatalf("expected *Crossfader, got %T", r)
		}
		if want := int(DefaultCrossfadeSeconds * testRate); cf.State().Length != want {
			t.Errorf("expected crossfade length %d, got %d", want, cf.State().Length)
		}
	})

	t.Run("chunk store", func(t *testing.T) {
		r, err := New(VersionChunkStore, DefaultOptions(conv))
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := r.(*ChunkStore); !ok {
			t.Fatalf("expected *ChunkStore, got %T", r)
		}
	})

	t.Run("rms gate", func(t *testing.T) {
		opts := DefaultOptions(conv)
		opts.Split = false
		r, err := New(VersionCrossfade, opts)
		if err != nil {
			t.Fatal(err)
		}
		out, err := r.Process(context.Background(), constant(testRate/2, 0.5))
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != testRate/2 {
			t.Errorf("expected %d samples, got %d", testRate/2, len(out))
		}
	})

	errCases := []struct {
		name    string
		version Version
		mutate  func(*Options)
	}{
		{"unknown version", Version(7), func(*Options) {}},
		{"missing converter", VersionChunkStore, func(o *Options) { o.Converter = nil }},
		{"speaker out of range", VersionChunkStore, func(o *Options) { o.Params.Speaker = synthesis.SpeakerID(4) }},
		{"bad params", VersionCrossfade, func(o *Options) { o.Params.ClusterRatio = 3 }},
		{"bad slice", VersionCrossfade, func(o *Options) { o.Slice.ChunkSeconds = 0 }},
		{"no crossfade", VersionCrossfade, func(o *Options) { o.CrossfadeSeconds = 0 }},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions(conv)
			tt.mutate(&opts)
			if _, err := New(tt.version, opts); !errors.IsConfiguration(err) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestReconcilersKeepBlockLength(t *testing.T) {
	conv := newConverter(t, stub.Resample(1.2))
	for _, v := range []Version{VersionCrossfade, VersionChunkStore} {
		t.Run(v.String(), func(t *testing.T) {
			r, err := New(v, DefaultOptions(conv))
			if err != nil {
				t.Fatal(err)
			}
			sizes := []int{testRate / 2, testRate / 4, testRate}
			for i, n := range sizes {
				block := constant(n, 0)
				if i%2 == 1 {
					block = constant(n, 0.3)
				}
				out, err := r.Process(context.Background(), block)
				if err != nil {
					t.Fatalf("block %d: %v", i, err)
				}
				if len(out) != n {
					t.Errorf("block %d: expected %d samples, got %d", i, n, len(out))
				}
			}
		})
	}
}
