package segment

import "testing"

func TestSegmentSplit(t *testing.T) {
	s := New(true, []float32{1, 2, 3, 4, 5}, 10)

	tests := []struct {
		name       string
		at         int
		wantPrefix int
		wantSuffix int
	}{
		{"middle", 2, 2, 3},
		{"start", 0, 0, 5},
		{"end", 5, 5, 0},
		{"negative clamps", -3, 0, 5},
		{"beyond clamps", 99, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, q := s.Split(tt.at)
			if p.Duration() != tt.wantPrefix || q.Duration() != tt.wantSuffix {
				t.Errorf("expected %d/%d, got %d/%d", tt.wantPrefix, tt.wantSuffix, p.Duration(), q.Duration())
			}
			if !p.IsSpeech || !q.IsSpeech {
				t.Error("expected both halves to keep the speech label")
			}
			if p.Start != 10 || p.End != q.Start || q.End != 15 {
				t.Errorf("inconsistent offsets: %v %v", p, q)
			}
		})
	}
}

func TestSegmentSplitPrefixAppendDoesNotClobberSuffix(t *testing.T) {
	s := New(false, []float32{1, 2, 3, 4}, 0)
	p, q := s.Split(2)
	_ = append(p.Audio, 99)
	if q.Audio[0] != 3 {
		t.Errorf("expected suffix to be untouched, got %v", q.Audio)
	}
}

func TestSegmentWithAudio(t *testing.T) {
	s := New(true, []float32{0, 0, 0}, 4)
	c := s.WithAudio([]float32{1, 1, 1, 1, 1})
	if c.Start != 4 || c.End != 9 || !c.IsSpeech {
		t.Errorf("unexpected converted segment %v", c)
	}
	if s.Duration() != 3 {
		t.Error("expected original to be unchanged")
	}
}

func TestSegmentString(t *testing.T) {
	if got := New(false, make([]float32, 3), 2).String(); got != "silence[2:5]" {
		t.Errorf("expected silence[2:5], got %s", got)
	}
}

func TestTotalDuration(t *testing.T) {
	segs := []Segment{
		New(false, make([]float32, 3), 0),
		New(true, make([]float32, 5), 3),
		New(false, make([]float32, 2), 8),
	}
	if got := TotalDuration(segs, true); got != 5 {
		t.Errorf("expected 5 speech samples, got %d", got)
	}
	if got := TotalDuration(segs, false); got != 5 {
		t.Errorf("expected 5 silence samples, got %d", got)
	}
}
