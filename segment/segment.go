// Package segment cuts a waveform into labelled speech and silence runs.
//
// Segments produced for one buffer are contiguous, ordered and cover the
// whole buffer; adjacent segments never share a label.
package segment

import "fmt"

// Segment is a contiguous run of samples tagged as speech or silence.
// Start and End are offsets in the buffer it was cut from.
type Segment struct {
	IsSpeech bool
	Audio    []float32
	Start    int
	End      int
}

// New creates a segment covering audio at offset start.
func New(isSpeech bool, audio []float32, start int) Segment {
	return Segment{
		IsSpeech: isSpeech,
		Audio:    audio,
		Start:    start,
		End:      start + len(audio),
	}
}

// Duration is the number of samples in the segment.
func (s Segment) Duration() int {
	return len(s.Audio)
}

// Split cuts the segment at sample index at (clamped to [0, Duration]).
// Both halves keep the label and carry consistent offsets.
func (s Segment) Split(at int) (prefix, suffix Segment) {
	if at < 0 {
		at = 0
	}
	if at > len(s.Audio) {
		at = len(s.Audio)
	}
	prefix = New(s.IsSpeech, s.Audio[:at:at], s.Start)
	suffix = New(s.IsSpeech, s.Audio[at:], s.Start+at)
	return prefix, suffix
}

// WithAudio returns a copy of the segment carrying different samples.
// The label and Start are kept; End follows the new length. Converted
// speech is stored this way since the backend need not preserve length.
func (s Segment) WithAudio(audio []float32) Segment {
	return New(s.IsSpeech, audio, s.Start)
}

// Kind returns "speech" or "silence".
func (s Segment) Kind() string {
	if s.IsSpeech {
		return "speech"
	}
	return "silence"
}

// String formats the segment for logs.
func (s Segment) String() string {
	return fmt.Sprintf("%s[%d:%d]", s.Kind(), s.Start, s.End)
}

// TotalDuration sums durations of segments with the given label.
func TotalDuration(segs []Segment, speech bool) int {
	total := 0
	for _, s := range segs {
		if s.IsSpeech == speech {
			total += s.Duration()
		}
	}
	return total
}
