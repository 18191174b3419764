package synthesis

import (
	"strconv"
	"strings"
)

// Request is one backend invocation.
type Request struct {
	Audio      []float32
	SampleRate int
	SpeakerID  int
	// Transpose shifts f0 by 2^(Transpose/12) before synthesis.
	Transpose float64
	// ClusterRatio blends clustered content features in, in [0,1].
	ClusterRatio float64
	// NoiseScale controls backend stochasticity.
	NoiseScale    float64
	AutoPredictF0 bool
}

// Speaker identifies a target voice either by numeric id or by name.
// The zero value is speaker id 0.
type Speaker struct {
	id    int
	name  string
	named bool
}

// SpeakerID selects a speaker by numeric id.
func SpeakerID(id int) Speaker { return Speaker{id: id} }

// SpeakerName selects a speaker by name from the model's speaker table.
func SpeakerName(name string) Speaker { return Speaker{name: name, named: true} }

// ParseSpeaker treats an integer string as an id and anything else as a name.
func ParseSpeaker(s string) Speaker {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		return SpeakerID(id)
	}
	return SpeakerName(s)
}

// ID returns the numeric id and whether the speaker was given by id.
func (s Speaker) ID() (int, bool) { return s.id, !s.named }

// Name returns the speaker name and whether the speaker was given by name.
func (s Speaker) Name() (string, bool) { return s.name, s.named }

func (s Speaker) String() string {
	if s.named {
		return s.name
	}
	return strconv.Itoa(s.id)
}
