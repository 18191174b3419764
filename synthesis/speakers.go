package synthesis

import (
	"sort"

	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/logger"
)

// DefaultSpeakerID is used when a named speaker is not in the table.
const DefaultSpeakerID = 0

// Speakers is a model's name to id table.
type Speakers struct {
	byName map[string]int
	log    *logger.Logger
}

// NewSpeakers builds a table from a name to id map.
func NewSpeakers(spk map[string]int) *Speakers {
	byName := make(map[string]int, len(spk))
	for name, id := range spk {
		byName[name] = id
	}
	return &Speakers{byName: byName, log: logger.Get("synthesis")}
}

// Len is the number of speakers. A model without a table still has one.
func (s *Speakers) Len() int {
	if s == nil || len(s.byName) == 0 {
		return 1
	}
	return len(s.byName)
}

// Names returns speaker names ordered by id.
func (s *Speakers) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := s.byName[names[i]], s.byName[names[j]]
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names
}

// Resolve maps sp to a backend speaker id. A numeric id outside
// [0, Len()) is a configuration error. An unknown name falls back to
// DefaultSpeakerID with a warning.
func (s *Speakers) Resolve(sp Speaker) (int, error) {
	if id, ok := sp.ID(); ok {
		if id < 0 || id >= s.Len() {
			return 0, errors.Configuration("speaker id %d out of range [0, %d)", id, s.Len())
		}
		return id, nil
	}

	name, _ := sp.Name()
	if s != nil {
		if id, ok := s.byName[name]; ok {
			return id, nil
		}
	}
	log := logger.Get("synthesis")
	if s != nil && s.log != nil {
		log = s.log
	}
	log.Warn("Speaker "+name+" is not found. Use speaker 0 instead.",
		logger.Fields(logger.FieldSpeaker, name, logger.FieldFallback, DefaultSpeakerID))
	return DefaultSpeakerID, nil
}
