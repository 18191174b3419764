package voice

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/kbukum/voiceshift/conversion"
	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/realtime"
	"github.com/kbukum/voiceshift/synthesis"
	"github.com/kbukum/voiceshift/validation"
)

// Defaults are used for every query value a request leaves out.
type Defaults struct {
	Params           conversion.Params
	Slice            conversion.SliceConfig
	Version          realtime.Version
	CrossfadeSeconds float64
	Split            bool
}

// DefaultDefaults mirrors the command line defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		Params:           conversion.DefaultParams(),
		Slice:            conversion.DefaultSliceConfig(),
		Version:          realtime.DefaultVersion,
		CrossfadeSeconds: realtime.DefaultCrossfadeSeconds,
		Split:            true,
	}
}

type queryReader struct {
	q   url.Values
	err error
}

func (r *queryReader) float(key string, dst *float64) {
	s := r.q.Get(key)
	if s == "" || r.err != nil {
		return
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.err = errors.InvalidInput(key, "not a number: "+s)
		return
	}
	*dst = f
}

func (r *queryReader) bool(key string, dst *bool) {
	s := r.q.Get(key)
	if s == "" || r.err != nil {
		return
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		r.err = errors.InvalidInput(key, "not a boolean: "+s)
		return
	}
	*dst = b
}

// conversionQuery overlays the voice and slice parameters in q on d.
func conversionQuery(q url.Values, d Defaults) (conversion.Params, conversion.SliceConfig, error) {
	p, s := d.Params, d.Slice
	if sp := q.Get("speaker"); sp != "" {
		p.Speaker = synthesis.ParseSpeaker(sp)
	}
	r := &queryReader{q: q}
	r.float("transpose", &p.Transpose)
	r.float("cluster_ratio", &p.ClusterRatio)
	r.float("noise_scale", &p.NoiseScale)
	r.bool("auto_predict_f0", &p.AutoPredictF0)
	r.float("db_thresh", &s.DBThresh)
	r.float("pad_seconds", &s.PadSeconds)
	r.float("chunk_seconds", &s.ChunkSeconds)
	r.bool("absolute_thresh", &s.AbsoluteThresh)
	if r.err != nil {
		return p, s, r.err
	}
	if err := p.Validate(); err != nil {
		return p, s, err
	}
	if err := s.Validate(); err != nil {
		return p, s, err
	}
	return p, s, nil
}

// streamQuery adds the reconciler selection to conversionQuery.
func streamQuery(q url.Values, d Defaults) (realtime.Version, realtime.Options, error) {
	var opts realtime.Options
	p, s, err := conversionQuery(q, d)
	if err != nil {
		return 0, opts, err
	}
	v := d.Version
	if vs := q.Get("version"); vs != "" {
		if v, err = realtime.ParseVersion(vs); err != nil {
			return 0, opts, err
		}
	}
	opts.Params, opts.Slice = p, s
	opts.CrossfadeSeconds, opts.Split = d.CrossfadeSeconds, d.Split
	r := &queryReader{q: q}
	r.float("crossfade_seconds", &opts.CrossfadeSeconds)
	r.bool("split", &opts.Split)
	if r.err != nil {
		return 0, opts, r.err
	}
	if opts.CrossfadeSeconds <= 0 {
		return 0, opts, errors.Configuration("crossfade_seconds must be positive, got %g", opts.CrossfadeSeconds)
	}
	return v, opts, nil
}

// sessionID returns the client's session query value, which must be a
// UUID when present, or a fresh id.
func sessionID(q url.Values) (string, error) {
	id := q.Get("session")
	if err := validation.New().OptionalUUID("session", id).Validate(); err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.New().String()
	}
	return id, nil
}
