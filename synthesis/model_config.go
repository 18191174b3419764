package synthesis

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/spf13/viper"

	"github.com/kbukum/voiceshift/errors"
)

// ModelConfig is the part of a model's JSON config the engine needs.
type ModelConfig struct {
	Path       string
	SampleRate int
	HopLength  int
	Speakers   *Speakers
}

// LoadModelConfig reads a model config file. A missing or malformed file
// is a configuration error.
func LoadModelConfig(path string) (*ModelConfig, error) {
	if path == "" {
		return nil, errors.Configuration("model config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Configuration("read model config %s: %v", path, err).WithCause(err)
	}
	cfg, err := ParseModelConfig(data)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// ParseModelConfig decodes model config JSON. Speaker names are read with
// encoding/json because viper lowercases map keys.
func ParseModelConfig(data []byte) (*ModelConfig, error) {
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.Configuration("parse model config: %v", err).WithCause(err)
	}

	cfg := &ModelConfig{
		SampleRate: v.GetInt("data.sampling_rate"),
		HopLength:  v.GetInt("data.hop_length"),
	}
	if cfg.SampleRate <= 0 {
		return nil, errors.Configuration("model config: data.sampling_rate must be positive, got %d", cfg.SampleRate)
	}

	var raw struct {
		Spk map[string]int `json:"spk"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Configuration("parse model config spk: %v", err).WithCause(err)
	}
	cfg.Speakers = NewSpeakers(raw.Spk)
	return cfg, nil
}
