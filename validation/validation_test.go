package validation

import (
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kbukum/voiceshift/errors"
)

func TestValidatorRequired(t *testing.T) {
	if New().Required("speaker", "alice").HasErrors() {
		t.Error("expected no errors for valid input")
	}
	if !New().Required("speaker", "   ").HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorOptionalUUID(t *testing.T) {
	if New().OptionalUUID("session", "").HasErrors() {
		t.Error("expected empty session id to be accepted")
	}
	if New().OptionalUUID("session", uuid.New().String()).HasErrors() {
		t.Error("expected valid UUID to be accepted")
	}
	if !New().OptionalUUID("session", "abc").HasErrors() {
		t.Error("expected invalid UUID to be rejected")
	}
}

func TestValidatorNumeric(t *testing.T) {
	tests := []struct {
		name    string
		check   func(v *Validator)
		wantErr bool
	}{
		{"range inside", func(v *Validator) { v.Range("cluster_ratio", 0.5, 0, 1) }, false},
		{"range edge", func(v *Validator) { v.Range("cluster_ratio", 1, 0, 1) }, false},
		{"range outside", func(v *Validator) { v.Range("cluster_ratio", 1.5, 0, 1) }, true},
		{"range NaN", func(v *Validator) { v.Range("cluster_ratio", math.NaN(), 0, 1) }, true},
		{"positive", func(v *Validator) { v.Positive("block_seconds", 0.5) }, false},
		{"positive zero", func(v *Validator) { v.Positive("block_seconds", 0) }, true},
		{"non-negative zero", func(v *Validator) { v.NonNegative("pad_seconds", 0) }, false},
		{"non-negative below", func(v *Validator) { v.NonNegative("pad_seconds", -0.1) }, true},
		{"finite inf", func(v *Validator) { v.Finite("transpose", math.Inf(1)) }, true},
		{"one of", func(v *Validator) { v.OneOf("version", "2", []string{"1", "2"}) }, false},
		{"not one of", func(v *Validator) { v.OneOf("version", "3", []string{"1", "2"}) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			tt.check(v)
			if v.HasErrors() != tt.wantErr {
				t.Errorf("expected errors=%v, got %v", tt.wantErr, v.Errors())
			}
		})
	}
}

func TestValidatorValidateReturnsConfigurationError(t *testing.T) {
	v := New()
	v.Positive("block_seconds", -1).Range("cluster_ratio", 2, 0, 1)
	err := v.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.IsConfiguration(err) {
		t.Errorf("expected CONFIGURATION_ERROR, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "block_seconds") || !strings.Contains(err.Message, "cluster_ratio") {
		t.Errorf("expected both fields in message, got %q", err.Message)
	}
	if New().Validate() != nil {
		t.Error("expected nil for a clean validator")
	}
}

type sliceSection struct {
	DBThresh     float64 `mapstructure:"db_thresh" validate:"lte=0"`
	ChunkSeconds float64 `mapstructure:"chunk_seconds" validate:"gt=0"`
	Backend      string  `mapstructure:"backend" validate:"required,oneof=remote subprocess identity"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s := sliceSection{DBThresh: -40, ChunkSeconds: 0.5, Backend: "remote"}
		if err := Struct(s); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("invalid reports config keys", func(t *testing.T) {
		s := sliceSection{DBThresh: 10, ChunkSeconds: 0, Backend: "gpu"}
		err := Struct(s)
		if err == nil {
			t.Fatal("expected error")
		}
		if !errors.IsConfiguration(err) {
			t.Errorf("expected configuration error, got %v", err)
		}
		for _, key := range []string{"db_thresh", "chunk_seconds", "backend"} {
			if !strings.Contains(err.Error(), key) {
				t.Errorf("expected %q in %q", key, err.Error())
			}
		}
	})
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("ChunkSeconds"); got != "chunk_seconds" {
		t.Errorf("expected chunk_seconds, got %s", got)
	}
}
