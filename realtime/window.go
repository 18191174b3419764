package realtime

import (
	"context"
	"fmt"

	"github.com/kbukum/voiceshift/audio"
	"github.com/kbukum/voiceshift/conversion"
	"github.com/kbukum/voiceshift/logger"
)

// WindowConverter converts one crossfade window. The result must have the
// same length as the window.
type WindowConverter interface {
	ConvertWindow(ctx context.Context, window []float32) ([]float32, error)
}

// WindowConverterFunc adapts a function to WindowConverter.
type WindowConverterFunc func(ctx context.Context, window []float32) ([]float32, error)

// ConvertWindow calls f.
func (f WindowConverterFunc) ConvertWindow(ctx context.Context, window []float32) ([]float32, error) {
	return f(ctx, window)
}

// SplitWindow runs each window through the offline pipeline. Thresholds
// are always absolute so that quiet windows are not normalised to their
// own peak.
func SplitWindow(off *conversion.Offline, p conversion.Params, slice conversion.SliceConfig) WindowConverter {
	slice.AbsoluteThresh = true
	return WindowConverterFunc(func(ctx context.Context, window []float32) ([]float32, error) {
		return off.Process(ctx, window, p, slice)
	})
}

// RMSGateWindow passes windows quieter than dbThresh through unchanged and
// converts the rest whole, without padding.
func RMSGateWindow(conv *conversion.Converter, p conversion.Params, dbThresh float64) WindowConverter {
	minRMS := audio.DBToAmplitude(dbThresh)
	log := logger.Get("realtime").WithComponent("rms_gate")
	return WindowConverterFunc(func(ctx context.Context, window []float32) ([]float32, error) {
		rms := audio.RMS(window)
		if rms < minRMS {
			log.Debug(fmt.Sprintf("Skip silence: RMS=%.2f < %.2f", rms, minRMS))
			out := make([]float32, len(window))
			copy(out, window)
			return out, nil
		}
		log.Debug(fmt.Sprintf("Start inference: RMS=%.2f >= %.2f", rms, minRMS))
		return conv.ConvertRaw(ctx, window, p)
	})
}

// IdentityWindow returns a copy of each window.
func IdentityWindow() WindowConverter {
	return WindowConverterFunc(func(_ context.Context, window []float32) ([]float32, error) {
		out := make([]float32, len(window))
		copy(out, window)
		return out, nil
	})
}
