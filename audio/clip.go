package audio

// Clip is interleaved audio with its format.
type Clip struct {
	Samples    []float32
	Channels   int
	SampleRate int
}

// Frames is the number of sample frames.
func (c *Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Seconds is the clip duration.
func (c *Clip) Seconds() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(c.Frames()) / float64(c.SampleRate)
}

// Mono returns the clip averaged down to one channel.
func (c *Clip) Mono() []float32 {
	return Downmix(c.Samples, c.Channels)
}

// Downmix averages interleaved channels into one. A trailing partial
// frame is dropped.
func Downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(interleaved))
		copy(out, interleaved)
		return out
	}
	frames := len(interleaved) / channels
	out := make([]float32, frames)
	inv := 1 / float32(channels)
	for f := 0; f < frames; f++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += interleaved[f*channels+ch]
		}
		out[f] = sum * inv
	}
	return out
}

// Resample converts x from rate `from` to rate `to` by linear
// interpolation. The output has round(len(x)*to/from) samples.
func Resample(x []float32, from, to int) []float32 {
	if from <= 0 || to <= 0 || from == to || len(x) == 0 {
		out := make([]float32, len(x))
		copy(out, x)
		return out
	}
	n := int((int64(len(x))*int64(to) + int64(from)/2) / int64(from))
	return ResampleTo(x, n)
}

// ResampleTo stretches x to exactly n samples by linear interpolation.
func ResampleTo(x []float32, n int) []float32 {
	if n <= 0 {
		return []float32{}
	}
	out := make([]float32, n)
	if len(x) == 0 {
		return out
	}
	if len(x) == 1 || n == 1 {
		for i := range out {
			out[i] = x[0]
		}
		return out
	}
	step := float64(len(x)-1) / float64(n-1)
	last := len(x) - 1
	for i := range out {
		pos := float64(i) * step
		idx := int(pos)
		if idx >= last {
			out[i] = x[last]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = x[idx] + frac*(x[idx+1]-x[idx])
	}
	return out
}
