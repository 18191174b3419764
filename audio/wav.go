package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/kbukum/voiceshift/errors"
)

// wavFormatPCM is the only WAVE format tag the decoder understands.
const wavFormatPCM = 1

// OutputBitDepth is the bit depth of every WAV written by this package.
const OutputBitDepth = 16

// DecodeWAV reads an integer PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, errors.InvalidInput("wav", "not a valid WAV stream")
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, errors.InvalidInput("wav", fmt.Sprintf("unsupported WAVE format %d, want integer PCM", d.WavAudioFormat))
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, errors.InvalidInput("wav", err.Error()).WithCause(err)
	}

	bitDepth := int(d.BitDepth)
	if bitDepth <= 0 {
		bitDepth = buf.SourceBitDepth
	}
	scale := float32(1)
	if bitDepth > 1 {
		scale = 1 / float32(int64(1)<<(bitDepth-1))
	}
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) * scale
	}
	return &Clip{
		Samples:    samples,
		Channels:   buf.Format.NumChannels,
		SampleRate: buf.Format.SampleRate,
	}, nil
}

// ReadWAV decodes a WAV file.
func ReadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Configuration("open %s: %v", path, err).WithCause(err)
	}
	defer func() { _ = f.Close() }()

	clip, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return clip, nil
}

// EncodeWAV writes mono samples as 16-bit PCM WAV. Samples outside
// [-1, 1] are clipped.
func EncodeWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, OutputBitDepth, 1, wavFormatPCM)
	data := make([]int, len(samples))
	for i, s := range samples {
		switch {
		case s > 1:
			s = 1
		case s < -1:
			s = -1
		}
		data[i] = int(s * 32767)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: OutputBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	return nil
}

// WriteWAV writes mono samples to path as 16-bit PCM WAV.
func WriteWAV(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := EncodeWAV(f, samples, sampleRate); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WAVBytes encodes mono samples into an in-memory WAV file.
func WAVBytes(samples []float32, sampleRate int) ([]byte, error) {
	ws := &memWriteSeeker{}
	if err := EncodeWAV(ws, samples, sampleRate); err != nil {
		return nil, err
	}
	return ws.buf, nil
}

// DecodeWAVBytes decodes an in-memory WAV file.
func DecodeWAVBytes(b []byte) (*Clip, error) {
	return DecodeWAV(bytes.NewReader(b))
}

// memWriteSeeker is the io.WriteSeeker the WAV encoder needs to patch its
// header after the data is written.
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		if end > cap(m.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, m.buf)
			m.buf = grown
		} else {
			m.buf = m.buf[:end]
		}
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("seek: negative position %d", abs)
	}
	m.pos = int(abs)
	return abs, nil
}
