package audio

import (
	"encoding/binary"
	"math"

	"github.com/kbukum/voiceshift/errors"
)

// EncodeFloat32LE packs samples as little-endian IEEE-754 float32.
func EncodeFloat32LE(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

// DecodeFloat32LE unpacks little-endian float32 samples. A length that is
// not a multiple of four is an invalid input error.
func DecodeFloat32LE(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, errors.InvalidInput("pcm", "float32 payload length must be a multiple of 4")
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}
