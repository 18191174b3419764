package device

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/logger"
)

// Info describes one audio device.
type Info struct {
	Index             int
	Name              string
	HostAPI           string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

func (i Info) String() string {
	return fmt.Sprintf("%d: %s (%s, in %d, out %d, %g Hz)",
		i.Index, i.Name, i.HostAPI, i.MaxInputChannels, i.MaxOutputChannels, i.DefaultSampleRate)
}

// Direction selects capture or playback.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Select picks a device by spec. An empty spec, or an index outside the
// device list, selects def. A name must match exactly; an unknown name
// falls back to def with a warning.
func Select(devices []Info, spec string, dir Direction, def Info, log *logger.Logger) Info {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return def
	}
	if idx, err := strconv.Atoi(spec); err == nil {
		if idx >= 0 && idx < len(devices) {
			return devices[idx]
		}
		return def
	}
	for _, d := range devices {
		if d.Name == spec {
			return d
		}
	}
	if log == nil {
		log = logger.Get("device")
	}
	log.Warn(fmt.Sprintf("%s device %s not found, using default", capitalize(dir.String()), spec),
		logger.Fields("device", spec, logger.FieldFallback, def.Name))
	return def
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Driver is an audio backend able to enumerate devices and open duplex
// streams.
type Driver interface {
	Devices() ([]Info, error)
	DefaultDevice(dir Direction) (Info, error)
	Open(params StreamParams, cb Callback) (Handle, error)
}

// StreamParams configure a duplex stream.
type StreamParams struct {
	Input           Info
	Output          Info
	InputChannels   int
	OutputChannels  int
	SampleRate      float64
	FramesPerBuffer int
}

// Callback receives interleaved capture samples and fills interleaved
// playback samples.
type Callback func(in, out []float32, flags Flags)

// Handle is an opened stream.
type Handle interface {
	Start() error
	Stop() error
	Close() error
}

// Resolve looks up the input and output devices for the given specs.
func Resolve(d Driver, inputSpec, outputSpec string, log *logger.Logger) (in, out Info, err error) {
	devices, err := d.Devices()
	if err != nil {
		return Info{}, Info{}, errors.ServiceUnavailable("audio devices").WithCause(err)
	}
	defIn, err := d.DefaultDevice(Input)
	if err != nil {
		return Info{}, Info{}, errors.NotFound("input device", "default").WithCause(err)
	}
	defOut, err := d.DefaultDevice(Output)
	if err != nil {
		return Info{}, Info{}, errors.NotFound("output device", "default").WithCause(err)
	}
	return Select(devices, inputSpec, Input, defIn, log), Select(devices, outputSpec, Output, defOut, log), nil
}
