// Package paudio implements device.Driver with PortAudio.
package paudio

import (
	"github.com/gordonklaus/portaudio"

	"github.com/kbukum/voiceshift/device"
	"github.com/kbukum/voiceshift/errors"
)

// Driver is a PortAudio session. Create it with Open and release it with
// Close.
type Driver struct {
	devices []*portaudio.DeviceInfo
}

var _ device.Driver = (*Driver)(nil)

// Open initializes PortAudio.
func Open() (*Driver, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, errors.ServiceUnavailable("portaudio").WithCause(err)
	}
	return &Driver{}, nil
}

// Close terminates PortAudio.
func (d *Driver) Close() error {
	return portaudio.Terminate()
}

// Devices lists all devices PortAudio knows about.
func (d *Driver) Devices() ([]device.Info, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	d.devices = devs
	out := make([]device.Info, len(devs))
	for i, dev := range devs {
		out[i] = toInfo(i, dev)
	}
	return out, nil
}

// DefaultDevice returns the host's default device for dir.
func (d *Driver) DefaultDevice(dir device.Direction) (device.Info, error) {
	var (
		dev *portaudio.DeviceInfo
		err error
	)
	if dir == device.Input {
		dev, err = portaudio.DefaultInputDevice()
	} else {
		dev, err = portaudio.DefaultOutputDevice()
	}
	if err != nil {
		return device.Info{}, err
	}
	if d.devices == nil {
		if _, err := d.Devices(); err != nil {
			return device.Info{}, err
		}
	}
	for i, known := range d.devices {
		if known == dev || known.Name == dev.Name {
			return toInfo(i, dev), nil
		}
	}
	return toInfo(-1, dev), nil
}

// Open opens a duplex stream that invokes cb once per buffer.
func (d *Driver) Open(p device.StreamParams, cb device.Callback) (device.Handle, error) {
	in, err := d.lookup(p.Input)
	if err != nil {
		return nil, err
	}
	out, err := d.lookup(p.Output)
	if err != nil {
		return nil, err
	}
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   in,
			Channels: p.InputChannels,
			Latency:  in.DefaultHighInputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Device:   out,
			Channels: p.OutputChannels,
			Latency:  out.DefaultHighOutputLatency,
		},
		SampleRate:      p.SampleRate,
		FramesPerBuffer: p.FramesPerBuffer,
	}
	stream, err := portaudio.OpenStream(params, func(inBuf, outBuf []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
		cb(inBuf, outBuf, toFlags(flags))
	})
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (d *Driver) lookup(info device.Info) (*portaudio.DeviceInfo, error) {
	if d.devices == nil {
		if _, err := d.Devices(); err != nil {
			return nil, err
		}
	}
	if info.Index < 0 || info.Index >= len(d.devices) {
		return nil, errors.NotFound("audio device", info.Name)
	}
	return d.devices[info.Index], nil
}

func toInfo(index int, dev *portaudio.DeviceInfo) device.Info {
	info := device.Info{
		Index:             index,
		Name:              dev.Name,
		MaxInputChannels:  dev.MaxInputChannels,
		MaxOutputChannels: dev.MaxOutputChannels,
		DefaultSampleRate: dev.DefaultSampleRate,
	}
	if dev.HostApi != nil {
		info.HostAPI = dev.HostApi.Name
	}
	return info
}

func toFlags(f portaudio.StreamCallbackFlags) device.Flags {
	var out device.Flags
	for _, m := range []struct {
		pa portaudio.StreamCallbackFlags
		d  device.Flags
	}{
		{portaudio.InputUnderflow, device.InputUnderflow},
		{portaudio.InputOverflow, device.InputOverflow},
		{portaudio.OutputUnderflow, device.OutputUnderflow},
		{portaudio.OutputOverflow, device.OutputOverflow},
		{portaudio.PrimingOutput, device.PrimingOutput},
	} {
		if f&m.pa != 0 {
			out |= m.d
		}
	}
	return out
}
