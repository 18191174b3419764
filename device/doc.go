// Package device streams audio between a capture device, a realtime
// reconciler and a playback device.
//
// The package is driver-agnostic: a Driver enumerates devices and opens
// duplex streams. The paudio sub-package implements it with PortAudio.
package device
