// Package audio holds the sample plumbing around the conversion engine:
// WAV file decode and encode, mono downmix, linear resampling, the raw
// float32 PCM wire codec and level helpers.
//
// Samples are float32 in [-1, 1].
package audio
