// Package synthesis defines the boundary to the voice-conversion backend:
// the Request a backend receives, the Provider interface every backend
// implements, the model's speaker table and the middleware chain that adds
// logging, metrics, tracing and circuit breaking around backend calls.
//
// # Backends
//
//   - synthesis/remote: HTTP sidecar exchanging float32 PCM
//   - synthesis/subprocess: external command exchanging PCM over stdio
//   - synthesis/stub: deterministic stand-ins (identity, gain, resample)
//
// Backends never promise output of the same length as their input.
// Callers trim relative to the result length.
package synthesis
