// Package voice serves conversion over HTTP.
//
// POST /v1/convert takes a WAV body and returns the converted WAV at the
// model rate. GET /v1/stream upgrades to a WebSocket on which each binary
// frame is one little-endian float32 block and each reply is the
// converted block of the same length. Every connection owns its own
// reconciler.
package voice
