// Package component defines lifecycle-managed pieces of a voiceshift
// process: the HTTP server, the synthesis backend client and the audio
// device stream. Components are started in registration order and
// stopped in reverse by a Registry.
package component
