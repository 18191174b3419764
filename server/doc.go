// Package server runs the HTTP surface of voiceshift: a Gin engine behind
// h2c with recovery, request ids, CORS, body limits and request logging
// applied at the net/http level so WebSocket upgrades pass through the
// same chain.
//
// Built-in endpoints live in server/endpoint; the voice conversion routes
// are registered by server/voice.
package server
