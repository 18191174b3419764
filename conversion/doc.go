// Package conversion runs the synthesis backend over audio whose length
// must be preserved.
//
// Converter is the single-shot step: pad a segment with silence, call the
// backend and trim the result back to the segment length relative to the
// result's own length, so backends that resample internally still line up.
// Offline splits a whole recording on silence, converts only the speech
// segments and reassembles a buffer of exactly the input length.
package conversion
