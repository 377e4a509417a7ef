// Package terminal defines the boundary to biometric terminal protocol
// drivers.
//
// The wire protocol itself lives behind the Dialer and Session interfaces; a
// driver dials one terminal, places it into maintenance mode for the duration
// of bulk reads, and exposes the raw roster and punch log exactly as the
// firmware reports them. Raw records are loosely typed on purpose: terminals
// in the field return malformed identifiers and the normalization layer, not
// the driver, decides how to treat them.
//
// Live capture is a pull-based stream. Each pull blocks up to the driver's
// read timeout and yields a tagged result: a real event, a timeout sentinel,
// or stream closure. The stream is not restartable; a new LiveCapture call is
// required to re-arm capture.
package terminal
