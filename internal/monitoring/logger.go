// Package monitoring holds the diagnostic logger shared by the artifact
// loaders and the predictor.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf
// and may be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Redirect installs f as the logger and returns a function restoring the
// previous one. Tests use it to capture or mute output.
func Redirect(f func(format string, v ...interface{})) (restore func()) {
	prev := Logf
	SetLogger(f)
	return func() { Logf = prev }
}
