package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Warnf logs through Logf with a "WARN: " prefix, for conditions that don't
// stop a run but a race engineer reviewing server logs should notice — a
// quasi-transient loop that hit its iteration cap without converging, a
// sweep point the solver couldn't resolve.
func Warnf(format string, v ...interface{}) {
	Logf("WARN: "+format, v...)
}
