package ceangal

import (
	"sync"

	"github.com/rs/zerolog"
)

var (
	// loggerMu protects Logger from concurrent access in tests.
	loggerMu sync.RWMutex

	// Logger is the package-level logger new containers start from.
	// It is a no-op logger until SetLogger is called.
	Logger = zerolog.Nop()
)

// SetLogger sets the package-level logger used by containers created
// afterwards. The logger is tagged with component: ceangal.
//
// Example:
//
//	logger := zerolog.New(os.Stderr).Level(zerolog.DebugLevel)
//	ceangal.SetLogger(&logger)
func SetLogger(l *zerolog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	Logger = tagged(*l)
}

func logger() zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return Logger
}

func tagged(l zerolog.Logger) zerolog.Logger {
	return l.With().Str("component", "ceangal").Logger()
}
