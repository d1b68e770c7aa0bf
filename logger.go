package roadgrade

import (
	"go.uber.org/zap"
)

// Package level logger. Defaults to nop so library users who don't care
// about diagnostics pay nothing; SetLogger installs a real one.
var log = zap.NewNop().Sugar()

// SetLogger installs logger for all diagnostics produced by the harmonization
// pipeline (progress, warnings about degraded junctions, telemetry).
func SetLogger(l *zap.Logger) {
	if l == nil {
		log = zap.NewNop().Sugar()
		return
	}
	log = l.Sugar()
}
