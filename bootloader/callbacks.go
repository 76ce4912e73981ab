package bootloader

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Progress describes where Run currently is in the reset-time sequence.
// Passed to ProgressCallback.
type Progress struct {
	// Phase describes the current step:
	//   "deciding"      - reading metadata and resolving the recovery trigger
	//   "bringing-up"   - bringing up the network (recovery path only)
	//   "recovering"    - serving the recovery endpoint
	//   "swapping"      - exchanging the APP and DOWNLOAD slots
	//   "verifying"     - hashing the staged image against its digest
	//   "handing-off"   - jumping to the application
	Phase string

	// Action is the boot.Action Decide chose, once known.
	Action string

	// SectorsDone and TotalSectors track a swap in progress.
	SectorsDone  int
	TotalSectors int

	ElapsedTime time.Duration
}

// ProgressCallback is called as Run advances through the reset-time
// sequence. Implementations should return quickly.
//
// Example:
//
//	boot := bootloader.New(dev, meta, appBase, downloadBase, slotLength,
//	    netDrv, boardID, jumper,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("[%s] %s\n", p.Phase, p.Action)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface for Run's operations. This
// allows integration with any logging framework.
//
// Example with a hand-rolled logger:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	boot := bootloader.New(dev, meta, appBase, downloadBase, slotLength,
//	    netDrv, boardID, jumper, bootloader.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// logrusLogger adapts a *logrus.Logger (or any logrus.FieldLogger) to
// the Logger interface.
type logrusLogger struct {
	entry logrus.FieldLogger
}

// NewLogrusLogger wraps l so it can be passed to WithLogger.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	return &logrusLogger{entry: l}
}

func (l *logrusLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(pairsToFields(keysAndValues)).Debug(msg)
}

func (l *logrusLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(pairsToFields(keysAndValues)).Info(msg)
}

func (l *logrusLogger) Error(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(pairsToFields(keysAndValues)).Error(msg)
}

func pairsToFields(kv []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields[key] = kv[i+1]
	}
	return fields
}
