// Package bootloader provides the reset-time orchestrator for a
// dual-bank, fail-safe firmware update bootloader.
//
// # Overview
//
// This package ties together the flash, metadata, swap, verify, boot,
// network, recovery, and handoff packages into the full reset-time
// sequence:
//   - Read the persisted metadata record and resolve the recovery trigger
//   - Decide the boot action (Passthrough, Swap-and-arm, Rollback, or Recovery)
//   - Execute that action's flag transitions, bringing up the network
//     and serving firmware uploads for Recovery
//   - Hand off to the application
//
// # Basic Usage
//
//	dev := myflash.Open()
//	meta := metadata.New(dev, infoBase)
//	boot := bootloader.New(dev, meta, appBase, downloadBase, slotLength,
//	    netDrv, boardID, jumper)
//
//	err := boot.Run(context.Background())
//
// # Progress Tracking
//
// Track the reset-time sequence with a callback:
//
//	boot := bootloader.New(dev, meta, appBase, downloadBase, slotLength,
//	    netDrv, boardID, jumper,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("[%s] %s\n", p.Phase, p.Action)
//	    }),
//	)
//
// # Configuration Options
//
// Customize behavior with functional options:
//
//	boot := bootloader.New(dev, meta, appBase, downloadBase, slotLength,
//	    netDrv, boardID, jumper,
//	    bootloader.WithLogger(myLogger),
//	    bootloader.WithTriggerPolicy(boot.GPIOTrigger{Read: readRecoveryPins}),
//	    bootloader.WithRecoveryListener(ln),
//	    bootloader.WithRetries(5),
//	)
//
// # Logging
//
// Integrate with any logging framework:
//
//	type MyLogger struct {
//	    logger *log.Logger
//	}
//
//	func (l *MyLogger) Debug(msg string, kv ...interface{}) {
//	    l.logger.Println("DEBUG:", msg, kv)
//	}
//
//	func (l *MyLogger) Info(msg string, kv ...interface{}) {
//	    l.logger.Println("INFO:", msg, kv)
//	}
//
//	func (l *MyLogger) Error(msg string, kv ...interface{}) {
//	    l.logger.Println("ERROR:", msg, kv)
//	}
//
//	boot := bootloader.New(dev, meta, appBase, downloadBase, slotLength,
//	    netDrv, boardID, jumper, bootloader.WithLogger(&MyLogger{...}))
//
// A logrus.Logger (or any logrus.FieldLogger) can be used directly via
// NewLogrusLogger.
//
// # Context Support
//
// Run supports context for cancelling the recovery network's DHCP
// bring-up and, in tests, the recovery accept loop:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
//	defer cancel()
//
//	err := boot.Run(ctx)
//
// # Error Handling
//
// The package provides structured error types:
//   - StorageError: a flash erase/program/metadata failure
//   - NetworkError: DHCP bring-up failed even after falling back to the static address
//   - IntegrityError: a staged image's digest did not match
//   - ProtocolError: the recovery endpoint could not serve (no listener
//     configured, or the accept loop failed)
//
// # Hardware Independence
//
// This package does NOT implement flash, MAC, or vector-table access.
// Callers provide a flash.Device, a network.MACDriver, a
// recovery.Listener, and a handoff.Jumper; this package works
// identically against real hardware and against the host-testable
// fakes in flash, network, and handoff.
package bootloader
