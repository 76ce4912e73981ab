// Package bootloader ties together the flash, metadata, swap, verify,
// boot, network, recovery, and handoff packages into the reset-time
// sequence: decide an action from persisted state and the recovery
// trigger, execute that action's flag transitions, and hand off to the
// application.
package bootloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fotaboot/pfb/boot"
	"github.com/fotaboot/pfb/flash"
	"github.com/fotaboot/pfb/handoff"
	"github.com/fotaboot/pfb/metadata"
	"github.com/fotaboot/pfb/network"
	"github.com/fotaboot/pfb/recovery"
	"github.com/fotaboot/pfb/swap"
)

// Bootloader orchestrates one reset-time boot sequence against a
// flash.Device-backed APP/DOWNLOAD/INFO layout.
//
// Bootloader is not safe for concurrent Run calls; there is exactly one
// boot sequence per reset.
type Bootloader struct {
	dev                           flash.Device
	meta                          *metadata.Store
	appBase, downloadBase, length uint32

	netDrv  network.MACDriver
	boardID network.BoardID
	jumper  handoff.Jumper

	crit   sync.Mutex
	config Config
}

// New creates a Bootloader over dev, with metadata persisted through
// meta, APP and DOWNLOAD slots of length bytes at appBase/downloadBase,
// a network.MACDriver for recovery bring-up, and the Jumper that
// performs the final hand-off.
//
// Example:
//
//	boot := bootloader.New(dev, meta, appBase, downloadBase, slotLength,
//	    netDrv, boardID, jumper,
//	    bootloader.WithLogger(logger),
//	    bootloader.WithRecoveryListener(ln),
//	)
func New(dev flash.Device, meta *metadata.Store, appBase, downloadBase, length uint32,
	netDrv network.MACDriver, boardID network.BoardID, jumper handoff.Jumper, opts ...Option) *Bootloader {
	if dev == nil {
		panic("device cannot be nil")
	}
	if meta == nil {
		panic("metadata store cannot be nil")
	}
	if jumper == nil {
		panic("jumper cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Bootloader{
		dev:          dev,
		meta:         meta,
		appBase:      appBase,
		downloadBase: downloadBase,
		length:       length,
		netDrv:       netDrv,
		boardID:      boardID,
		jumper:       jumper,
		config:       cfg,
	}
}

// Run executes the full reset-time sequence:
//  1. Read the metadata record and resolve the recovery trigger
//  2. Decide the action (boot.Decide)
//  3. Execute that action's flag transitions, which for Recovery means
//     bringing up the network and serving uploads until one verifies
//  4. Hand off to the application
//
// On real hardware handoff.Run never returns; Run's error return exists
// for host testing and for the recoverable failures the caller is
// expected to log and re-attempt a safe boot path for.
func (b *Bootloader) Run(ctx context.Context) error {
	start := time.Now()

	rec, err := b.meta.Get()
	if err != nil {
		return &StorageError{Op: "read metadata", Err: err}
	}

	trigger := b.config.TriggerPolicy.Trigger(rec.ShouldRollback, rec.HasNewFirmware, rec.AfterRollback)
	action := boot.Decide(trigger, rec.ShouldRollback, rec.HasNewFirmware)

	b.logInfo("boot decision", "action", action.String(),
		"should_rollback", rec.ShouldRollback, "has_new_firmware", rec.HasNewFirmware, "after_rollback", rec.AfterRollback)
	b.reportProgress(Progress{Phase: "deciding", Action: action.String(), ElapsedTime: time.Since(start)})

	var opErr error
	switch action {
	case boot.Recovery:
		b.reportProgress(Progress{Phase: "bringing-up", Action: action.String(), ElapsedTime: time.Since(start)})
		opErr = b.runRecovery(ctx)
	case boot.Rollback:
		opErr = b.runRollback(rec)
	case boot.SwapAndArm:
		opErr = b.runSwapAndArm(rec)
	case boot.Passthrough:
		opErr = b.runPassthrough()
	}
	if opErr != nil {
		b.logError("boot action failed", "action", action.String(), "error", opErr)
		return opErr
	}

	b.reportProgress(Progress{Phase: "handing-off", Action: action.String(), ElapsedTime: time.Since(start)})
	b.logInfo("handing off", "elapsed", time.Since(start).String())
	handoff.Run(b.jumper, b.config.VTOR)
	return nil
}

// runSwap reports sector progress around swap.Run: once with
// SectorsDone 0 before the swap, once with SectorsDone == TotalSectors
// after it completes successfully.
func (b *Bootloader) runSwap(action string, swapSize uint32) error {
	total := swap.SectorCount(swapSize, b.length)
	b.reportProgress(Progress{Phase: "swapping", Action: action, TotalSectors: int(total)})
	if err := swap.Run(b.dev, &b.crit, b.appBase, b.downloadBase, b.length, swapSize); err != nil {
		return err
	}
	b.reportProgress(Progress{Phase: "swapping", Action: action, SectorsDone: int(total), TotalSectors: int(total)})
	return nil
}

// runRollback restores the previous image.
func (b *Bootloader) runRollback(rec metadata.Record) error {
	if err := b.runSwap(boot.Rollback.String(), rec.SwapSize); err != nil {
		return &StorageError{Op: "rollback swap", Err: err}
	}
	return b.mustAll(
		b.meta.MarkShouldNotRollback,
		b.meta.MarkHasNoNewFirmware,
		b.meta.MarkIsAfterRollback,
		b.meta.MarkDownloadSlotInvalid,
	)
}

// runSwapAndArm installs the staged image and arms a rollback that
// the application must clear to confirm a healthy boot. It deliberately
// leaves swap_size in place (unlike runRollback and swapAndCommit,
// which both clear it once their swap is final): a paired rollback on
// a future boot must reverse the same extent this swap touched, and
// clearing it here would make that rollback fall back to a whole-slot
// swap instead.
func (b *Bootloader) runSwapAndArm(rec metadata.Record) error {
	if err := b.runSwap(boot.SwapAndArm.String(), rec.SwapSize); err != nil {
		return &StorageError{Op: "swap-and-arm swap", Err: err}
	}
	return b.mustAll(
		b.meta.MarkHasNewFirmware,
		b.meta.MarkIsNotAfterRollback,
		b.meta.MarkShouldRollback,
	)
}

// runPassthrough commits the current boot.
func (b *Bootloader) runPassthrough() error {
	return b.mustAll(
		b.meta.MarkShouldNotRollback,
		b.meta.MarkHasNoNewFirmware,
	)
}

// runRecovery brings up the network and serves the recovery endpoint
// until an upload verifies (swapAndCommit runs as its Hooks.OnVerified)
// or ctx is cancelled.
func (b *Bootloader) runRecovery(ctx context.Context) error {
	ip, err := network.BringUp(ctx, b.netDrv, b.boardID, b.config.Retries, b.config.DHCPAttemptTimeout, b.config.OnNetworkTick)
	if err != nil {
		return &NetworkError{Op: "bring up recovery network", Err: err}
	}
	b.logInfo("recovery network up", "ip", ip.String())

	if b.config.RecoveryListener == nil {
		return &ProtocolError{Reason: "recovery requested but no listener configured"}
	}

	b.reportProgress(Progress{Phase: "recovering", Action: boot.Recovery.String()})

	srv := &recovery.Server{
		Dev:          b.dev,
		DownloadBase: b.downloadBase,
		SlotLength:   b.length,
		Hasher:       b.config.Hasher,
		Rebooter:     b.config.Rebooter,
		Log:          b.recoveryLogger(),
		Hooks: recovery.Hooks{
			OnVerifying: func() {
				b.reportProgress(Progress{Phase: "verifying", Action: boot.Recovery.String()})
			},
			OnMismatch: func(length uint32, digest [32]byte) {
				b.logError("recovery upload failed verification", "error", &IntegrityError{Length: length, Digest: digest})
			},
			OnVerified: b.swapAndCommit,
		},
	}

	if err := srv.Serve(recovery.CtxDone(ctx), b.config.RecoveryListener); err != nil {
		return &ProtocolError{Reason: err.Error()}
	}
	return nil
}

// swapAndCommit performs the swap-and-commit transition, reached only
// from a verified recovery upload.
func (b *Bootloader) swapAndCommit(length uint32, digest [32]byte) error {
	if err := b.meta.MarkDownloadSlotValid(length, digest); err != nil {
		return &StorageError{Op: "mark download slot valid", Err: err}
	}
	if err := b.runSwap(boot.Recovery.String(), length); err != nil {
		return &StorageError{Op: "swap-and-commit swap", Err: err}
	}
	return b.mustAll(
		b.meta.MarkShouldNotRollback,
		b.meta.MarkHasNoNewFirmware,
		b.meta.MarkIsNotAfterRollback,
		b.meta.MarkDownloadSlotInvalid,
	)
}

// mustAll runs each metadata setter in order, stopping and wrapping the
// first failure as a StorageError.
func (b *Bootloader) mustAll(fns ...func() error) error {
	for _, fn := range fns {
		if err := fn(); err != nil {
			return &StorageError{Op: "update metadata", Err: err}
		}
	}
	return nil
}

func (b *Bootloader) reportProgress(p Progress) {
	if b.config.ProgressCallback != nil {
		b.config.ProgressCallback(p)
	}
}

func (b *Bootloader) logInfo(msg string, kv ...interface{}) {
	if b.config.Logger != nil {
		b.config.Logger.Info(msg, kv...)
	}
}

func (b *Bootloader) logError(msg string, kv ...interface{}) {
	if b.config.Logger != nil {
		b.config.Logger.Error(msg, kv...)
	}
}

// recoveryLogger adapts Config.Logger to the recovery package's
// Infof/Errorf surface.
func (b *Bootloader) recoveryLogger() recovery.Logger {
	if b.config.Logger == nil {
		return nil
	}
	return &bridgeLogger{l: b.config.Logger}
}

type bridgeLogger struct{ l Logger }

func (b *bridgeLogger) Infof(format string, args ...interface{}) {
	b.l.Info(fmt.Sprintf(format, args...))
}

func (b *bridgeLogger) Errorf(format string, args ...interface{}) {
	b.l.Error(fmt.Sprintf(format, args...))
}
