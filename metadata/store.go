// Package metadata persists the bootloader's three-flag, one-size,
// one-digest record in a dedicated INFO sector, and exposes it both to the boot
// decision core and, via the same methods, to the running
// application's thin ABI.
package metadata

import (
	"fmt"
	"sync"

	"github.com/fotaboot/pfb/flash"
)

// Store is a single-writer resource over one flash.Device sector. Every
// setter performs a whole-sector read-modify-erase-program; the erase
// and the program run together under a flash.CriticalSection on the
// store's own mutex, the same discipline swap.Run uses, so two setters
// never interleave their erase/program pairs. Get, and the read half of
// each setter, run outside that section: a read that overlaps a
// setter's erase sees the erased sector, which decodes as all-false.
type Store struct {
	dev  flash.Device
	base uint32
	crit sync.Mutex
}

// New returns a Store backed by the INFO sector at base. base must be
// sector-aligned.
func New(dev flash.Device, base uint32) *Store {
	return &Store{dev: dev, base: base}
}

// Get returns the current record, decoding the erased/corrupted marker
// as all-false.
func (s *Store) Get() (Record, error) {
	buf := make([]byte, recordSize)
	if err := s.dev.Read(s.base, buf); err != nil {
		return Record{}, fmt.Errorf("metadata: read info sector: %w", err)
	}
	return decode(buf), nil
}

// set performs the read-modify-erase-program cycle with mutate applied
// to the in-RAM copy of the current record.
func (s *Store) set(mutate func(*Record)) error {
	rec, err := s.Get()
	if err != nil {
		return err
	}
	mutate(&rec)

	buf := make([]byte, flash.AlignSize)
	for i := range buf {
		buf[i] = 0xFF
	}
	rec.encode(buf)

	return flash.CriticalSection(&s.crit, func() error {
		if err := s.dev.Erase(s.base, flash.SectorSize); err != nil {
			return fmt.Errorf("metadata: erase info sector: %w", err)
		}
		if err := s.dev.Program(s.base, buf); err != nil {
			return fmt.Errorf("metadata: program info sector: %w", err)
		}
		return nil
	})
}

// MarkHasNewFirmware records that a swap just installed an
// uncommitted image (boot-side, set on Swap-and-arm).
func (s *Store) MarkHasNewFirmware() error {
	return s.set(func(r *Record) { r.HasNewFirmware = true })
}

// MarkHasNoNewFirmware is the application-facing commit of the "new
// firmware" flag (part of the exported application ABI).
func (s *Store) MarkHasNoNewFirmware() error {
	return s.set(func(r *Record) { r.HasNewFirmware = false })
}

// MarkIsAfterRollback records that the running image is the result of
// a rollback.
func (s *Store) MarkIsAfterRollback() error {
	return s.set(func(r *Record) { r.AfterRollback = true })
}

// MarkIsNotAfterRollback clears the after-rollback flag.
func (s *Store) MarkIsNotAfterRollback() error {
	return s.set(func(r *Record) { r.AfterRollback = false })
}

// IsAfterFirmwareUpdate reports whether the last boot installed new,
// not-yet-committed firmware. Part of the application ABI.
func (s *Store) IsAfterFirmwareUpdate() (bool, error) {
	r, err := s.Get()
	if err != nil {
		return false, err
	}
	return r.HasNewFirmware, nil
}

// IsAfterRollback reports whether the running image is the result of a
// rollback. Part of the application ABI.
func (s *Store) IsAfterRollback() (bool, error) {
	r, err := s.Get()
	if err != nil {
		return false, err
	}
	return r.AfterRollback, nil
}

// MarkShouldRollback arms the next boot to roll back unless the
// application commits first.
func (s *Store) MarkShouldRollback() error {
	return s.set(func(r *Record) { r.ShouldRollback = true })
}

// MarkShouldNotRollback is the application's commit call: it confirms
// the currently running image is healthy. Part of the application ABI.
func (s *Store) MarkShouldNotRollback() error {
	return s.set(func(r *Record) { r.ShouldRollback = false })
}

// SetSwapSize records the byte count that participates in the next
// swap; 0 (or a value exceeding the slot length) means "whole slot".
func (s *Store) SetSwapSize(size uint32) error {
	return s.set(func(r *Record) { r.SwapSize = size })
}

// MarkDownloadSlotValid records the size and digest of a staged image.
// It is the application ABI's entry point for supplying a digest
// computed out-of-band, and the recovery path's record of an upload
// that has already verified.
func (s *Store) MarkDownloadSlotValid(size uint32, digest [32]byte) error {
	return s.set(func(r *Record) {
		r.SwapSize = size
		r.Digest = digest
	})
}

// MarkDownloadSlotInvalid clears the staged size and digest so a
// future boot cannot mistake a stale record for a fresh upload.
func (s *Store) MarkDownloadSlotInvalid() error {
	return s.set(func(r *Record) {
		r.SwapSize = 0
		r.Digest = [32]byte{}
	})
}
