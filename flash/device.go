// Package flash abstracts the block-device primitives a dual-bank
// bootloader needs: sector erase, aligned program, and a critical
// section that serializes access the way disabling interrupts would on
// real hardware.
//
// The actual NOR flash controller and its erase/program timing are
// external collaborators; this package only does address arithmetic
// and the erase-before-program discipline, against whatever Device a
// caller supplies.
package flash

import (
	"fmt"
	"sync"
)

// SectorSize is the minimum erase granularity of the block device.
const SectorSize = 4096

// AlignSize is the minimum program granularity of the block device.
const AlignSize = 256

// Device is the facade over the underlying NOR flash chip. All
// addresses and lengths passed to Erase must be multiples of
// SectorSize; all addresses and lengths passed to Program must be
// multiples of AlignSize. Program must always be preceded by an Erase
// covering the same bytes.
type Device interface {
	Erase(addr, length uint32) error
	Program(addr uint32, buf []byte) error
	Read(addr uint32, buf []byte) error
}

// ErrMisaligned is returned when an address or length does not meet the
// erase or program granularity required by the device.
type ErrMisaligned struct {
	Op       string
	Addr     uint32
	Length   uint32
	Required uint32
}

func (e *ErrMisaligned) Error() string {
	return fmt.Sprintf("flash: %s at 0x%08X len %d is not aligned to %d", e.Op, e.Addr, e.Length, e.Required)
}

func checkAligned(op string, addr, length, required uint32) error {
	if addr%required != 0 || length%required != 0 {
		return &ErrMisaligned{Op: op, Addr: addr, Length: length, Required: required}
	}
	return nil
}

// CriticalSection runs fn with exclusive access to crit, the way the
// bootloader disables interrupts around erase/program on real hardware.
// crit is acquired for the entire call, not per-sector, so a caller
// swapping many sectors in a loop should wrap the whole loop in one
// CriticalSection call (see swap.Run).
func CriticalSection(crit *sync.Mutex, fn func() error) error {
	crit.Lock()
	defer crit.Unlock()
	return fn()
}
