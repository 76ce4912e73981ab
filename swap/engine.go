// Package swap implements the sector-granular exchange of bytes
// between the APP and DOWNLOAD slots.
package swap

import (
	"fmt"
	"sync"

	"github.com/fotaboot/pfb/flash"
)

// SectorCount derives the sector count from swapSize: 0 or a value
// greater than slotLength means "whole slot", otherwise
// ceil(swapSize / SectorSize). Exported so callers can report swap
// progress (total sectors) ahead of calling Run.
func SectorCount(swapSize, slotLength uint32) uint32 {
	if swapSize == 0 || swapSize > slotLength {
		swapSize = slotLength
	}
	return (swapSize + flash.SectorSize - 1) / flash.SectorSize
}

// Run exchanges appBase and downloadBase sector-by-sector, for as many
// sectors as swapSize implies (see SectorCount). Both slots must be at
// least slotLength bytes and slotLength must be a multiple of
// flash.SectorSize.
//
// The whole loop runs under a single critical section: a half-swap
// across sector boundaries is a state only the recovery path can
// repair, so the section must cover every sector, not just each one
// individually.
func Run(dev flash.Device, crit *sync.Mutex, appBase, downloadBase, slotLength, swapSize uint32) error {
	n := SectorCount(swapSize, slotLength)

	return flash.CriticalSection(crit, func() error {
		a := make([]byte, flash.SectorSize)
		b := make([]byte, flash.SectorSize)

		for i := uint32(0); i < n; i++ {
			off := i * flash.SectorSize
			appAddr := appBase + off
			downloadAddr := downloadBase + off

			if err := dev.Read(appAddr, a); err != nil {
				return fmt.Errorf("swap: read app sector %d: %w", i, err)
			}
			if err := dev.Read(downloadAddr, b); err != nil {
				return fmt.Errorf("swap: read download sector %d: %w", i, err)
			}

			if err := dev.Erase(appAddr, flash.SectorSize); err != nil {
				return fmt.Errorf("swap: erase app sector %d: %w", i, err)
			}
			if err := dev.Erase(downloadAddr, flash.SectorSize); err != nil {
				return fmt.Errorf("swap: erase download sector %d: %w", i, err)
			}

			if err := dev.Program(appAddr, b); err != nil {
				return fmt.Errorf("swap: program app sector %d: %w", i, err)
			}
			if err := dev.Program(downloadAddr, a); err != nil {
				return fmt.Errorf("swap: program download sector %d: %w", i, err)
			}
		}
		return nil
	})
}
