// Package appclient implements the thin ABI the bootloader exports to
// the running application: stage a firmware image into the download
// slot, supply its digest, and soft-reset into the bootloader to
// trigger the swap.
package appclient

import (
	"fmt"

	"github.com/fotaboot/pfb/flash"
	"github.com/fotaboot/pfb/metadata"
	"github.com/fotaboot/pfb/recovery"
)

// Client is the application-side counterpart to the bootloader
// package: it writes to the same DOWNLOAD slot and INFO sector, but
// never executes a swap or hand-off itself.
type Client struct {
	dev                   flash.Device
	meta                  *metadata.Store
	downloadBase, slotLen uint32
	rebooter              recovery.Rebooter
}

// New returns a Client over dev's DOWNLOAD slot (downloadBase, length
// slotLen) and the metadata store meta. rebooter performs the soft
// reset PerformUpdate uses to re-enter the bootloader.
func New(dev flash.Device, meta *metadata.Store, downloadBase, slotLen uint32, rebooter recovery.Rebooter) *Client {
	return &Client{dev: dev, meta: meta, downloadBase: downloadBase, slotLen: slotLen, rebooter: rebooter}
}

// InitializeDownloadSlot erases the entire DOWNLOAD slot ahead of a
// fresh write.
func (c *Client) InitializeDownloadSlot() error {
	if err := c.dev.Erase(c.downloadBase, c.slotLen); err != nil {
		return fmt.Errorf("appclient: initialize download slot: %w", err)
	}
	return nil
}

// WriteToFlashAligned programs buf (a multiple of flash.AlignSize) at
// offset bytes into the DOWNLOAD slot.
func (c *Client) WriteToFlashAligned(buf []byte, offset uint32) error {
	if err := c.dev.Program(c.downloadBase+offset, buf); err != nil {
		return fmt.Errorf("appclient: write to flash at offset %d: %w", offset, err)
	}
	return nil
}

// MarkDownloadSlotValid records size and digest ahead of the next
// reset's boot decision.
func (c *Client) MarkDownloadSlotValid(size uint32, digest [32]byte) error {
	return c.meta.MarkDownloadSlotValid(size, digest)
}

// MarkDownloadSlotInvalid clears a staged image the application has
// decided not to apply.
func (c *Client) MarkDownloadSlotInvalid() error {
	return c.meta.MarkDownloadSlotInvalid()
}

// Commit clears should_rollback, confirming the currently running
// image is healthy. An application MUST call this after it has
// verified its own post-update health checks, or the next reset rolls
// back to the previous image.
func (c *Client) Commit() error {
	return c.meta.MarkShouldNotRollback()
}

// IsAfterFirmwareUpdate reports whether the current boot installed new,
// not-yet-committed firmware.
func (c *Client) IsAfterFirmwareUpdate() (bool, error) {
	return c.meta.IsAfterFirmwareUpdate()
}

// IsAfterRollback reports whether the current boot is the result of an
// automatic rollback.
func (c *Client) IsAfterRollback() (bool, error) {
	return c.meta.IsAfterRollback()
}

// PerformUpdate sets swap_size and has_new_firmware, then soft-resets
// into the bootloader. With a trigger policy that does not fold armed
// flags into Recovery (such as boot.GPIOTrigger), the next reset's boot
// decision resolves to Swap-and-arm; under the bootloader's default
// boot.FlagUnionTrigger it resolves to Recovery. It does not return on
// real hardware.
func (c *Client) PerformUpdate(size uint32) error {
	if err := c.meta.SetSwapSize(size); err != nil {
		return fmt.Errorf("appclient: set swap size: %w", err)
	}
	if err := c.meta.MarkHasNewFirmware(); err != nil {
		return fmt.Errorf("appclient: arm swap: %w", err)
	}
	c.rebooter.Reboot()
	return nil
}
