package flash

import (
	"fmt"
	"sync"
)

// ErrNotErased is returned by MemDevice.Program when a byte being
// programmed was not erased (0xFF) first, mirroring the real NOR
// flash constraint that program can only clear bits, never set them.
type ErrNotErased struct {
	Addr uint32
}

func (e *ErrNotErased) Error() string {
	return fmt.Sprintf("flash: 0x%08X was not erased before program", e.Addr)
}

// MemDevice is a RAM-backed Device used for tests. It enforces the same alignment and
// erase-before-program discipline a real NOR flash chip would, so code
// exercised against it behaves the same way against real hardware.
type MemDevice struct {
	mu   sync.Mutex
	data []byte
}

// NewMemDevice allocates a MemDevice of the given size, initialized to
// the erased state (all 0xFF), matching how NOR flash reads before any
// sector has ever been programmed.
func NewMemDevice(size uint32) *MemDevice {
	d := &MemDevice{data: make([]byte, size)}
	for i := range d.data {
		d.data[i] = 0xFF
	}
	return d
}

func (d *MemDevice) Erase(addr, length uint32) error {
	if err := checkAligned("erase", addr, length, SectorSize); err != nil {
		return err
	}
	if err := d.boundsCheck(addr, length); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := addr; i < addr+length; i++ {
		d.data[i] = 0xFF
	}
	return nil
}

func (d *MemDevice) Program(addr uint32, buf []byte) error {
	if err := checkAligned("program", addr, uint32(len(buf)), AlignSize); err != nil {
		return err
	}
	if err := d.boundsCheck(addr, uint32(len(buf))); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, b := range buf {
		if d.data[addr+uint32(i)] != 0xFF {
			return &ErrNotErased{Addr: addr + uint32(i)}
		}
		d.data[addr+uint32(i)] = b
	}
	return nil
}

func (d *MemDevice) Read(addr uint32, buf []byte) error {
	if err := d.boundsCheck(addr, uint32(len(buf))); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(buf, d.data[addr:addr+uint32(len(buf))])
	return nil
}

func (d *MemDevice) boundsCheck(addr, length uint32) error {
	if uint64(addr)+uint64(length) > uint64(len(d.data)) {
		return fmt.Errorf("flash: access at 0x%08X len %d exceeds device size %d", addr, length, len(d.data))
	}
	return nil
}

// Snapshot returns a copy of the entire backing store, for test
// assertions.
func (d *MemDevice) Snapshot() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]byte, len(d.data))
	copy(out, d.data)
	return out
}
