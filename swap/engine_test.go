package swap

import (
	"bytes"
	"sync"
	"testing"

	"github.com/fotaboot/pfb/flash"
)

const slotLength = 4 * flash.SectorSize

func setupDevice(t *testing.T, appFill, downloadFill byte) (*flash.MemDevice, uint32, uint32) {
	t.Helper()
	dev := flash.NewMemDevice(3 * slotLength)
	appBase := uint32(0)
	downloadBase := uint32(slotLength)

	app := bytes.Repeat([]byte{appFill}, int(slotLength))
	download := bytes.Repeat([]byte{downloadFill}, int(slotLength))

	for off := uint32(0); off < slotLength; off += flash.SectorSize {
		if err := dev.Erase(appBase+off, flash.SectorSize); err != nil {
			t.Fatalf("seed erase app: %v", err)
		}
		if err := dev.Program(appBase+off, app[off:off+flash.SectorSize]); err != nil {
			t.Fatalf("seed program app: %v", err)
		}
		if err := dev.Erase(downloadBase+off, flash.SectorSize); err != nil {
			t.Fatalf("seed erase download: %v", err)
		}
		if err := dev.Program(downloadBase+off, download[off:off+flash.SectorSize]); err != nil {
			t.Fatalf("seed program download: %v", err)
		}
	}

	return dev, appBase, downloadBase
}

func TestSwapExchangesWholeSlot(t *testing.T) {
	dev, appBase, downloadBase := setupDevice(t, 0xAA, 0xBB)
	var crit sync.Mutex

	if err := Run(dev, &crit, appBase, downloadBase, slotLength, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}

	app := make([]byte, slotLength)
	download := make([]byte, slotLength)
	_ = dev.Read(appBase, app)
	_ = dev.Read(downloadBase, download)

	if !bytes.Equal(app, bytes.Repeat([]byte{0xBB}, int(slotLength))) {
		t.Fatalf("app slot did not receive download contents")
	}
	if !bytes.Equal(download, bytes.Repeat([]byte{0xAA}, int(slotLength))) {
		t.Fatalf("download slot did not receive app contents")
	}
}

func TestSwapIsSelfInverse(t *testing.T) {
	dev, appBase, downloadBase := setupDevice(t, 0x11, 0x22)
	var crit sync.Mutex

	before := dev.Snapshot()

	if err := Run(dev, &crit, appBase, downloadBase, slotLength, 0); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := Run(dev, &crit, appBase, downloadBase, slotLength, 0); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	after := dev.Snapshot()
	if !bytes.Equal(before, after) {
		t.Fatalf("two consecutive swaps did not restore original contents")
	}
}

func TestSectorCountDerivation(t *testing.T) {
	cases := []struct {
		swapSize, slotLength, want uint32
	}{
		{0, slotLength, slotLength / flash.SectorSize},
		{slotLength + 1, slotLength, slotLength / flash.SectorSize},
		{flash.SectorSize, slotLength, 1},
		{flash.SectorSize + 1, slotLength, 2},
	}
	for _, c := range cases {
		if got := SectorCount(c.swapSize, c.slotLength); got != c.want {
			t.Errorf("SectorCount(%d, %d) = %d, want %d", c.swapSize, c.slotLength, got, c.want)
		}
	}
}

func TestSwapPartialSize(t *testing.T) {
	dev, appBase, downloadBase := setupDevice(t, 0xAA, 0xBB)
	var crit sync.Mutex

	if err := Run(dev, &crit, appBase, downloadBase, slotLength, flash.SectorSize); err != nil {
		t.Fatalf("Run: %v", err)
	}

	app := make([]byte, slotLength)
	_ = dev.Read(appBase, app)

	if app[0] != 0xBB {
		t.Fatalf("first sector should have swapped")
	}
	if app[flash.SectorSize] != 0xAA {
		t.Fatalf("second sector should be untouched")
	}
}
