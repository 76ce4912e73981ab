package appclient

import (
	"crypto/sha256"
	"testing"

	"github.com/fotaboot/pfb/flash"
	"github.com/fotaboot/pfb/metadata"
)

type fakeRebooter struct{ rebooted bool }

func (f *fakeRebooter) Reboot() { f.rebooted = true }

func TestPerformUpdateArmsSwapAndReboots(t *testing.T) {
	dev := flash.NewMemDevice(128 * 1024)
	meta := metadata.New(dev, 96*1024)
	reb := &fakeRebooter{}
	c := New(dev, meta, 64*1024, 32*1024, reb)

	image := make([]byte, 2*flash.AlignSize)
	for i := range image {
		image[i] = byte(i)
	}

	if err := c.InitializeDownloadSlot(); err != nil {
		t.Fatalf("InitializeDownloadSlot: %v", err)
	}
	if err := c.WriteToFlashAligned(image[:flash.AlignSize], 0); err != nil {
		t.Fatalf("WriteToFlashAligned chunk 0: %v", err)
	}
	if err := c.WriteToFlashAligned(image[flash.AlignSize:], flash.AlignSize); err != nil {
		t.Fatalf("WriteToFlashAligned chunk 1: %v", err)
	}

	digest := sha256.Sum256(image)
	if err := c.MarkDownloadSlotValid(uint32(len(image)), digest); err != nil {
		t.Fatalf("MarkDownloadSlotValid: %v", err)
	}

	if err := c.PerformUpdate(uint32(len(image))); err != nil {
		t.Fatalf("PerformUpdate: %v", err)
	}
	if !reb.rebooted {
		t.Errorf("expected PerformUpdate to trigger a reboot")
	}

	rec, err := meta.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !rec.HasNewFirmware || rec.SwapSize != uint32(len(image)) || rec.Digest != digest {
		t.Errorf("expected armed swap state, got %+v", rec)
	}
}

func TestCommitClearsShouldRollback(t *testing.T) {
	dev := flash.NewMemDevice(128 * 1024)
	meta := metadata.New(dev, 96*1024)
	if err := meta.MarkShouldRollback(); err != nil {
		t.Fatalf("MarkShouldRollback: %v", err)
	}

	c := New(dev, meta, 64*1024, 32*1024, &fakeRebooter{})
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	r, err := meta.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.ShouldRollback {
		t.Errorf("expected Commit to clear should_rollback")
	}
}
