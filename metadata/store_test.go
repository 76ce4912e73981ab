package metadata

import (
	"testing"

	"github.com/fotaboot/pfb/flash"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dev := flash.NewMemDevice(flash.SectorSize)
	return New(dev, 0)
}

func TestFreshStoreIsAllFalse(t *testing.T) {
	s := newTestStore(t)

	r, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.HasNewFirmware || r.AfterRollback || r.ShouldRollback || r.SwapSize != 0 {
		t.Fatalf("expected all-false fresh record, got %+v", r)
	}
}

func TestSettersRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.MarkHasNewFirmware(); err != nil {
		t.Fatalf("MarkHasNewFirmware: %v", err)
	}
	if err := s.MarkShouldRollback(); err != nil {
		t.Fatalf("MarkShouldRollback: %v", err)
	}
	if err := s.SetSwapSize(123456); err != nil {
		t.Fatalf("SetSwapSize: %v", err)
	}

	updated, err := s.IsAfterFirmwareUpdate()
	if err != nil || !updated {
		t.Fatalf("IsAfterFirmwareUpdate() = %v, %v; want true, nil", updated, err)
	}

	r, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !r.ShouldRollback {
		t.Fatalf("Get().ShouldRollback = false; want true")
	}
	if r.SwapSize != 123456 {
		t.Fatalf("SwapSize = %d, want 123456", r.SwapSize)
	}

	// Unrelated flags remain false.
	if r.AfterRollback {
		t.Fatalf("AfterRollback should remain false")
	}

	if err := s.MarkHasNoNewFirmware(); err != nil {
		t.Fatalf("MarkHasNoNewFirmware: %v", err)
	}
	if err := s.MarkShouldNotRollback(); err != nil {
		t.Fatalf("MarkShouldNotRollback: %v", err)
	}

	r, _ = s.Get()
	if r.HasNewFirmware || r.ShouldRollback {
		t.Fatalf("expected both flags cleared, got %+v", r)
	}
}

func TestMarkDownloadSlotValidAndInvalid(t *testing.T) {
	s := newTestStore(t)
	digest := [32]byte{1, 2, 3}

	if err := s.MarkDownloadSlotValid(2048, digest); err != nil {
		t.Fatalf("MarkDownloadSlotValid: %v", err)
	}
	r, _ := s.Get()
	if r.SwapSize != 2048 || r.Digest != digest {
		t.Fatalf("unexpected record after MarkDownloadSlotValid: %+v", r)
	}

	if err := s.MarkDownloadSlotInvalid(); err != nil {
		t.Fatalf("MarkDownloadSlotInvalid: %v", err)
	}
	r, _ = s.Get()
	if r.SwapSize != 0 || r.Digest != [32]byte{} {
		t.Fatalf("expected cleared slot state, got %+v", r)
	}
}

func TestCorruptedMarkerDecodesAllFalse(t *testing.T) {
	dev := flash.NewMemDevice(flash.SectorSize)
	s := New(dev, 0)

	if err := s.MarkHasNewFirmware(); err != nil {
		t.Fatalf("MarkHasNewFirmware: %v", err)
	}

	// Corrupt the marker word directly to simulate a torn write.
	if err := dev.Erase(0, flash.SectorSize); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	garbage := make([]byte, flash.AlignSize)
	for i := range garbage {
		garbage[i] = 0xAB
	}
	if err := dev.Program(0, garbage); err != nil {
		t.Fatalf("Program: %v", err)
	}

	r, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.HasNewFirmware || r.AfterRollback || r.ShouldRollback {
		t.Fatalf("expected all-false on corrupted marker, got %+v", r)
	}
}
