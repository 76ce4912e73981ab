package handoff

import "testing"

func TestRunPerformsFullSequence(t *testing.T) {
	sim := &SimJumper{}
	Run(sim, 0x10040000)

	if !sim.InterruptsDisabled {
		t.Errorf("expected interrupts to be disabled")
	}
	if !sim.PeripheralsReset {
		t.Errorf("expected peripherals to be reset")
	}
	if !sim.Jumped || sim.JumpedTo != 0x10040000 {
		t.Errorf("expected jump to 0x10040000, got jumped=%v to=0x%X", sim.Jumped, sim.JumpedTo)
	}
}
