// Package handoff implements the final step of every boot path:
// quiesce the hardware and jump to the application's reset vector.
// The jump itself never returns on real hardware, so it is modeled as
// a Jumper interface the orchestrator calls as the very last thing it
// does.
package handoff

// Jumper performs the hardware hand-off. DisableInterrupts and
// ResetPeripherals prepare the core for the jump; Jump loads the
// application's stack pointer and branches to its reset vector and,
// on real hardware, does not return.
type Jumper interface {
	DisableInterrupts()
	ResetPeripherals()
	Jump(vtor uint32)
}

// Run executes the hand-off sequence against j: disable interrupts,
// reset peripherals, then jump. Precondition: all pending flash
// operations have completed and metadata writes are durable; callers
// must ensure that before calling Run.
func Run(j Jumper, vtor uint32) {
	j.DisableInterrupts()
	j.ResetPeripherals()
	j.Jump(vtor)
}
