package handoff

// SimJumper records the hand-off it was asked to perform instead of
// actually branching, so host tests can assert on it.
type SimJumper struct {
	InterruptsDisabled bool
	PeripheralsReset   bool
	JumpedTo           uint32
	Jumped             bool
}

func (s *SimJumper) DisableInterrupts() { s.InterruptsDisabled = true }
func (s *SimJumper) ResetPeripherals() { s.PeripheralsReset = true }
func (s *SimJumper) Jump(vtor uint32) {
	s.JumpedTo = vtor
	s.Jumped = true
}
