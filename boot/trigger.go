package boot

// TriggerPolicy resolves the recoveryTrigger input to Decide. Two
// variants are provided: a physical GPIO button, and a headless "any
// unresolved armed state" union. Callers pick the one matching their
// deployment (see DESIGN.md).
type TriggerPolicy interface {
	// Trigger reports whether recovery mode should be entered,
	// given the just-read Record fields.
	Trigger(shouldRollback, hasNewFirmware, afterRollback bool) bool
}

// GPIOReader reads the two active-low recovery GPIOs. It returns true
// if either line reads low.
type GPIOReader func() (bool, error)

// GPIOTrigger is the production policy for devices with a physical
// recovery button: recovery is requested only by the GPIO lines,
// independent of flag state. Confirm, if set, is called to debounce a
// positive read before committing to recovery: some boards blink an
// LED ten times and re-sample the GPIOs; callers can wire that
// behavior here instead of hardcoding it into this package.
type GPIOTrigger struct {
	Read    GPIOReader
	Confirm func() bool
}

func (t GPIOTrigger) Trigger(_, _, _ bool) bool {
	low, err := t.Read()
	if err != nil || !low {
		return false
	}
	if t.Confirm != nil {
		return t.Confirm()
	}
	return true
}

// FlagUnionTrigger is the headless-deployment policy: any unresolved
// armed state forces a recovery opportunity, since there is no operator
// present to press a button.
type FlagUnionTrigger struct{}

func (FlagUnionTrigger) Trigger(shouldRollback, hasNewFirmware, afterRollback bool) bool {
	return shouldRollback || hasNewFirmware || afterRollback
}
