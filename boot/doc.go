// Decide is pure and total (see decision.go); TriggerPolicy (see
// trigger.go) is the only part of this package that touches the
// outside world, and even that is behind a caller-supplied function.
package boot
