// BringUp is the only entry point most callers need; see bringup.go
// for the retry/backoff/fallback sequence and fake.go for a MACDriver
// usable in tests without real hardware.
package network
