package bootloader

import (
	"time"

	"github.com/fotaboot/pfb/boot"
	"github.com/fotaboot/pfb/recovery"
	"github.com/fotaboot/pfb/verify"
)

// Config holds the orchestrator configuration.
type Config struct {
	// ProgressCallback is called during Run to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// TriggerPolicy resolves the recovery trigger input to Decide.
	// Defaults to boot.FlagUnionTrigger{}, which folds should_rollback
	// and has_new_firmware straight into Recovery. An app-driven OTA
	// flow (appclient.Client.PerformUpdate, then a commit or a
	// rollback on next boot) needs boot.Decide to actually reach
	// SwapAndArm/Rollback, so such a deployment MUST override this
	// with WithTriggerPolicy(boot.GPIOTrigger{...}) or an equivalent
	// policy that doesn't treat every armed flag as a recovery request.
	TriggerPolicy boot.TriggerPolicy

	// Hasher computes the digest verify.Check compares against. Nil
	// selects verify.DefaultHasher.
	Hasher verify.Hasher

	// Retries is the number of DHCP attempts network.BringUp makes
	// before falling back to the static address.
	Retries int

	// DHCPAttemptTimeout bounds each individual DHCP attempt.
	DHCPAttemptTimeout time.Duration

	// VTOR is the application's vector table address, passed to
	// handoff.Run.
	VTOR uint32

	// RecoveryListener accepts connections for the recovery
	// endpoint. Required if a boot can resolve to boot.Recovery.
	RecoveryListener recovery.Listener

	// Rebooter services a recovery GET request for an immediate
	// reset, bypassing an upload.
	Rebooter recovery.Rebooter

	// OnNetworkTick is called on every DHCP poll iteration; a caller
	// with a status LED can blink it here. GPIO/LED plumbing is left
	// to the caller rather than built into this package.
	OnNetworkTick func()
}

// defaultConfig returns the default configuration: headless deployment
// (FlagUnionTrigger), 5 DHCP retries at 2s each. See TriggerPolicy's
// doc comment before relying on the default in an app-driven OTA flow.
func defaultConfig() Config {
	return Config{
		TriggerPolicy:      boot.FlagUnionTrigger{},
		Retries:            5,
		DHCPAttemptTimeout: 2 * time.Second,
	}
}

// Option is a functional option for configuring the Bootloader.
type Option func(*Config)

// WithProgressCallback sets a callback function to track Run's
// progress through the reset-time sequence.
//
// Example:
//
//	boot := bootloader.New(dev, meta, appBase, downloadBase, slotLength,
//	    netDrv, boardID, jumper,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("%s: %s\n", p.Phase, p.Action)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for Run's operations.
//
// Example:
//
//	boot := bootloader.New(dev, meta, appBase, downloadBase, slotLength,
//	    netDrv, boardID, jumper, bootloader.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTriggerPolicy overrides the default headless trigger policy,
// typically with a boot.GPIOTrigger on boards with a physical recovery
// button. Also required for app-driven OTA: the default
// FlagUnionTrigger resolves any armed flag straight to Recovery, so
// SwapAndArm and Rollback are unreachable without this override.
func WithTriggerPolicy(policy boot.TriggerPolicy) Option {
	return func(c *Config) {
		if policy != nil {
			c.TriggerPolicy = policy
		}
	}
}

// WithHasher overrides the SHA-256 implementation used to verify a
// staged download image, for boards with a dedicated hash engine.
func WithHasher(h verify.Hasher) Option {
	return func(c *Config) {
		c.Hasher = h
	}
}

// WithRetries sets the number of DHCP attempts before falling back to
// the static address.
//
// Example:
//
//	boot := bootloader.New(dev, meta, appBase, downloadBase, slotLength,
//	    netDrv, boardID, jumper, bootloader.WithRetries(5))
func WithRetries(retries int) Option {
	return func(c *Config) {
		if retries >= 0 {
			c.Retries = retries
		}
	}
}

// WithDHCPAttemptTimeout bounds each individual DHCP attempt made
// during network bring-up.
func WithDHCPAttemptTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.DHCPAttemptTimeout = timeout
		}
	}
}

// WithVTOR sets the application's vector table address that handoff.Run
// jumps to.
func WithVTOR(vtor uint32) Option {
	return func(c *Config) {
		c.VTOR = vtor
	}
}

// WithRecoveryListener supplies the listener the recovery endpoint
// accepts connections on. Required for any deployment where Decide can
// resolve to boot.Recovery.
func WithRecoveryListener(ln recovery.Listener) Option {
	return func(c *Config) {
		c.RecoveryListener = ln
	}
}

// WithRebooter wires a hardware reset into the recovery endpoint's GET
// ".../reboot" handling.
func WithRebooter(r recovery.Rebooter) Option {
	return func(c *Config) {
		c.Rebooter = r
	}
}

// WithNetworkTick registers a callback invoked on every DHCP poll
// iteration during network bring-up.
func WithNetworkTick(tick func()) Option {
	return func(c *Config) {
		c.OnNetworkTick = tick
	}
}
