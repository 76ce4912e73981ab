// Package network implements the bring-up sequence for the external
// Ethernet MAC: deriving a MAC address from the board's unique ID,
// attempting DHCP with bounded retries, and falling back to a static
// address.
//
// The MAC/PHY chip and its SPI driver are out-of-scope external
// collaborators; this package only talks to MACDriver.
package network

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/avast/retry-go/v4"
)

// oui is the fixed 3-byte vendor prefix the bootloader uses for every
// device.
var oui = [3]byte{0x00, 0x08, 0xDC}

// BoardID is the device's unique hardware identifier. Only its last
// three bytes feed the derived MAC address.
type BoardID [8]byte

// DeriveMAC concatenates the fixed OUI with the last three bytes of
// id.
func DeriveMAC(id BoardID) net.HardwareAddr {
	return net.HardwareAddr{oui[0], oui[1], oui[2], id[5], id[6], id[7]}
}

// StaticFallback is the configuration used when DHCP never succeeds.
var StaticFallback = struct {
	IP      net.IP
	Mask    net.IPMask
	Gateway net.IP
}{
	IP:      net.IPv4(192, 168, 0, 100),
	Mask:    net.CIDRMask(24, 32),
	Gateway: net.IPv4(192, 168, 0, 1),
}

// MACDriver is the thin interface the external SPI Ethernet MAC is
// consumed through.
type MACDriver interface {
	Init() error
	SetHardwareAddr(mac net.HardwareAddr) error
	StartDHCP() error
	// PollDHCP reports whether a lease has been obtained. It must
	// not block; BringUp calls it repeatedly with its own backoff.
	PollDHCP() (leased bool, err error)
	LeasedIP() (net.IP, error)
	StopDHCP() error
	SetStatic(ip net.IP, mask net.IPMask, gateway net.IP) error
}

// BringUp derives and sets the MAC address, then attempts DHCP up to
// retries times, each attempt bounded by attemptTimeout, falling back
// to StaticFallback if every attempt fails. onTick, if non-nil, is
// called on every poll iteration; some boards toggle a status LED
// here, but that plumbing is left to the caller.
func BringUp(ctx context.Context, drv MACDriver, id BoardID, retries int, attemptTimeout time.Duration, onTick func()) (net.IP, error) {
	mac := DeriveMAC(id)
	if err := drv.SetHardwareAddr(mac); err != nil {
		return nil, fmt.Errorf("network: set hardware address: %w", err)
	}
	if err := drv.Init(); err != nil {
		return nil, fmt.Errorf("network: init MAC: %w", err)
	}

	// retry.Attempts(0) would retry without limit, so a non-positive
	// retries count goes straight to the static fallback.
	err := fmt.Errorf("no dhcp attempts configured")
	if retries > 0 {
		err = retry.Do(
			func() error { return attemptDHCP(ctx, drv, attemptTimeout, onTick) },
			retry.Attempts(uint(retries)),
			retry.Context(ctx),
			retry.DelayType(retry.FixedDelay),
			retry.Delay(0),
			retry.LastErrorOnly(true),
		)
	}
	if err == nil {
		ip, lerr := drv.LeasedIP()
		if lerr != nil {
			return nil, fmt.Errorf("network: read leased IP: %w", lerr)
		}
		return ip, nil
	}

	if serr := drv.SetStatic(StaticFallback.IP, StaticFallback.Mask, StaticFallback.Gateway); serr != nil {
		return nil, fmt.Errorf("network: static fallback after DHCP failure (%v): %w", err, serr)
	}
	return StaticFallback.IP, nil
}

// attemptDHCP runs one bounded DHCP attempt: start, poll until leased
// or attemptTimeout elapses, then stop regardless of outcome.
func attemptDHCP(ctx context.Context, drv MACDriver, attemptTimeout time.Duration, onTick func()) error {
	if err := drv.StartDHCP(); err != nil {
		return fmt.Errorf("start dhcp: %w", err)
	}
	defer drv.StopDHCP()

	deadline := time.Now().Add(attemptTimeout)
	for time.Now().Before(deadline) {
		leased, err := drv.PollDHCP()
		if err != nil {
			return fmt.Errorf("poll dhcp: %w", err)
		}
		if leased {
			return nil
		}
		if onTick != nil {
			onTick()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return fmt.Errorf("dhcp attempt timed out after %s", attemptTimeout)
}
