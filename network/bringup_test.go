package network

import (
	"context"
	"testing"
	"time"
)

func TestDeriveMAC(t *testing.T) {
	id := BoardID{0, 0, 0, 0, 0, 0xAA, 0xBB, 0xCC}
	mac := DeriveMAC(id)
	want := "00:08:dc:aa:bb:cc"
	if mac.String() != want {
		t.Fatalf("DeriveMAC = %s, want %s", mac.String(), want)
	}
}

func TestBringUpSucceedsOnFirstAttempt(t *testing.T) {
	drv := &FakeMACDriver{LeaseAfterPolls: 0, LeaseIP: nil}

	ip, err := BringUp(context.Background(), drv, BoardID{}, 3, time.Second, nil)
	if err != nil {
		t.Fatalf("BringUp: %v", err)
	}
	if ip == nil {
		t.Fatalf("expected a leased IP")
	}
}

func TestBringUpFallsBackToStatic(t *testing.T) {
	drv := &FakeMACDriver{LeaseAfterPolls: -1}
	var ticks int

	ip, err := BringUp(context.Background(), drv, BoardID{}, 2, 50*time.Millisecond, func() { ticks++ })
	if err != nil {
		t.Fatalf("BringUp: %v", err)
	}
	if !ip.Equal(StaticFallback.IP) {
		t.Fatalf("expected static fallback IP, got %s", ip)
	}
	if ticks == 0 {
		t.Fatalf("expected onTick to be called while polling")
	}
	if !drv.static.Equal(StaticFallback.IP) {
		t.Fatalf("expected SetStatic to be called with the fallback IP")
	}
}

func TestBringUpRespectsContextCancellation(t *testing.T) {
	drv := &FakeMACDriver{LeaseAfterPolls: -1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ip, err := BringUp(ctx, drv, BoardID{}, 3, time.Second, nil)
	// A cancelled context still lets the static fallback apply once
	// every DHCP attempt has given up.
	if err != nil && ip == nil {
		return
	}
	if !ip.Equal(StaticFallback.IP) {
		t.Fatalf("expected static fallback IP on cancelled context, got %s, err=%v", ip, err)
	}
}
