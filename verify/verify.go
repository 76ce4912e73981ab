// Package verify checks a staged download-slot image against a
// previously stored digest.
//
// The SHA-256 primitive itself is an external collaborator: this
// package only ever calls it through the Hasher interface, so a caller
// on hardware with a dedicated SHA engine can substitute their own
// implementation without touching this package.
package verify

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/fotaboot/pfb/flash"
)

// Hasher computes a SHA-256 digest over everything read from r.
type Hasher interface {
	Sum256(r io.Reader) ([32]byte, error)
}

// DefaultHasher is the stdlib-backed Hasher used when no other
// implementation is supplied.
type DefaultHasher struct{}

func (DefaultHasher) Sum256(r io.Reader) ([32]byte, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return [32]byte{}, err
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// deviceReader streams length bytes from dev starting at base, in
// flash.AlignSize chunks, without loading the whole image into memory
// at once.
type deviceReader struct {
	dev     flash.Device
	addr    uint32
	remain  uint32
	scratch []byte
}

func newDeviceReader(dev flash.Device, base, length uint32) *deviceReader {
	return &deviceReader{dev: dev, addr: base, remain: length, scratch: make([]byte, flash.AlignSize)}
}

func (r *deviceReader) Read(p []byte) (int, error) {
	if r.remain == 0 {
		return 0, io.EOF
	}

	chunk := uint32(len(p))
	if chunk > uint32(len(r.scratch)) {
		chunk = uint32(len(r.scratch))
	}
	if chunk > r.remain {
		chunk = r.remain
	}

	if err := r.dev.Read(r.addr, r.scratch[:chunk]); err != nil {
		return 0, err
	}
	n := copy(p, r.scratch[:chunk])
	r.addr += uint32(n)
	r.remain -= uint32(n)
	return n, nil
}

// Check computes the digest over the first length bytes of dev
// starting at downloadBase and reports whether it matches digest.
func Check(dev flash.Device, downloadBase, length uint32, digest [32]byte, h Hasher) (bool, error) {
	if h == nil {
		h = DefaultHasher{}
	}

	sum, err := h.Sum256(newDeviceReader(dev, downloadBase, length))
	if err != nil {
		return false, fmt.Errorf("verify: hashing download slot: %w", err)
	}

	return sum == digest, nil
}
