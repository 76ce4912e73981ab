package metadata

import "encoding/binary"

// marker is written at the start of a valid record. The erased state of
// NOR flash reads back as all 0xFF, so an erased INFO sector decodes as
// "no record yet" rather than as a record with every bit set.
const marker = 0x50464221 // ASCII "PFB!" read as a big-endian word; stored little-endian

const erasedMarker = 0xFFFFFFFF

const (
	flagHasNewFirmware = 1 << 0
	flagAfterRollback  = 1 << 1
	flagShouldRollback = 1 << 2
)

// recordSize is the on-flash footprint of a Record: marker(4) +
// flags(1) + swapSize(4) + digest(32).
const recordSize = 4 + 1 + 4 + 32

// Record is the bootloader's persisted metadata. At most one of
// HasNewFirmware and AfterRollback is meaningfully observed at a time;
// together with ShouldRollback they form the armed-update state
// machine the boot decision core reads.
type Record struct {
	HasNewFirmware bool
	AfterRollback  bool
	ShouldRollback bool
	SwapSize       uint32
	Digest         [32]byte
}

// encode serializes r into buf, which must be at least recordSize
// bytes. Unused trailing bytes are left untouched so callers can pass a
// larger, 0xFF-filled program buffer.
func (r Record) encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], marker)

	var flags byte
	if r.HasNewFirmware {
		flags |= flagHasNewFirmware
	}
	if r.AfterRollback {
		flags |= flagAfterRollback
	}
	if r.ShouldRollback {
		flags |= flagShouldRollback
	}
	buf[4] = flags

	binary.LittleEndian.PutUint32(buf[5:9], r.SwapSize)
	copy(buf[9:9+32], r.Digest[:])
}

// decode reconstructs a Record from buf. A marker that isn't exactly
// the expected magic (including the erased 0xFFFFFFFF and any
// partially-programmed or corrupted value) decodes to the all-false
// zero Record: a corrupted record is treated the same as no record.
func decode(buf []byte) Record {
	m := binary.LittleEndian.Uint32(buf[0:4])
	if m != marker {
		return Record{}
	}

	flags := buf[4]
	r := Record{
		HasNewFirmware: flags&flagHasNewFirmware != 0,
		AfterRollback:  flags&flagAfterRollback != 0,
		ShouldRollback: flags&flagShouldRollback != 0,
		SwapSize:       binary.LittleEndian.Uint32(buf[5:9]),
	}
	copy(r.Digest[:], buf[9:9+32])
	return r
}
