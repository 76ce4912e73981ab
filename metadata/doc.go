// Package metadata implements the bootloader's persisted state: three
// armed-update flags, the swap size and the staged image digest, stored
// as a single record in one flash sector.
//
// # Usage
//
//	store := metadata.New(dev, infoSectorBase)
//	rec, err := store.Get()
//	if rec.ShouldRollback {
//	    // ...
//	}
//	err = store.MarkShouldNotRollback() // application commit
//
// Every setter is a whole-sector read-modify-erase-program; the erased
// state of flash (all 0xFF) decodes to an all-false Record, so a
// never-written INFO sector boots as a fresh device.
package metadata
