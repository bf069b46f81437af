// Package serialization stores recorded tapes in the .adtp format.
//
//	Format Structure:
//	  [4 bytes: Magic "ADTP"]
//	  [4 bytes: Version (uint32 LE)]
//	  [32 bytes: SHA-256 of the body]
//	  [8 bytes: Body Size (uint64 LE)]
//	  [Body: canonical CBOR]
//
// The body holds the operator records, parameter pool, combined vector
// descriptors and the independent and dependent addresses. Reading checks
// the magic, version and checksum, then runs tape.Validate, so a loaded
// tape satisfies the same invariants as a freshly recorded one.
//
// Example usage:
//
//	if err := serialization.WriteFile("f.adtp", f.Tape()); err != nil {
//	    log.Fatal(err)
//	}
//	t, err := serialization.ReadFile("f.adtp")
package serialization
