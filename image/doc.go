// Package image implements the container that stages a firmware image in
// external flash, and its classification.
//
// # Layout
//
// Offsets are relative to external flash address 0:
//
//	0-2    "FLX" magic
//	3-5    reserved (opaque)
//	6      ':' separator
//	7-10   payload length, big-endian uint32
//	11     ':' separator
//	12..   raw binary payload
//
// # Classification
//
// ReadHeader pulls the header one byte at a time from a ByteReader (the
// flash transport) and Classify turns it into an Outcome:
//
//	h, err := image.ReadHeader(t)
//	out := image.Classify(h, dev.Capacity, region.AppSpace())
//	switch out.Kind {
//	case image.NoImage:      // leave flash untouched
//	case image.CorruptImage: // discard out.Length bytes
//	case image.ValidImage:   // program out.Length bytes, then discard
//	}
//
// # Building Images
//
// Build wraps a raw payload in a container; LoadHex converts an Intel HEX
// file into a payload first:
//
//	payload, err := image.LoadHex(f, 0x8000)
//	data := image.Build(payload, image.DefaultReserved)
package image
