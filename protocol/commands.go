package protocol

import "fmt"

// EncodeAddress returns the 24-bit big-endian wire form of addr.
// Bits above the 24-bit address space are discarded.
func EncodeAddress(addr uint32) [AddressBytes]byte {
	return [AddressBytes]byte{
		byte(addr >> 16),
		byte(addr >> 8),
		byte(addr),
	}
}

// DecodeAddress is the inverse of EncodeAddress.
func DecodeAddress(b []byte) (uint32, error) {
	if len(b) != AddressBytes {
		return 0, fmt.Errorf("address must be exactly %d bytes, got %d", AddressBytes, len(b))
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// buildAddressedCmd constructs [OPCODE][A23..16][A15..8][A7..0].
func buildAddressedCmd(opcode byte, addr uint32) []byte {
	a := EncodeAddress(addr)
	return []byte{opcode, a[0], a[1], a[2]}
}

// BuildReadCmd constructs the byte sequence for a low-frequency array read.
//
// Sequence:
//
//	[0x03][A23..16][A15..8][A7..0]
func BuildReadCmd(addr uint32) []byte {
	return buildAddressedCmd(CmdArrayReadLowFreq, addr)
}

// BuildBlockErase32KCmd constructs the byte sequence for a 32 KiB block erase.
// The write enable latch must be set beforehand.
//
// Sequence:
//
//	[0x52][A23..16][A15..8][A7..0]
func BuildBlockErase32KCmd(addr uint32) []byte {
	return buildAddressedCmd(CmdBlockErase32K, addr)
}

// BuildStatusWriteCmd constructs the byte sequence writing status.
// Writing zero performs a global unprotect.
func BuildStatusWriteCmd(status byte) []byte {
	return []byte{CmdStatusWrite, status}
}

// BlockEraseCount returns how many 32 KiB block erases cover [0, length).
func BlockEraseCount(length uint32) uint32 {
	return uint32((uint64(length) + BlockSize32K - 1) / BlockSize32K)
}

// BlockEraseAddresses returns the start address of each 32 KiB block covering [0, length).
func BlockEraseAddresses(length uint32) []uint32 {
	n := BlockEraseCount(length)
	addrs := make([]uint32, 0, n)
	for i := uint32(0); i < n; i++ {
		addrs = append(addrs, i*BlockSize32K)
	}
	return addrs
}
