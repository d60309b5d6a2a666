package protocol

// Command opcodes for Adesto/Macronix compatible serial NOR flash.
const (
	// CmdStatusWrite writes the status register (clears block protection when 0)
	CmdStatusWrite = 0x01

	// CmdArrayReadLowFreq reads the array without dummy cycles
	CmdArrayReadLowFreq = 0x03

	// CmdStatusRead reads the status register
	CmdStatusRead = 0x05

	// CmdWriteEnable sets the write enable latch
	CmdWriteEnable = 0x06

	// CmdBlockErase32K erases one 32 KiB block
	CmdBlockErase32K = 0x52

	// CmdJEDECID reads manufacturer and device identification
	CmdJEDECID = 0x9F
)

// Status register bits.
const (
	// StatusBusy is set while a program or erase cycle is in progress
	StatusBusy = 0x01

	// StatusWriteEnabled is the write enable latch
	StatusWriteEnabled = 0x02
)

// Manufacturer IDs.
const (
	ManufacturerAdesto   = 0x1F
	ManufacturerMacronix = 0xC2
)

// Device IDs as returned by the JEDEC ID query.
const (
	DeviceAT25XE011  = 0x4200
	DeviceAT25DF041B = 0x4402
	DeviceMX25R8035F = 0x14
)

// Geometry and addressing.
const (
	// BlockSize32K is the erase granularity used when discarding an image
	BlockSize32K = 0x8000

	// AddressBytes is the number of address bytes following an opcode
	AddressBytes = 3

	// AddressMask limits addresses to the 24-bit address space
	AddressMask = 0xFFFFFF

	// JEDECIDResponseSize is the number of bytes returned by CmdJEDECID
	JEDECIDResponseSize = 3
)

// DummyByte is clocked out while reading data from the chip.
const DummyByte = 0x00

// DefaultMaxBusyPolls bounds the status polling loop before a timeout is reported.
// A 32 KiB block erase takes well under a second on supported parts.
const DefaultMaxBusyPolls = 100000
