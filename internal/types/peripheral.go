package types

// Device is anything that can be attached to the data bus. It
// occupies the inclusive address range [FirstAddress, LastAddress].
type Device interface {
	FirstAddress() uint16
	LastAddress() uint16
}

// Reader is a Device that responds to reads.
type Reader interface {
	Device
	Read(address uint16) uint8
}

// Writer is a Device that responds to writes.
type Writer interface {
	Device
	Write(address uint16, value uint8)
}

// ReadWriter is a Device that responds to both reads and writes,
// such as RAM.
type ReadWriter interface {
	Reader
	Writer
}
