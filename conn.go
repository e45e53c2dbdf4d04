/*
Bus capabilities

Transport is split by capability. A bus that can only write (or only read)
still gets the operations it can serve. Linux i2c-dev and periph.io adapters
are provided, simulator lives in hm3301sim
*/
package hm3301

import "errors"

// Writer writes w to the device at 7-bit address addr in one bus transaction.
type Writer interface {
	Write(addr uint16, w []byte) error
}

// Reader fills r from the device at 7-bit address addr in one bus transaction.
type Reader interface {
	Read(addr uint16, r []byte) error
}

// Bus is transport with both capabilities
type Bus interface {
	Writer
	Reader
}

// ErrWouldBlock is returned by non-blocking transports when the bus is busy.
// EnableI2C wraps it as KindTransport, errors.Is still finds it
var ErrWouldBlock = errors.New("hm3301: operation would block")
