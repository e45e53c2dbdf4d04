/*
HM3301 laser PM2.5 sensor on I2C bus

Sensor starts in stand alone (UART) mode. EnableI2C selects bus mode, after that
every 29 byte read returns latest frame.

Dev is not safe for concurrent use. One bus transaction at time, serialize calls on caller side
*/
package hm3301

const (
	HM3301DEFAULTADDR = 0x40
	HM3301SELECTI2C   = 0x88 //select I2C mode command
	HM3301MAXADDR     = 0x7F //7bit addressing
)

// Dev is handle to one sensor. Operations available depend on bus capabilities,
// see EnableI2C and ReadMeasurement
type Dev[B any] struct {
	bus     B
	address uint16
}

// New uses default address. Does not touch bus
func New[B any](bus B) *Dev[B] {
	return &Dev[B]{bus: bus, address: HM3301DEFAULTADDR}
}

// NewAt is for sensor behind address translator etc.
func NewAt[B any](bus B, addr uint16) (*Dev[B], error) {
	if HM3301MAXADDR < addr {
		return nil, invalidInput("address 0x%X is not 7bit", addr)
	}
	return &Dev[B]{bus: bus, address: addr}, nil
}

func (p *Dev[B]) Address() uint16 {
	return p.address
}

func (p *Dev[B]) Bus() B {
	return p.bus
}

/*
EnableI2C writes select command. Safe to call again, sensor stays in I2C mode.
Every write failure is KindTransport. Busy bus still matches errors.Is(err, ErrWouldBlock)
so caller can try again
*/
func EnableI2C[B Writer](p *Dev[B]) error {
	payload := [1]byte{HM3301SELECTI2C}
	if err := p.bus.Write(p.address, payload[:]); err != nil {
		return transportError(err)
	}
	return nil
}

// ReadMeasurement does one read transaction and decodes frame. No retries here
func ReadMeasurement[B Reader](p *Dev[B]) (Measurement, error) {
	var frame [HM3301FRAMESIZE]byte
	if err := p.bus.Read(p.address, frame[:]); err != nil {
		return Measurement{}, transportError(err)
	}
	return parseFrame(&frame, wireOrder)
}
