package hm3301

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// PeriphConn adapts periph.io bus. Works where periph has host driver (not only linux)
type PeriphConn struct {
	Bus i2c.Bus
}

func (p *PeriphConn) Write(addr uint16, w []byte) error {
	return p.Bus.Tx(addr, w, nil)
}

func (p *PeriphConn) Read(addr uint16, r []byte) error {
	return p.Bus.Tx(addr, nil, r)
}

/*
OpenPeriph initializes periph host drivers and opens bus by name.
Empty name is first bus available. Close returned closer when done
*/
func OpenPeriph(name string) (*PeriphConn, i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, errors.Wrap(err, "periph host init")
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening i2c bus %q", name)
	}
	return &PeriphConn{Bus: bus}, bus, nil
}
