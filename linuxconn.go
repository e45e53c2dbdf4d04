//go:build linux && !tinygo

package hm3301

import (
	"fmt"

	"github.com/hjkoskel/listserialports"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// linux/i2c-dev.h, not exported by x/sys
const i2cSlave = 0x0703

// LinuxConn is /dev/i2c-N character device. Implements Bus
type LinuxConn struct {
	fd         int
	deviceName string
	slaveAddr  int //what was set with I2C_SLAVE ioctl, -1 = nothing yet
}

/*
CreateLinuxI2C opens i2c-dev node. Bus speed etc. are set by kernel/device tree

exclusive=true refuses to open if other process has bus open (same check as with serial ports)
*/
func CreateLinuxI2C(deviceName string, exclusive bool) (*LinuxConn, error) {
	if exclusive {
		portUsedByPids, _, errPortDetect := listserialports.FileIsInUseByPids(deviceName)
		if errPortDetect != nil {
			return nil, errors.Wrapf(errPortDetect, "i2c device %v usage check", deviceName)
		}
		if 0 < len(portUsedByPids) {
			return nil, fmt.Errorf("i2c device %v is in use (by PID %#v)", deviceName, portUsedByPids)
		}
	}

	fd, errOpen := unix.Open(deviceName, unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if errOpen != nil {
		return nil, errors.Wrapf(errOpen, "i2c device %v open error", deviceName)
	}
	return &LinuxConn{fd: fd, deviceName: deviceName, slaveAddr: -1}, nil
}

func (p *LinuxConn) String() string {
	return p.deviceName
}

func (p *LinuxConn) Close() error {
	return unix.Close(p.fd)
}

func (p *LinuxConn) selectAddr(addr uint16) error {
	if int(addr) == p.slaveAddr {
		return nil
	}
	if err := unix.IoctlSetInt(p.fd, i2cSlave, int(addr)); err != nil {
		return errors.Wrapf(err, "I2C_SLAVE 0x%02X on %v", addr, p.deviceName)
	}
	p.slaveAddr = int(addr)
	return nil
}

func (p *LinuxConn) Write(addr uint16, w []byte) error {
	if err := p.selectAddr(addr); err != nil {
		return err
	}
	n, err := unix.Write(p.fd, w)
	if err != nil {
		if err == unix.EAGAIN {
			return ErrWouldBlock
		}
		return errors.Wrapf(err, "write to 0x%02X", addr)
	}
	if n != len(w) {
		return fmt.Errorf("was not able to write all in one call %v out of %v", n, len(w))
	}
	return nil
}

func (p *LinuxConn) Read(addr uint16, r []byte) error {
	if err := p.selectAddr(addr); err != nil {
		return err
	}
	n, err := unix.Read(p.fd, r)
	if err != nil {
		return errors.Wrapf(err, "read from 0x%02X", addr)
	}
	if n != len(r) {
		return fmt.Errorf("short read %v out of %v bytes", n, len(r))
	}
	return nil
}
