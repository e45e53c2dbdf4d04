package hm3301

import (
	"errors"
	"fmt"
	"testing"
)

type transaction struct {
	addr uint16
	data []byte
}

// fakeBus records writes and answers reads with frame
type fakeBus struct {
	writes   []transaction
	reads    []uint16
	frame    [HM3301FRAMESIZE]byte
	writeErr error
	readErr  error
}

func (p *fakeBus) Write(addr uint16, w []byte) error {
	p.writes = append(p.writes, transaction{addr: addr, data: append([]byte{}, w...)})
	return p.writeErr
}

func (p *fakeBus) Read(addr uint16, r []byte) error {
	p.reads = append(p.reads, addr)
	if p.readErr != nil {
		return p.readErr
	}
	copy(r, p.frame[:])
	return nil
}

// Only write capability
type writeOnlyBus struct {
	n int
}

func (p *writeOnlyBus) Write(addr uint16, w []byte) error {
	p.n++
	return nil
}

func TestNew(t *testing.T) {
	bus := &fakeBus{}
	dev := New(bus)
	if dev.Address() != 0x40 {
		t.Errorf("Invalid default address 0x%X", dev.Address())
	}
	if len(bus.writes) != 0 || len(bus.reads) != 0 {
		t.Errorf("constructor did bus transactions")
	}
	if dev.Bus() != bus {
		t.Errorf("bus not stored")
	}
}

func TestNewAt(t *testing.T) {
	dev, err := NewAt(&fakeBus{}, 0x41)
	if err != nil || dev.Address() != 0x41 {
		t.Errorf("NewAt 0x41 %v", err)
	}
	_, err = NewAt(&fakeBus{}, 0x80)
	if !errors.Is(err, ErrInvalidInputData) {
		t.Errorf("out of range address err=%v", err)
	}
}

func TestEnableI2C(t *testing.T) {
	bus := &fakeBus{}
	dev := New(bus)
	if err := EnableI2C(dev); err != nil {
		t.Fatalf("enable err %v", err)
	}
	if len(bus.writes) != 1 {
		t.Fatalf("expected one write, got %v", len(bus.writes))
	}
	tx := bus.writes[0]
	if tx.addr != 0x40 || len(tx.data) != 1 || tx.data[0] != 0x88 {
		t.Errorf("Invalid write %#v", tx)
	}

	// Idempotent
	if err := EnableI2C(dev); err != nil {
		t.Fatalf("second enable err %v", err)
	}
	if len(bus.writes) != 2 || bus.writes[1].data[0] != 0x88 {
		t.Errorf("second write %#v", bus.writes)
	}

	wo := &writeOnlyBus{}
	if err := EnableI2C(New(wo)); err != nil || wo.n != 1 {
		t.Errorf("write only bus n=%v err=%v", wo.n, err)
	}
}

func TestEnableI2CErrors(t *testing.T) {
	nack := errors.New("nack")
	dev := New(&fakeBus{writeErr: nack})
	err := EnableI2C(dev)
	if !IsTransport(err) || !errors.Is(err, nack) {
		t.Errorf("transport error not wrapped %v", err)
	}

	dev = New(&fakeBus{writeErr: fmt.Errorf("bus busy: %w", ErrWouldBlock)})
	err = EnableI2C(dev)
	if !errors.Is(err, ErrWouldBlock) {
		t.Errorf("would block lost %v", err)
	}
	var herr *Error
	if !errors.As(err, &herr) || herr.Kind != KindTransport {
		t.Errorf("would block outside error taxonomy %#v", err)
	}
}

func TestReadMeasurement(t *testing.T) {
	bus := &fakeBus{frame: knownFrame()}
	dev := New(bus)
	meas, err := ReadMeasurement(dev)
	if err != nil {
		t.Fatalf("read err %v", err)
	}
	if meas.NumSensor != 1 || meas.StdPM10 != 4 || meas.AtmPM10 != 7 {
		t.Errorf("Invalid measurement %#v", meas)
	}
	if len(bus.reads) != 1 || bus.reads[0] != 0x40 {
		t.Errorf("Invalid reads %#v", bus.reads)
	}
	if len(bus.writes) != 0 {
		t.Errorf("read did writes")
	}
}

func TestReadMeasurementTransportError(t *testing.T) {
	nack := errors.New("nack")
	// Checksum would also fail on zero frame, transport error must win
	bus := &fakeBus{readErr: nack}
	_, err := ReadMeasurement(New(bus))
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !errors.Is(err, nack) {
		t.Errorf("cause lost %v", err)
	}
	if errors.Is(err, ErrChecksumFailed) {
		t.Errorf("checksum validated after failed read")
	}
	var herr *Error
	if !errors.As(err, &herr) || herr.Kind != KindTransport || herr.Unwrap() != nack {
		t.Errorf("Invalid error %#v", herr)
	}
}

func TestReadMeasurementChecksum(t *testing.T) {
	frame := knownFrame()
	frame[HM3301CHECKSUMINDEX] = 0x7B
	_, err := ReadMeasurement(New(&fakeBus{frame: frame}))
	if !errors.Is(err, ErrChecksumFailed) {
		t.Errorf("expected checksum failure %v", err)
	}
	if errors.Is(err, ErrInvalidInputData) {
		t.Errorf("kinds mixed")
	}
}
