package hm3301sim

import (
	"errors"
	"testing"
	"time"

	"hm3301"
)

func fixedSensor() *SimSensor {
	sim := InitSimSensor(0x0102)
	m := sim.Model()
	m.StdPM1 = SignalModel{Offset: 10}
	m.StdPM25 = SignalModel{Offset: 25}
	m.StdPM10 = SignalModel{Offset: 100}
	m.AtmPM1 = SignalModel{Offset: 11}
	m.AtmPM25 = SignalModel{Offset: 26}
	m.AtmPM10 = SignalModel{Offset: 101}
	sim.SetModel(m)
	sim.Now = func() time.Time { return time.Unix(1000, 0) }
	return sim
}

func TestSimReadThruDriver(t *testing.T) {
	sim := fixedSensor()
	dev := hm3301.New(sim)
	if err := hm3301.EnableI2C(dev); err != nil {
		t.Fatalf("enable err %v", err)
	}
	meas, err := hm3301.ReadMeasurement(dev)
	if err != nil {
		t.Fatalf("read err %v", err)
	}
	want := hm3301.Measurement{NumSensor: 0x0102, StdPM1: 10, StdPM25: 25, StdPM10: 100, AtmPM1: 11, AtmPM25: 26, AtmPM10: 101}
	if meas != want {
		t.Errorf("got %#v", meas)
	}
	status := sim.Status()
	if !status.I2CMode || status.WriteCounter != 1 || status.ReadCounter != 1 || status.LastFrame != want {
		t.Errorf("Invalid status %#v", status)
	}
}

func TestSimConnectivity(t *testing.T) {
	sim := fixedSensor()
	dev := hm3301.New(sim)

	m := sim.Model()
	m.Connectivity.InvalidCRC = true
	sim.SetModel(m)
	if _, err := hm3301.ReadMeasurement(dev); !errors.Is(err, hm3301.ErrChecksumFailed) {
		t.Errorf("invalid CRC err=%v", err)
	}

	m.Connectivity = ConnectivityModel{Connected: false}
	sim.SetModel(m)
	if _, err := hm3301.ReadMeasurement(dev); !hm3301.IsTransport(err) {
		t.Errorf("disconnected read err=%v", err)
	}
	if err := hm3301.EnableI2C(dev); !hm3301.IsTransport(err) {
		t.Errorf("disconnected write err=%v", err)
	}

	m.Connectivity = ConnectivityModel{Connected: true, Busy: true}
	sim.SetModel(m)
	if err := hm3301.EnableI2C(dev); !errors.Is(err, hm3301.ErrWouldBlock) || !hm3301.IsTransport(err) {
		t.Errorf("busy err=%v", err)
	}

	m.Connectivity = ConnectivityModel{Connected: true, RequireSelect: true}
	sim.SetModel(m)
	if _, err := hm3301.ReadMeasurement(dev); !hm3301.IsTransport(err) {
		t.Errorf("read before select err=%v", err)
	}
	if err := hm3301.EnableI2C(dev); err != nil {
		t.Fatal(err)
	}
	if _, err := hm3301.ReadMeasurement(dev); err != nil {
		t.Errorf("read after select err=%v", err)
	}
}

func TestSimWrongAddress(t *testing.T) {
	sim := fixedSensor()
	dev, err := hm3301.NewAt(sim, 0x41)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := hm3301.ReadMeasurement(dev); !hm3301.IsTransport(err) {
		t.Errorf("wrong address err=%v", err)
	}
	if err := sim.Write(hm3301.HM3301DEFAULTADDR, []byte{1, 2}); err == nil {
		t.Errorf("unknown command accepted")
	}
}

func TestSignalModel(t *testing.T) {
	tm := time.Unix(0, 0)
	sig := SignalModel{Offset: 50, Amplitude: 20, Period: 4000, Phase: 1000}
	// quarter period in: sin(pi/2) = 1
	if v := sig.Calc(tm); v != 70 {
		t.Errorf("sine peak %v", v)
	}
	sig = SignalModel{Offset: -5}
	if v := sig.Calc(tm); v != 0 {
		t.Errorf("negative not clamped %v", v)
	}
	sig = SignalModel{Offset: 100, Noise: 3}
	for i := 0; i < 100; i++ {
		v := sig.Calc(tm)
		if v < 97 || 103 < v {
			t.Fatalf("noise out of range %v", v)
		}
	}
}
