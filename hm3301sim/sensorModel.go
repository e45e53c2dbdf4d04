/*
Sensor model

Simulated HM3301 that sits on Bus interface. Used in tests and when there is no hardware.
Model is manipulated by user while running (see Handler)

It is important to notice that simulated sensor accepts all transactions "ok".
It just acts as faulty sensor (or bus) when needed.
*/

package hm3301sim

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"hm3301"
)

type SimSensor struct {
	mu     sync.Mutex
	model  SensorModel
	status SensorModelStatus
	Now    func() time.Time //Replace in tests
}

func InitSimSensor(numSensor uint16) *SimSensor {
	return &SimSensor{
		model: SensorModel{
			Address:      hm3301.HM3301DEFAULTADDR,
			NumSensor:    numSensor,
			Connectivity: ConnectivityModel{Connected: true},
		},
		Now: time.Now,
	}
}

// Separate settings and status
type SensorModelStatus struct {
	I2CMode      bool               `json:"i2cMode"`      //select command received
	WriteCounter int                `json:"writeCounter"` //- transaction counters
	ReadCounter  int                `json:"readCounter"`
	LastFrame    hm3301.Measurement `json:"lastFrame"`
}

type SensorModel struct {
	Address      uint16            `json:"address"`
	NumSensor    uint16            `json:"numSensor"`
	StdPM1       SignalModel       `json:"stdPm1"`
	StdPM25      SignalModel       `json:"stdPm25"`
	StdPM10      SignalModel       `json:"stdPm10"`
	AtmPM1       SignalModel       `json:"atmPm1"`
	AtmPM25      SignalModel       `json:"atmPm25"`
	AtmPM10      SignalModel       `json:"atmPm10"`
	Connectivity ConnectivityModel `json:"connectivity"` //Allow simulate communication conditions
}

type ConnectivityModel struct {
	Connected     bool `json:"connected"`     //false = nobody acks the address
	InvalidCRC    bool `json:"invalidCRC"`    //Wrong checksum byte, easy test
	Busy          bool `json:"busy"`          //writes would block
	RequireSelect bool `json:"requireSelect"` //reads fail until select command is written
}

type SignalModel struct {
	Noise     float64 `json:"noise"` //in range [value-noise, value+noise]
	Offset    float64 `json:"offset"`
	Period    int64   `json:"period"`    //In milliseconds, sine period
	Phase     int64   `json:"phase"`     //In milliseconds.
	Amplitude float64 `json:"amplitude"` // offset-amplitude to offset+amplitude
}

func (p *SignalModel) Calc(t time.Time) uint16 {
	wave := 0.0
	if p.Period != 0 {
		ms := t.UnixNano() / (1000 * 1000)
		angle := 2.0 * math.Pi * float64((ms+p.Phase)%p.Period) / float64(p.Period)
		wave = math.Sin(angle) * p.Amplitude
	}
	noise := 0.0
	if p.Noise != 0 {
		noise = (rand.Float64()*2.0 - 1.0) * p.Noise
	}
	return uint16(math.Min(math.MaxUint16, math.Max(0, math.Round(noise+wave+p.Offset))))
}

func (p *SimSensor) Model() SensorModel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model
}

func (p *SimSensor) SetModel(m SensorModel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.model = m
}

func (p *SimSensor) Status() SensorModelStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *SimSensor) sample(t time.Time) hm3301.Measurement {
	m := &p.model
	return hm3301.Measurement{
		NumSensor: m.NumSensor,
		StdPM1:    m.StdPM1.Calc(t),
		StdPM25:   m.StdPM25.Calc(t),
		StdPM10:   m.StdPM10.Calc(t),
		AtmPM1:    m.AtmPM1.Calc(t),
		AtmPM25:   m.AtmPM25.Calc(t),
		AtmPM10:   m.AtmPM10.Calc(t),
	}
}

func (p *SimSensor) Write(addr uint16, w []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if addr != p.model.Address || !p.model.Connectivity.Connected {
		return fmt.Errorf("no ack from 0x%02X", addr)
	}
	if p.model.Connectivity.Busy {
		return hm3301.ErrWouldBlock
	}
	p.status.WriteCounter++
	if len(w) == 1 && w[0] == hm3301.HM3301SELECTI2C {
		p.status.I2CMode = true
		return nil
	}
	return fmt.Errorf("simulator understands only select command 0x%X, got %X", hm3301.HM3301SELECTI2C, w)
}

func (p *SimSensor) Read(addr uint16, r []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if addr != p.model.Address || !p.model.Connectivity.Connected {
		return fmt.Errorf("no ack from 0x%02X", addr)
	}
	if p.model.Connectivity.RequireSelect && !p.status.I2CMode {
		return fmt.Errorf("sensor 0x%02X not in I2C mode", addr)
	}
	p.status.ReadCounter++
	meas := p.sample(p.Now())
	p.status.LastFrame = meas
	frame := p.model.Connectivity.TrashSignal(hm3301.EncodeFrame(meas))
	copy(r, frame[:])
	return nil
}

// Trash signal only if needed
func (p *ConnectivityModel) TrashSignal(frame [hm3301.HM3301FRAMESIZE]byte) [hm3301.HM3301FRAMESIZE]byte {
	if p.InvalidCRC {
		frame[hm3301.HM3301CHECKSUMINDEX] += 1
	}
	return frame
}
