package main

import (
	"context"
	"errors"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"hm3301"
	"hm3301/hm3301sim"
)

type sensor struct {
	label string
	dev   *hm3301.Dev[hm3301.Bus]
	sim   *hm3301sim.SimSensor //nil if real hardware
}

// Exporter owns sensors. Reads are serialized, buses are shared between sensors
type Exporter struct {
	sensors []sensor
	retries int
	pause   time.Duration //between retries

	gaugePM        *prometheus.GaugeVec
	gaugeNumSensor *prometheus.GaugeVec
	counterErrors  *prometheus.CounterVec

	mu     sync.Mutex
	latest map[string]Reading
}

type Reading struct {
	Time        time.Time          `json:"time"`
	Measurement hm3301.Measurement `json:"measurement"`
}

func NewExporter(reg prometheus.Registerer, retries int) *Exporter {
	p := &Exporter{
		retries: retries,
		pause:   100 * time.Millisecond,
		gaugePM: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hm3301_particulate",
			Help: "Particulate concentration register (raw, particles per deciliter)",
		}, []string{"sensor", "curve", "size"}),
		gaugeNumSensor: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hm3301_sensor_number",
			Help: "Sensor number reported in frame",
		}, []string{"sensor"}),
		counterErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hm3301_read_errors_total",
			Help: "Failed read attempts by error kind",
		}, []string{"sensor", "kind"}),
		latest: make(map[string]Reading),
	}
	reg.MustRegister(p.gaugePM, p.gaugeNumSensor, p.counterErrors)
	return p
}

func (p *Exporter) AddSensor(label string, dev *hm3301.Dev[hm3301.Bus], sim *hm3301sim.SimSensor) {
	p.sensors = append(p.sensors, sensor{label: label, dev: dev, sim: sim})
}

// EnableAll selects I2C mode on every sensor. Failing sensor is logged, not fatal
func (p *Exporter) EnableAll() {
	for _, s := range p.sensors {
		err := p.retry(s, func() error { return hm3301.EnableI2C(s.dev) })
		if err != nil {
			log.Errorf("sensor %s: selecting I2C mode failed: %s", s.label, err)
			continue
		}
		log.Infof("sensor %s at 0x%02X in I2C mode", s.label, s.dev.Address())
	}
}

func (p *Exporter) retry(s sensor, f func() error) error {
	var lastErr error
	for i := 0; i < p.retries; i++ {
		lastErr = f()
		if lastErr == nil {
			return nil
		}
		p.counterErrors.WithLabelValues(s.label, errorKind(lastErr)).Inc()
		if i+1 < p.retries {
			log.Warnf("sensor %s: retrying error: %s", s.label, lastErr)
			time.Sleep(p.pause)
		}
	}
	return pkgerrors.Wrap(lastErr, "all retries failed")
}

func errorKind(err error) string {
	if errors.Is(err, hm3301.ErrWouldBlock) {
		return "would block"
	}
	var herr *hm3301.Error
	if errors.As(err, &herr) {
		return herr.Kind.String()
	}
	return "unknown"
}

// ReadAll reads every sensor once and updates metrics
func (p *Exporter) ReadAll() {
	for _, s := range p.sensors {
		var meas hm3301.Measurement
		err := p.retry(s, func() error {
			var errRead error
			meas, errRead = hm3301.ReadMeasurement(s.dev)
			return errRead
		})
		if err != nil {
			log.Errorf("sensor %s: read failed: %s", s.label, err)
			p.forget(s.label)
			continue
		}
		log.Debugf("sensor %s: %v", s.label, meas)
		p.update(s.label, meas)
	}
}

func (p *Exporter) update(label string, meas hm3301.Measurement) {
	p.gaugeNumSensor.WithLabelValues(label).Set(float64(meas.NumSensor))
	set := func(curve string, size string, v uint16) {
		p.gaugePM.WithLabelValues(label, curve, size).Set(float64(v))
	}
	set("standard", "pm1", meas.StdPM1)
	set("standard", "pm2.5", meas.StdPM25)
	set("standard", "pm10", meas.StdPM10)
	set("atmospheric", "pm1", meas.AtmPM1)
	set("atmospheric", "pm2.5", meas.AtmPM25)
	set("atmospheric", "pm10", meas.AtmPM10)

	p.mu.Lock()
	p.latest[label] = Reading{Time: time.Now(), Measurement: meas}
	p.mu.Unlock()
}

// Failed sensor stops reporting instead of repeating stale values
func (p *Exporter) forget(label string) {
	p.gaugePM.DeletePartialMatch(prometheus.Labels{"sensor": label})
	p.gaugeNumSensor.DeleteLabelValues(label)
	p.mu.Lock()
	delete(p.latest, label)
	p.mu.Unlock()
}

func (p *Exporter) Latest() map[string]Reading {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make(map[string]Reading, len(p.latest))
	for k, v := range p.latest {
		result[k] = v
	}
	return result
}

func (p *Exporter) Run(ctx context.Context, interval time.Duration) {
	p.EnableAll()
	for {
		p.ReadAll()
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
