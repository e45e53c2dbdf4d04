/*
Prometheus exporter for HM3301 sensors

Sensors are listed in yaml file (see config.go). Each read interval every sensor is read once,
transient bus errors are retried
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"hm3301"
	"hm3301/hm3301sim"
)

// CLI args
var (
	listenAddr = flag.String("listen-address", ":8080", "The address to listen on for HTTP requests.")
	configFile = flag.String("config", "hm3301.yaml", "sensor configuration file")
	debug      = flag.Bool("debug", false, "log every reading")
)

func init() {
	formatter := &log.TextFormatter{
		FullTimestamp: true,
	}
	log.SetFormatter(formatter)
}

type busKey struct {
	periph bool
	name   string
}

// Sensors on same bus share one bus handle
func buildExporter(cfg *Config, reg prometheus.Registerer) (*Exporter, func(), error) {
	exp := NewExporter(reg, cfg.Retries)
	buses := make(map[busKey]hm3301.Bus)
	closers := []func() error{}
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warnf("closing bus: %s", err)
			}
		}
	}

	for _, sc := range cfg.Sensors {
		if sc.Simulated {
			sim := hm3301sim.InitSimSensor(1)
			m := sim.Model()
			m.Address = sc.Address
			m.StdPM25 = hm3301sim.SignalModel{Offset: 12, Noise: 2}
			m.AtmPM25 = hm3301sim.SignalModel{Offset: 10, Noise: 2}
			sim.SetModel(m)
			dev, err := hm3301.NewAt[hm3301.Bus](sim, sc.Address)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			exp.AddSensor(sc.Label, dev, sim)
			continue
		}

		key := busKey{periph: sc.Periph, name: sc.Bus}
		bus, ok := buses[key]
		if !ok {
			var closer func() error
			var err error
			if sc.Periph {
				conn, busCloser, errPeriph := hm3301.OpenPeriph(sc.Bus)
				bus, err = conn, errPeriph
				if errPeriph == nil {
					closer = busCloser.Close
				}
			} else {
				bus, closer, err = openLinuxBus(sc.Bus)
			}
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			buses[key] = bus
			closers = append(closers, closer)
		}
		dev, err := hm3301.NewAt(bus, sc.Address)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		exp.AddSensor(sc.Label, dev, nil)
	}
	return exp, closeAll, nil
}

func main() {
	flag.Parse()
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := Load(*configFile)
	if err != nil {
		log.Fatalf("config load failed: %s", err)
	}
	if err := Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %s", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewBuildInfoCollector(), collectors.NewGoCollector())

	exp, closeBuses, err := buildExporter(cfg, reg)
	if err != nil {
		log.Fatalf("opening sensors failed: %s", err)
	}
	defer closeBuses()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("listening on %s", *listenAddr)
		log.Panic(http.ListenAndServe(*listenAddr, NewRouter(exp, reg)))
	}()

	log.Infof("reading %d sensors every %s", len(cfg.Sensors), cfg.ReadInterval)
	exp.Run(ctx, cfg.ReadInterval)
	log.Infof("stopped")
}
