package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

/*
NewRouter

	/metrics            prometheus
	/measurements       latest readings as JSON
	/sim/{label}/...    simulator model and status for simulated sensors
*/
func NewRouter(exp *Exporter, gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		// Opt into OpenMetrics to support exemplars.
		EnableOpenMetrics: true,
	}))

	r.HandleFunc("/measurements", func(w http.ResponseWriter, r *http.Request) {
		b, err := json.Marshal(exp.Latest())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
	}).Methods(http.MethodGet)

	for _, s := range exp.sensors {
		if s.sim == nil {
			continue
		}
		prefix := "/sim/" + s.label
		r.PathPrefix(prefix + "/").Handler(http.StripPrefix(prefix, s.sim.Handler()))
	}
	return r
}
