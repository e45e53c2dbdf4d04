package hm3301sim

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"hm3301"
)

/*
Handler serves simulator state for UI or scripts

	GET  /status  counters and last frame
	GET  /model   current model
	POST /model   replace model
*/
func (p *SimSensor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, p.Status())
	}).Methods(http.MethodGet)

	r.HandleFunc("/model", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, p.Model())
	}).Methods(http.MethodGet)

	r.HandleFunc("/model", func(w http.ResponseWriter, r *http.Request) {
		postbody, errRead := io.ReadAll(r.Body)
		if errRead != nil {
			http.Error(w, fmt.Sprintf("Reading POST request failed %v", errRead.Error()), http.StatusBadRequest)
			return
		}
		mod := SensorModel{}
		errMarsh := json.Unmarshal(postbody, &mod)
		if errMarsh != nil {
			http.Error(w, fmt.Sprintf("Invalid payload %v", errMarsh.Error()), http.StatusBadRequest)
			return
		}
		if hm3301.HM3301MAXADDR < mod.Address {
			http.Error(w, fmt.Sprintf("Invalid address 0x%X", mod.Address), http.StatusBadRequest)
			return
		}
		p.SetModel(mod)
		writeJSON(w, mod)
	}).Methods(http.MethodPost)

	return r
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}
