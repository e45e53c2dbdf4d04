package hm3301

import "fmt"

// Measurement is one validated frame. Raw register values, particles per deciliter.
type Measurement struct {
	NumSensor uint16 `json:"numSensor"`
	StdPM1    uint16 `json:"stdPm1"`
	StdPM25   uint16 `json:"stdPm25"`
	StdPM10   uint16 `json:"stdPm10"`
	AtmPM1    uint16 `json:"atmPm1"`
	AtmPM25   uint16 `json:"atmPm25"`
	AtmPM10   uint16 `json:"atmPm10"`
}

// Positional, same order as on wire
func measurementFromWords(w [HM3301DATAWORDS]uint16) Measurement {
	return Measurement{
		NumSensor: w[0],
		StdPM1:    w[1],
		StdPM25:   w[2],
		StdPM10:   w[3],
		AtmPM1:    w[4],
		AtmPM25:   w[5],
		AtmPM10:   w[6],
	}
}

func (p Measurement) words() [HM3301DATAWORDS]uint16 {
	return [HM3301DATAWORDS]uint16{p.NumSensor, p.StdPM1, p.StdPM25, p.StdPM10, p.AtmPM1, p.AtmPM25, p.AtmPM10}
}

// NOTICE: raw values, no unit conversion
func (p Measurement) ToString() string {
	return fmt.Sprintf("Sensor Number: %v\nStd PM 1: %v; Atm PM 1: %v\nStd PM 2.5: %v; Atm PM 2.5: %v\nStd PM 10: %v; Atm PM 10: %v",
		p.NumSensor,
		p.StdPM1, p.AtmPM1,
		p.StdPM25, p.AtmPM25,
		p.StdPM10, p.AtmPM10)
}

func (p Measurement) String() string {
	return p.ToString()
}

