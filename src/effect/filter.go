package effect

import (
	"encoding/json"
	"math"
)

// ----- Filter ----- //

// Filter is a one-pole low-pass.
type Filter struct {
	Cutoff float64 // Hz
	// Resonance is kept for the control surface but does not affect the
	// first-order recursion.
	Resonance  float64
	Mix        float64
	prevOutput float64
}

// NewFilter ...
func NewFilter(cutoff float64, resonance float64, mix float64) *Filter {
	return &Filter{Cutoff: cutoff, Resonance: resonance, Mix: mix}
}

// Kind ...
func (f *Filter) Kind() Kind { return KindFilter }

// Process ...
func (f *Filter) Process(in float64, sampleRate float64) float64 {
	w := 2 * math.Pi * f.Cutoff / sampleRate
	alpha := w / (1 + w)
	out := f.prevOutput + alpha*(in-f.prevOutput)
	f.prevOutput = out
	return blend(in, out, f.Mix)
}

// Reset ...
func (f *Filter) Reset() {
	f.prevOutput = 0
}

func (f *Filter) set(key string, value string) error {
	switch key {
	case "cutoff":
		return parseFloat(value, &f.Cutoff)
	case "resonance":
		return parseFloat(value, &f.Resonance)
	case "mix":
		return parseFloat(value, &f.Mix)
	}
	return errUnknownKey(key)
}

type filterJSON struct {
	Kind      string  `json:"kind"`
	Cutoff    float64 `json:"cutoff"`
	Resonance float64 `json:"resonance"`
	Mix       float64 `json:"mix"`
}

func (f *Filter) toJSON() json.RawMessage {
	return toRawMessage(&filterJSON{
		Kind:      f.Kind().String(),
		Cutoff:    f.Cutoff,
		Resonance: f.Resonance,
		Mix:       f.Mix,
	})
}
