package effect

import (
	"encoding/json"
	"math"
)

// ----- Ring Modulator ----- //

// RingMod multiplies the input by a free running sine.
type RingMod struct {
	Frequency float64 // Hz
	Mix       float64
	phase     float64 // [0,1)
}

// NewRingMod ...
func NewRingMod(frequency float64, mix float64) *RingMod {
	return &RingMod{Frequency: frequency, Mix: mix}
}

// Kind ...
func (r *RingMod) Kind() Kind { return KindRingMod }

// Process ...
func (r *RingMod) Process(in float64, sampleRate float64) float64 {
	modulator := math.Sin(2 * math.Pi * r.phase)
	r.phase = wrap01(r.phase + r.Frequency/sampleRate)
	return blend(in, in*modulator, r.Mix)
}

// Reset ...
func (r *RingMod) Reset() {
	r.phase = 0
}

func (r *RingMod) set(key string, value string) error {
	switch key {
	case "frequency":
		return parseFloat(value, &r.Frequency)
	case "mix":
		return parseFloat(value, &r.Mix)
	}
	return errUnknownKey(key)
}

type ringModJSON struct {
	Kind      string  `json:"kind"`
	Frequency float64 `json:"frequency"`
	Mix       float64 `json:"mix"`
}

func (r *RingMod) toJSON() json.RawMessage {
	return toRawMessage(&ringModJSON{
		Kind:      r.Kind().String(),
		Frequency: r.Frequency,
		Mix:       r.Mix,
	})
}
