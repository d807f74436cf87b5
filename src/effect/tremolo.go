package effect

import (
	"encoding/json"
	"math"
)

// ----- Tremolo ----- //

// Tremolo modulates amplitude with a sine LFO.
type Tremolo struct {
	Rate  float64 // Hz
	Depth float64 // 0-1
	Mix   float64
	phase float64 // [0,1)
}

// NewTremolo ...
func NewTremolo(rate float64, depth float64, mix float64) *Tremolo {
	return &Tremolo{Rate: rate, Depth: depth, Mix: mix}
}

// Kind ...
func (t *Tremolo) Kind() Kind { return KindTremolo }

// Process ...
func (t *Tremolo) Process(in float64, sampleRate float64) float64 {
	modulation := 0.5 * (1 + t.Depth*math.Sin(2*math.Pi*t.phase))
	t.phase = wrap01(t.phase + t.Rate/sampleRate)
	return blend(in, in*modulation, t.Mix)
}

// Reset ...
func (t *Tremolo) Reset() {
	t.phase = 0
}

func (t *Tremolo) set(key string, value string) error {
	switch key {
	case "rate":
		return parseFloat(value, &t.Rate)
	case "depth":
		return parseFloat(value, &t.Depth)
	case "mix":
		return parseFloat(value, &t.Mix)
	}
	return errUnknownKey(key)
}

type tremoloJSON struct {
	Kind  string  `json:"kind"`
	Rate  float64 `json:"rate"`
	Depth float64 `json:"depth"`
	Mix   float64 `json:"mix"`
}

func (t *Tremolo) toJSON() json.RawMessage {
	return toRawMessage(&tremoloJSON{
		Kind:  t.Kind().String(),
		Rate:  t.Rate,
		Depth: t.Depth,
		Mix:   t.Mix,
	})
}

func wrap01(phase float64) float64 {
	phase = math.Mod(phase, 1)
	if phase < 0 {
		phase++
	}
	return phase
}
