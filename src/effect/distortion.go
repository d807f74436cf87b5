package effect

import (
	"encoding/json"
	"math"
)

// ----- Distortion ----- //

// Distortion is a stateless tanh waveshaper.
type Distortion struct {
	Drive float64
	Mix   float64
}

// NewDistortion ...
func NewDistortion(drive float64, mix float64) *Distortion {
	return &Distortion{Drive: drive, Mix: mix}
}

// Kind ...
func (d *Distortion) Kind() Kind { return KindDistortion }

// Process ...
func (d *Distortion) Process(in float64, sampleRate float64) float64 {
	return blend(in, math.Tanh(in*d.Drive), d.Mix)
}

// Reset ...
func (d *Distortion) Reset() {}

func (d *Distortion) set(key string, value string) error {
	switch key {
	case "drive":
		return parseFloat(value, &d.Drive)
	case "mix":
		return parseFloat(value, &d.Mix)
	}
	return errUnknownKey(key)
}

type distortionJSON struct {
	Kind  string  `json:"kind"`
	Drive float64 `json:"drive"`
	Mix   float64 `json:"mix"`
}

func (d *Distortion) toJSON() json.RawMessage {
	return toRawMessage(&distortionJSON{
		Kind:  d.Kind().String(),
		Drive: d.Drive,
		Mix:   d.Mix,
	})
}
