package synth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ----- Params ----- //

// Params is the synthesis configuration copied into every new voice.
// Editing it never changes voices that are already sounding.
type Params struct {
	Waveform        Waveform
	Attack          float64 // sec
	Decay           float64 // sec
	Sustain         float64 // 0-1
	Release         float64 // sec
	FreqAttack      float64 // sec
	FreqDecay       float64 // sec
	FreqRelease     float64 // sec
	FreqPeakMult    float64
	FreqSustainMult float64
	PitchBend       float64
}

var defaultHarmonicWeights = [MaxHarmonics]float64{
	1.0, 0.5, 0.33, 0.25, 0.2, 0.17, 0.14, 0.13, 0.11, 0.1, 0.09, 0.08, 0.07, 0.06, 0.05, 0.04,
}

// DefaultParams ...
func DefaultParams() Params {
	return Params{
		Waveform:        Waveform{Kind: waveSine, NumHarmonics: 8, HarmonicWeights: defaultHarmonicWeights},
		Attack:          0.1,
		Decay:           0.1,
		Sustain:         0.7,
		Release:         0.3,
		FreqAttack:      0.1,
		FreqDecay:       0.2,
		FreqRelease:     0.3,
		FreqPeakMult:    2.0,
		FreqSustainMult: 1.5,
		PitchBend:       1.0,
	}
}

const harmonicWeightPrefix = "harmonic_weight_"

func (p *Params) set(key string, value string) error {
	if strings.HasPrefix(key, harmonicWeightPrefix) {
		index, err := strconv.Atoi(strings.TrimPrefix(key, harmonicWeightPrefix))
		if err != nil {
			return err
		}
		if index < 0 || index >= MaxHarmonics {
			return fmt.Errorf("harmonic index out of range: %d", index)
		}
		weight, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		p.Waveform.HarmonicWeights[index] = weight
		return nil
	}
	switch key {
	case "waveform":
		kind, err := waveKindFromString(value)
		if err != nil {
			return err
		}
		p.Waveform.Kind = kind
		return nil
	case "num_harmonics":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		if n < 1 || n > MaxHarmonics {
			return fmt.Errorf("num_harmonics out of range: %d", n)
		}
		p.Waveform.NumHarmonics = n
		return nil
	}
	target := p.floatField(key)
	if target == nil {
		return fmt.Errorf("unknown synth param %q", key)
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	*target = v
	return nil
}

func (p *Params) floatField(key string) *float64 {
	switch key {
	case "attack":
		return &p.Attack
	case "decay":
		return &p.Decay
	case "sustain":
		return &p.Sustain
	case "release":
		return &p.Release
	case "freq_attack":
		return &p.FreqAttack
	case "freq_decay":
		return &p.FreqDecay
	case "freq_release":
		return &p.FreqRelease
	case "freq_peak_mult":
		return &p.FreqPeakMult
	case "freq_sustain_mult":
		return &p.FreqSustainMult
	case "pitch_bend":
		return &p.PitchBend
	}
	return nil
}

type paramsJSON struct {
	Waveform        string    `json:"waveform"`
	NumHarmonics    int       `json:"numHarmonics"`
	HarmonicWeights []float64 `json:"harmonicWeights"`
	Attack          float64   `json:"attack"`
	Decay           float64   `json:"decay"`
	Sustain         float64   `json:"sustain"`
	Release         float64   `json:"release"`
	FreqAttack      float64   `json:"freqAttack"`
	FreqDecay       float64   `json:"freqDecay"`
	FreqRelease     float64   `json:"freqRelease"`
	FreqPeakMult    float64   `json:"freqPeakMult"`
	FreqSustainMult float64   `json:"freqSustainMult"`
	PitchBend       float64   `json:"pitchBend"`
}

// applyJSON overwrites the fields present in data. Omitted fields keep
// their current values.
func (p *Params) applyJSON(data json.RawMessage) error {
	j := p.mirror()
	if err := json.Unmarshal(data, j); err != nil {
		return fmt.Errorf("failed to apply JSON to params: %w", err)
	}
	kind, err := waveKindFromString(j.Waveform)
	if err != nil {
		return err
	}
	if j.NumHarmonics < 1 || j.NumHarmonics > MaxHarmonics {
		return fmt.Errorf("num_harmonics out of range: %d", j.NumHarmonics)
	}
	if len(j.HarmonicWeights) > MaxHarmonics {
		return fmt.Errorf("too many harmonic weights: %d", len(j.HarmonicWeights))
	}
	p.Waveform.Kind = kind
	p.Waveform.NumHarmonics = j.NumHarmonics
	copy(p.Waveform.HarmonicWeights[:], j.HarmonicWeights)
	p.Attack = j.Attack
	p.Decay = j.Decay
	p.Sustain = j.Sustain
	p.Release = j.Release
	p.FreqAttack = j.FreqAttack
	p.FreqDecay = j.FreqDecay
	p.FreqRelease = j.FreqRelease
	p.FreqPeakMult = j.FreqPeakMult
	p.FreqSustainMult = j.FreqSustainMult
	p.PitchBend = j.PitchBend
	return nil
}

func (p *Params) toJSON() json.RawMessage {
	return toRawMessage(p.mirror())
}

func (p *Params) mirror() *paramsJSON {
	weights := make([]float64, MaxHarmonics)
	copy(weights, p.Waveform.HarmonicWeights[:])
	return &paramsJSON{
		Waveform:        waveKindToString(p.Waveform.Kind),
		NumHarmonics:    p.Waveform.NumHarmonics,
		HarmonicWeights: weights,
		Attack:          p.Attack,
		Decay:           p.Decay,
		Sustain:         p.Sustain,
		Release:         p.Release,
		FreqAttack:      p.FreqAttack,
		FreqDecay:       p.FreqDecay,
		FreqRelease:     p.FreqRelease,
		FreqPeakMult:    p.FreqPeakMult,
		FreqSustainMult: p.FreqSustainMult,
		PitchBend:       p.PitchBend,
	}
}

func toRawMessage(v interface{}) json.RawMessage {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return json.RawMessage(bytes)
}
