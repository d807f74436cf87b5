package synth

import (
	"fmt"
	"math"
	"math/rand"
)

// ----- Wave Kind ----- //

const (
	waveSine = iota
	waveSquare
	waveSawtooth
	waveTriangle
	waveNoise
	waveAdditive
)

var waveKindNames = []string{
	waveSine:     "sine",
	waveSquare:   "square",
	waveSawtooth: "sawtooth",
	waveTriangle: "triangle",
	waveNoise:    "noise",
	waveAdditive: "additive",
}

func waveKindFromString(s string) (int, error) {
	for kind, name := range waveKindNames {
		if name == s {
			return kind, nil
		}
	}
	return waveSine, fmt.Errorf("unknown waveform %q", s)
}

func waveKindToString(kind int) string {
	if kind < 0 || kind >= len(waveKindNames) {
		return "none"
	}
	return waveKindNames[kind]
}

// ----- Waveform ----- //

// MaxHarmonics is the size of the additive harmonic table.
const MaxHarmonics = 16

const twoPi = 2.0 * math.Pi

// Waveform is the oscillator shape. NumHarmonics and HarmonicWeights are
// only read by the additive kind.
type Waveform struct {
	Kind            int
	NumHarmonics    int
	HarmonicWeights [MaxHarmonics]float64
}

// Sine ...
func Sine() Waveform { return Waveform{Kind: waveSine} }

// Square ...
func Square() Waveform { return Waveform{Kind: waveSquare} }

// Sawtooth ...
func Sawtooth() Waveform { return Waveform{Kind: waveSawtooth} }

// Triangle ...
func Triangle() Waveform { return Waveform{Kind: waveTriangle} }

// Noise ...
func Noise() Waveform { return Waveform{Kind: waveNoise} }

// Additive builds an additive waveform from the first n weights.
func Additive(n int, weights [MaxHarmonics]float64) Waveform {
	return Waveform{Kind: waveAdditive, NumHarmonics: n, HarmonicWeights: weights}
}

// String ...
func (w Waveform) String() string {
	return waveKindToString(w.Kind)
}

// oscillator state shared by the phase-driven shapes
type oscillator struct {
	phase          float64 // [0, 2π)
	harmonicPhases [MaxHarmonics]float64
	rng            *rand.Rand
}

func (o *oscillator) reset() {
	o.phase = 0
	for i := range o.harmonicPhases {
		o.harmonicPhases[i] = 0
	}
}

// step evaluates w at the current phase and advances every accumulator.
func (o *oscillator) step(w *Waveform, freq float64, sampleRate float64) float64 {
	value := 0.0
	switch w.Kind {
	case waveSine:
		value = math.Sin(o.phase)
	case waveSquare:
		if math.Sin(o.phase) >= 0 {
			value = 1
		} else {
			value = -1
		}
	case waveSawtooth:
		value = o.phase/twoPi*2 - 1
	case waveTriangle:
		p := o.phase / twoPi
		if p < 0.5 {
			value = p*4 - 1
		} else {
			value = 3 - p*4
		}
	case waveNoise:
		value = o.rng.Float64()*2 - 1
	case waveAdditive:
		value = o.additive(w, freq, sampleRate)
	}
	o.phase = wrapPhase(o.phase + twoPi*freq/sampleRate)
	return value
}

func (o *oscillator) additive(w *Waveform, freq float64, sampleRate float64) float64 {
	if w.NumHarmonics <= 0 {
		return 0
	}
	n := w.NumHarmonics
	if n > MaxHarmonics {
		n = MaxHarmonics
	}
	nyquist := sampleRate / 2
	sum := 0.0
	for h := 0; h < n; h++ {
		harmonicFreq := freq * float64(h+1)
		if harmonicFreq >= nyquist {
			continue
		}
		sum += w.HarmonicWeights[h] * math.Sin(o.harmonicPhases[h])
		o.harmonicPhases[h] = wrapPhase(o.harmonicPhases[h] + twoPi*harmonicFreq/sampleRate)
	}
	return sum / math.Sqrt(float64(w.NumHarmonics))
}

func wrapPhase(phase float64) float64 {
	phase = math.Mod(phase, twoPi)
	if phase < 0 {
		phase += twoPi
	}
	return phase
}
