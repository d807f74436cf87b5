package synth

import (
	"math"
	"math/rand"
)

// ----- Voice ----- //

// Voice is one sounding note.
type Voice struct {
	Frequency         float64 // Hz
	PitchBend         float64
	Waveform          Waveform
	Envelope          Envelope
	FrequencyEnvelope FrequencyEnvelope
	osc               oscillator
}

func noteToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note)/12)
}

// initWithNote overwrites v with a fresh voice for note built from p.
func (v *Voice) initWithNote(p *Params, note int, rng *rand.Rand) {
	freq := noteToFreq(note)
	v.Frequency = freq
	v.PitchBend = p.PitchBend
	v.Waveform = p.Waveform
	v.Envelope = NewEnvelope(p.Attack, p.Decay, p.Sustain, p.Release)
	v.FrequencyEnvelope = NewFrequencyEnvelope(
		p.FreqAttack,
		p.FreqDecay,
		p.FreqRelease,
		freq,
		freq*p.FreqPeakMult,
		freq*p.FreqSustainMult,
	)
	v.osc.reset()
	v.osc.rng = rng
}

func (v *Voice) start(pos int64) {
	v.Envelope.Start(pos)
	v.FrequencyEnvelope.Start(pos)
}

func (v *Voice) release(pos int64) {
	v.Envelope.ReleaseAt(pos)
	v.FrequencyEnvelope.ReleaseAt(pos)
}

// Sample renders the voice at sample position pos and advances its phases.
func (v *Voice) Sample(pos int64, sampleRate float64) float64 {
	freq := v.Frequency * v.PitchBend * v.FrequencyEnvelope.Multiplier(pos, sampleRate)
	value := v.osc.step(&v.Waveform, freq, sampleRate)
	return value * v.Envelope.Amplitude(pos, sampleRate)
}

// Phase ...
func (v *Voice) Phase() float64 {
	return v.osc.phase
}
