package synth

// ----- Envelope ----- //

/*
  1 +    x
    |   / \
    |  /   \
  s + /     x--------x
    |/                \
  0 +-----+---+--------+---+--
    |a    |d  |        |r  |
              ^ hold   ^ note off
*/

// Envelope is a linear ADSR amplitude contour driven by the sample clock.
type Envelope struct {
	Attack  float64 // sec
	Decay   float64 // sec
	Sustain float64 // 0-1
	Release float64 // sec

	started    bool
	startPos   int64
	released   bool
	releasePos int64
}

// NewEnvelope ...
func NewEnvelope(attack, decay, sustain, release float64) Envelope {
	return Envelope{
		Attack:  attack,
		Decay:   decay,
		Sustain: sustain,
		Release: release,
	}
}

// Start sets the start position once. Later calls are ignored.
func (e *Envelope) Start(pos int64) {
	if e.started {
		return
	}
	e.started = true
	e.startPos = pos
}

// ReleaseAt starts the release phase at pos.
func (e *Envelope) ReleaseAt(pos int64) {
	if e.released {
		return
	}
	e.released = true
	e.releasePos = pos
}

// Started ...
func (e *Envelope) Started() bool {
	return e.started
}

// StartPos ...
func (e *Envelope) StartPos() int64 {
	return e.startPos
}

// Released ...
func (e *Envelope) Released() bool {
	return e.released
}

// Amplitude returns the envelope level at sample position pos.
func (e *Envelope) Amplitude(pos int64, sampleRate float64) float64 {
	if !e.started {
		return 0
	}
	if e.released {
		t := elapsed(e.releasePos, pos, sampleRate)
		if t >= e.Release {
			return 0
		}
		return e.Sustain * (1 - t/e.Release)
	}
	t := elapsed(e.startPos, pos, sampleRate)
	if t < e.Attack {
		return t / e.Attack
	} else if t < e.Attack+e.Decay {
		return 1 - (1-e.Sustain)*(t-e.Attack)/e.Decay
	}
	return e.Sustain
}

// Finished reports whether the release phase has fully elapsed.
func (e *Envelope) Finished(pos int64, sampleRate float64) bool {
	return e.released && elapsed(e.releasePos, pos, sampleRate) >= e.Release
}

func elapsed(from int64, pos int64, sampleRate float64) float64 {
	if pos <= from {
		return 0
	}
	return float64(pos-from) / sampleRate
}

// ----- Frequency Envelope ----- //

/*
  p/s +    x
      |   / \
 ss/s +  /   x--------x
      | /              \
    1 +x                x-----
      +-----+---+--------+---+--
      |a    |d  |        |r  |
*/

// FrequencyEnvelope is a pitch contour. It yields a multiplier relative to
// StartFreq and returns to 1 on release instead of to silence.
type FrequencyEnvelope struct {
	Attack      float64 // sec
	Decay       float64 // sec
	Release     float64 // sec
	StartFreq   float64 // Hz
	PeakFreq    float64 // Hz
	SustainFreq float64 // Hz

	started    bool
	startPos   int64
	released   bool
	releasePos int64
}

// NewFrequencyEnvelope ...
func NewFrequencyEnvelope(attack, decay, release, startFreq, peakFreq, sustainFreq float64) FrequencyEnvelope {
	return FrequencyEnvelope{
		Attack:      attack,
		Decay:       decay,
		Release:     release,
		StartFreq:   startFreq,
		PeakFreq:    peakFreq,
		SustainFreq: sustainFreq,
	}
}

// Start ...
func (e *FrequencyEnvelope) Start(pos int64) {
	if e.started {
		return
	}
	e.started = true
	e.startPos = pos
}

// ReleaseAt ...
func (e *FrequencyEnvelope) ReleaseAt(pos int64) {
	if e.released {
		return
	}
	e.released = true
	e.releasePos = pos
}

// Released ...
func (e *FrequencyEnvelope) Released() bool {
	return e.released
}

// Multiplier returns the frequency ratio at sample position pos.
func (e *FrequencyEnvelope) Multiplier(pos int64, sampleRate float64) float64 {
	if !e.started || e.StartFreq <= 0 {
		return 1
	}
	peak := e.PeakFreq / e.StartFreq
	sustain := e.SustainFreq / e.StartFreq
	if e.released {
		t := elapsed(e.releasePos, pos, sampleRate)
		if t >= e.Release {
			return 1
		}
		r := t / e.Release
		return sustain*(1-r) + r
	}
	t := elapsed(e.startPos, pos, sampleRate)
	if t < e.Attack {
		return 1 + (peak-1)*t/e.Attack
	} else if t < e.Attack+e.Decay {
		return peak + (sustain-peak)*(t-e.Attack)/e.Decay
	}
	return sustain
}
