package effect

import "encoding/json"

// ----- Reverb ----- //

/*
        +-> comb0 -+
        +-> comb1 -+
  in ---+-> comb2 -+-> avg -> allpass0 -> allpass1 -> wet
        +-> comb3 -+
*/

var (
	combDelays    = [...]float64{0.0297, 0.0371, 0.0411, 0.0437} // sec at roomSize 1
	allpassDelays = [...]float64{0.0050, 0.0017}                  // sec
)

const (
	defaultReverbFeedback = 0.84
	allpassGain           = 0.5
)

// Reverb is a Schroeder reverberator.
type Reverb struct {
	RoomSize  float64
	Feedback  float64
	Mix       float64
	combs     []*delayLine
	allpasses []*delayLine
}

// NewReverb ...
func NewReverb(sampleRate float64, roomSize float64, mix float64) *Reverb {
	r := &Reverb{
		RoomSize: roomSize,
		Feedback: defaultReverbFeedback,
		Mix:      mix,
	}
	for _, delay := range combDelays {
		r.combs = append(r.combs, newDelayLine(int(sampleRate*delay*roomSize)))
	}
	for _, delay := range allpassDelays {
		r.allpasses = append(r.allpasses, newDelayLine(int(sampleRate*delay)))
	}
	return r
}

// Kind ...
func (r *Reverb) Kind() Kind { return KindReverb }

// Process ...
func (r *Reverb) Process(in float64, sampleRate float64) float64 {
	out := 0.0
	if len(r.combs) > 0 {
		for _, comb := range r.combs {
			delayed := comb.getDelayed()
			out += delayed
			comb.step(in + delayed*r.Feedback)
		}
		out /= float64(len(r.combs))
	}
	for _, allpass := range r.allpasses {
		delayed := allpass.getDelayed()
		input := out
		out = delayed - input
		allpass.step(input + delayed*allpassGain)
	}
	return blend(in, out, r.Mix)
}

// Reset ...
func (r *Reverb) Reset() {
	for _, comb := range r.combs {
		comb.clear()
	}
	for _, allpass := range r.allpasses {
		allpass.clear()
	}
}

func (r *Reverb) set(key string, value string) error {
	switch key {
	case "feedback":
		return parseFloat(value, &r.Feedback)
	case "mix":
		return parseFloat(value, &r.Mix)
	}
	return errUnknownKey(key)
}

type reverbJSON struct {
	Kind     string  `json:"kind"`
	RoomSize float64 `json:"roomSize"`
	Feedback float64 `json:"feedback"`
	Mix      float64 `json:"mix"`
}

func (r *Reverb) toJSON() json.RawMessage {
	return toRawMessage(&reverbJSON{
		Kind:     r.Kind().String(),
		RoomSize: r.RoomSize,
		Feedback: r.Feedback,
		Mix:      r.Mix,
	})
}
