package effect

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ----- Chorus ----- //

const chorusMaxDelay = 0.030 // sec

// Chorus mixes several delay lines whose read offsets are swept by
// independent LFOs.
type Chorus struct {
	Mix    float64
	voices []chorusVoice
}

type chorusVoice struct {
	rate  float64 // Hz
	depth float64 // 0-1
	phase float64 // [0,1)
	line  *delayLine
}

// NewChorus ...
func NewChorus(sampleRate float64, voices int, mix float64) *Chorus {
	if voices < 1 {
		voices = 1
	}
	length := int(sampleRate * chorusMaxDelay)
	c := &Chorus{
		Mix:    mix,
		voices: make([]chorusVoice, voices),
	}
	for i := range c.voices {
		c.voices[i] = chorusVoice{
			rate:  0.5 + float64(i)*0.2,
			depth: 0.7,
			line:  newDelayLine(length),
		}
	}
	return c
}

// Kind ...
func (c *Chorus) Kind() Kind { return KindChorus }

// Voices ...
func (c *Chorus) Voices() int {
	return len(c.voices)
}

// Rate ...
func (c *Chorus) Rate(i int) float64 {
	return c.voices[i].rate
}

// Depth ...
func (c *Chorus) Depth(i int) float64 {
	return c.voices[i].depth
}

// Process ...
func (c *Chorus) Process(in float64, sampleRate float64) float64 {
	out := 0.0
	for i := range c.voices {
		v := &c.voices[i]
		v.phase = wrap01(v.phase + v.rate/sampleRate)
		out += v.line.at(v.offset())
		v.line.step(in)
	}
	out /= float64(len(c.voices))
	return blend(in, out, c.Mix)
}

// offset is the swept read position, saturating at both ends of the line.
func (v *chorusVoice) offset() int {
	max := v.line.len() - 1
	modDelay := (1 + math.Sin(2*math.Pi*v.phase)*v.depth) * 0.5
	delaySamples := int(modDelay * float64(max))
	if delaySamples < 0 {
		return 0
	} else if delaySamples > max {
		return max
	}
	return delaySamples
}

// Reset ...
func (c *Chorus) Reset() {
	for i := range c.voices {
		c.voices[i].line.clear()
		c.voices[i].phase = 0
	}
}

// keys: mix, rate_<i>, depth_<i>
func (c *Chorus) set(key string, value string) error {
	if key == "mix" {
		return parseFloat(value, &c.Mix)
	}
	var field string
	switch {
	case strings.HasPrefix(key, "rate_"):
		field = "rate"
	case strings.HasPrefix(key, "depth_"):
		field = "depth"
	default:
		return errUnknownKey(key)
	}
	index, err := strconv.Atoi(strings.TrimPrefix(key, field+"_"))
	if err != nil {
		return err
	}
	if index < 0 || index >= len(c.voices) {
		return fmt.Errorf("chorus voice out of range: %d", index)
	}
	if field == "rate" {
		return parseFloat(value, &c.voices[index].rate)
	}
	return parseFloat(value, &c.voices[index].depth)
}

type chorusJSON struct {
	Kind   string    `json:"kind"`
	Rates  []float64 `json:"rates"`
	Depths []float64 `json:"depths"`
	Mix    float64   `json:"mix"`
}

func (c *Chorus) toJSON() json.RawMessage {
	rates := make([]float64, len(c.voices))
	depths := make([]float64, len(c.voices))
	for i, v := range c.voices {
		rates[i] = v.rate
		depths[i] = v.depth
	}
	return toRawMessage(&chorusJSON{
		Kind:   c.Kind().String(),
		Rates:  rates,
		Depths: depths,
		Mix:    c.Mix,
	})
}
