// Package effect implements the per-sample effect chain applied to the
// mixed voice signal.
package effect

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ----- Kind ----- //

// Kind identifies an effect variant.
type Kind int

const (
	KindDelay Kind = iota
	KindDistortion
	KindFilter
	KindTremolo
	KindChorus
	KindReverb
	KindRingMod
)

var kindNames = []string{
	KindDelay:      "delay",
	KindDistortion: "distortion",
	KindFilter:     "filter",
	KindTremolo:    "tremolo",
	KindChorus:     "chorus",
	KindReverb:     "reverb",
	KindRingMod:    "ring_mod",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "none"
	}
	return kindNames[k]
}

// KindFromString ...
func KindFromString(s string) (Kind, error) {
	for kind, name := range kindNames {
		if name == s {
			return Kind(kind), nil
		}
	}
	return 0, fmt.Errorf("unknown effect %q", s)
}

// ----- Effect ----- //

// Effect is one stage of the chain. Process returns
// in*(1-mix) + wet*mix. Reset clears buffers and phases but keeps params.
type Effect interface {
	Process(in float64, sampleRate float64) float64
	Reset()
	Kind() Kind
	set(key string, value string) error
	toJSON() json.RawMessage
}

// New creates an effect of the given kind with default settings.
func New(kind Kind, sampleRate float64) (Effect, error) {
	switch kind {
	case KindDelay:
		return NewDelay(sampleRate, 0.3, 0.4, 0.5), nil
	case KindDistortion:
		return NewDistortion(2.0, 0.5), nil
	case KindFilter:
		return NewFilter(1000, 0.7, 0.5), nil
	case KindTremolo:
		return NewTremolo(5.0, 0.5, 0.5), nil
	case KindChorus:
		return NewChorus(sampleRate, 3, 0.5), nil
	case KindReverb:
		return NewReverb(sampleRate, 1.0, 0.5), nil
	case KindRingMod:
		return NewRingMod(440, 0.5), nil
	}
	return nil, fmt.Errorf("unknown effect kind %d", kind)
}

// Set updates a param of e by key.
func Set(e Effect, key string, value string) error {
	if err := e.set(key, value); err != nil {
		return fmt.Errorf("%v: %w", e.Kind(), err)
	}
	return nil
}

// ToJSON ...
func ToJSON(e Effect) json.RawMessage {
	return e.toJSON()
}

func blend(in float64, wet float64, mix float64) float64 {
	return in*(1-mix) + wet*mix
}

func parseFloat(value string, target *float64) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	*target = v
	return nil
}

func errUnknownKey(key string) error {
	return fmt.Errorf("unknown param %q", key)
}

func toRawMessage(v interface{}) json.RawMessage {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return json.RawMessage(bytes)
}

// ----- Delay Line ----- //

type delayLine struct {
	cursor int
	past   []float64
}

func newDelayLine(length int) *delayLine {
	if length < 1 {
		length = 1
	}
	return &delayLine{past: make([]float64, length)}
}

func (d *delayLine) resize(length int) {
	if length < 1 {
		length = 1
	}
	if cap(d.past) >= length {
		d.past = d.past[0:length]
	} else {
		d.past = make([]float64, length)
	}
	d.clear()
}

func (d *delayLine) getDelayed() float64 {
	return d.past[d.cursor]
}

// at reads the sample written offset steps before the cursor.
func (d *delayLine) at(offset int) float64 {
	n := len(d.past)
	return d.past[(d.cursor+n-offset%n)%n]
}

func (d *delayLine) step(in float64) {
	d.past[d.cursor] = in
	d.cursor++
	if d.cursor >= len(d.past) {
		d.cursor = 0
	}
}

func (d *delayLine) clear() {
	for i := range d.past {
		d.past[i] = 0
	}
	d.cursor = 0
}

func (d *delayLine) len() int {
	return len(d.past)
}
