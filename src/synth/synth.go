// Package synth is the polyphonic voice engine: envelopes, oscillators and
// the voice manager that mixes every live voice into the effect chain.
package synth

import (
	"encoding/json"
	"math/rand"
	"time"

	"github.com/jinjor/desktop-synth/src/effect"
)

// MaxNote is the highest playable note number.
const MaxNote = 127

// ----- Options ----- //

// Option configures a Synth at construction.
type Option func(*Synth)

// WithParams sets the initial synthesis params.
func WithParams(p Params) Option {
	return func(s *Synth) {
		s.params = p
	}
}

// WithSeed seeds the noise generator.
func WithSeed(seed int64) Option {
	return func(s *Synth) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// ----- Synth ----- //

// Synth owns every voice and the effect stack. It is not safe for
// concurrent use; callers serialize access with one lock.
type Synth struct {
	sampleRate float64
	params     Params
	voices     [MaxNote + 1]Voice
	active     [MaxNote + 1]bool
	numActive  int
	effects    *effect.Stack
	rng        *rand.Rand
	pos        int64
}

// New ...
func New(sampleRate float64, opts ...Option) *Synth {
	s := &Synth{
		sampleRate: sampleRate,
		params:     DefaultParams(),
		effects:    effect.NewStack(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// SampleRate ...
func (s *Synth) SampleRate() float64 {
	return s.sampleRate
}

// Pos returns the sample clock.
func (s *Synth) Pos() int64 {
	return s.pos
}

// Params ...
func (s *Synth) Params() Params {
	return s.params
}

// SetParams replaces the params used by voices started afterwards.
func (s *Synth) SetParams(p Params) {
	s.params = p
}

// Set updates a single param by key.
func (s *Synth) Set(key string, value string) error {
	return s.params.set(key, value)
}

// ApplyJSON ...
func (s *Synth) ApplyJSON(data json.RawMessage) error {
	p := s.params
	if err := p.applyJSON(data); err != nil {
		return err
	}
	s.params = p
	return nil
}

// ToJSON ...
func (s *Synth) ToJSON() json.RawMessage {
	return s.params.toJSON()
}

// Effects ...
func (s *Synth) Effects() *effect.Stack {
	return s.effects
}

// AddEffect appends e to the end of the chain with cleared state.
func (s *Synth) AddEffect(e effect.Effect) {
	e.Reset()
	s.effects.Add(e)
}

// ResetEffects replaces the chain with an empty one.
func (s *Synth) ResetEffects() {
	s.effects = effect.NewStack()
}

// Voice returns the live voice for note, if any.
func (s *Synth) Voice(note int) (*Voice, bool) {
	if !validNote(note) || !s.active[note] {
		return nil, false
	}
	return &s.voices[note], true
}

// ActiveVoices ...
func (s *Synth) ActiveVoices() int {
	return s.numActive
}

// NoteOn starts a voice for note unless one is already held.
func (s *Synth) NoteOn(note int) {
	if !validNote(note) {
		return
	}
	if s.active[note] && !s.voices[note].Envelope.Released() {
		return
	}
	v := &s.voices[note]
	v.initWithNote(&s.params, note, s.rng)
	v.start(s.pos)
	if !s.active[note] {
		s.active[note] = true
		s.numActive++
	}
}

// NoteOff releases the voice for note.
func (s *Synth) NoteOff(note int) {
	if !validNote(note) || !s.active[note] {
		return
	}
	s.voices[note].release(s.pos)
}

// AllNotesOff releases every live voice.
func (s *Synth) AllNotesOff() {
	for note := range s.voices {
		if s.active[note] {
			s.voices[note].release(s.pos)
		}
	}
}

// NextSample renders one output sample and advances the clock.
func (s *Synth) NextSample() float64 {
	for note := range s.voices {
		if s.active[note] && s.voices[note].Envelope.Finished(s.pos, s.sampleRate) {
			s.active[note] = false
			s.numActive--
		}
	}
	mixed := 0.0
	if s.numActive > 0 {
		sum := 0.0
		for note := range s.voices {
			if s.active[note] {
				sum += s.voices[note].Sample(s.pos, s.sampleRate)
			}
		}
		mixed = sum / float64(s.numActive)
	}
	s.pos++
	return s.effects.Process(mixed, s.sampleRate)
}

func validNote(note int) bool {
	return note >= 0 && note <= MaxNote
}
