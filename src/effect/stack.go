package effect

import (
	"encoding/json"
	"fmt"
)

// ----- Stack ----- //

// Stack runs effects in insertion order.
type Stack struct {
	effects []Effect
}

// NewStack ...
func NewStack() *Stack {
	return &Stack{}
}

// Add ...
func (s *Stack) Add(e Effect) {
	s.effects = append(s.effects, e)
}

// Len ...
func (s *Stack) Len() int {
	return len(s.effects)
}

// At ...
func (s *Stack) At(i int) Effect {
	return s.effects[i]
}

// Remove deletes the effect at index i.
func (s *Stack) Remove(i int) error {
	if i < 0 || i >= len(s.effects) {
		return fmt.Errorf("effect index out of range: %d", i)
	}
	last := len(s.effects) - 1
	copy(s.effects[i:], s.effects[i+1:])
	s.effects[last] = nil
	s.effects = s.effects[:last]
	return nil
}

// Set updates a param of the effect at index i.
func (s *Stack) Set(i int, key string, value string) error {
	if i < 0 || i >= len(s.effects) {
		return fmt.Errorf("effect index out of range: %d", i)
	}
	return Set(s.effects[i], key, value)
}

// Process ...
func (s *Stack) Process(in float64, sampleRate float64) float64 {
	out := in
	for _, e := range s.effects {
		out = e.Process(out, sampleRate)
	}
	return out
}

// Reset ...
func (s *Stack) Reset() {
	for _, e := range s.effects {
		e.Reset()
	}
}

// ToJSON ...
func (s *Stack) ToJSON() json.RawMessage {
	list := make([]json.RawMessage, len(s.effects))
	for i, e := range s.effects {
		list[i] = e.toJSON()
	}
	return toRawMessage(list)
}
