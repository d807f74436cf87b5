package main

import (
	"reflect"
	"testing"
)

func TestParseCommand(t *testing.T) {
	for _, c := range []struct {
		line     string
		expected []string
	}{
		{"note_on 60", []string{"note_on", "60"}},
		{"set  synth attack 0.5 ", []string{"set", "synth", "attack", "0.5"}},
		{"add_effect ring%5Fmod", []string{"add_effect", "ring_mod"}},
		{"", []string{}},
	} {
		command, err := parseCommand(c.line)
		if err != nil {
			t.Errorf("expected no error, but got: %v", err)
		}
		if len(command) != len(c.expected) || (len(command) > 0 && !reflect.DeepEqual(command, c.expected)) {
			t.Errorf("expected %q, but got: %q", c.expected, command)
		}
	}
	if _, err := parseCommand("set synth waveform %zz"); err == nil {
		t.Errorf("expected error for bad escape")
	}
}
