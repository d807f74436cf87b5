// Command render plays one note per waveform through the engine offline and
// saves each result as a 16-bit mono WAV file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jinjor/desktop-synth/src/effect"
	"github.com/jinjor/desktop-synth/src/synth"
	"golang.org/x/sync/errgroup"
)

const (
	bitDepth  = 16
	maxTail   = 5.0 // sec
	wavFormat = 1   // PCM
)

var waveforms = []string{"sine", "square", "sawtooth", "triangle", "noise", "additive"}

var (
	sampleRate = flag.Int("rate", 48000, "sample rate in Hz")
	note       = flag.Int("note", 0, "note number (0 is 440Hz)")
	hold       = flag.Float64("hold", 1.0, "seconds between note on and note off")
	effects    = flag.String("effects", "", "comma separated effect kinds, e.g. chorus,reverb")
)

func main() {
	flag.Parse()
	dir := flag.Arg(0)
	if dir == "" {
		log.Fatalln("dir is not passed")
	}
	log.SetFlags(log.Lshortfile)

	kinds, err := parseEffects(*effects)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	g, _ := errgroup.WithContext(context.Background())
	for _, name := range waveforms {
		name := name
		g.Go(func() error {
			s, err := newSynth(float64(*sampleRate), name, kinds)
			if err != nil {
				return err
			}
			samples := renderNote(s, *note, *hold)
			log.Printf("rendered %s (%d samples)\n", name, len(samples))
			path := filepath.Join(dir, name+".wav")
			if err := save(path, *sampleRate, samples); err != nil {
				return err
			}
			log.Printf("saved %s\n", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("Successfully rendered waveforms.")
}

func parseEffects(s string) ([]effect.Kind, error) {
	if s == "" {
		return nil, nil
	}
	var kinds []effect.Kind
	for _, name := range strings.Split(s, ",") {
		kind, err := effect.KindFromString(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func newSynth(sampleRate float64, waveform string, kinds []effect.Kind) (*synth.Synth, error) {
	s := synth.New(sampleRate, synth.WithSeed(1))
	if err := s.Set("waveform", waveform); err != nil {
		return nil, err
	}
	for _, kind := range kinds {
		e, err := effect.New(kind, sampleRate)
		if err != nil {
			return nil, err
		}
		s.AddEffect(e)
	}
	return s, nil
}

// renderNote holds the note for hold seconds, then runs until the voice has
// finished. Effects get up to maxTail seconds more to ring out.
func renderNote(s *synth.Synth, note int, hold float64) []float64 {
	holdSamples := int(hold * s.SampleRate())
	tailSamples := int(maxTail * s.SampleRate())
	var out []float64
	s.NoteOn(note)
	for i := 0; i < holdSamples; i++ {
		out = append(out, s.NextSample())
	}
	s.NoteOff(note)
	for s.ActiveVoices() > 0 {
		out = append(out, s.NextSample())
	}
	if s.Effects().Len() == 0 {
		return out
	}
	for i := 0; i < tailSamples; i++ {
		out = append(out, s.NextSample())
	}
	return out
}

func toPCM(samples []float64) []int {
	const max = 1<<(bitDepth-1) - 1
	data := make([]int, len(samples))
	for i, value := range samples {
		if value > 1 {
			value = 1
		} else if value < -1 {
			value = -1
		}
		data[i] = int(value * max)
	}
	return data
}

func save(path string, sampleRate int, samples []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, wavFormat)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           toPCM(samples),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
