package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"

	"github.com/hajimehoshi/oto"
	"github.com/jinjor/desktop-synth/src/effect"
	"github.com/jinjor/desktop-synth/src/synth"
)

const (
	// DefaultSampleRate ...
	DefaultSampleRate = 48000
	channelNum        = 2
	bitDepthInBytes   = 2
	samplesPerCycle   = 1024
	fftSize           = 2048 // multiple of samplesPerCycle
)
const bytesPerSample = bitDepthInBytes * channelNum
const bufferSizeInBytes = samplesPerCycle * bytesPerSample // should be >= 4096

// ----- Changes ----- //

// Changes ...
type Changes struct {
	sync.Mutex
	dict map[string]struct{}
}

func newChanges() *Changes {
	return &Changes{dict: make(map[string]struct{})}
}

// Add ...
func (c *Changes) Add(key string) {
	c.Lock()
	c.dict[key] = struct{}{}
	c.Unlock()
}

// Has ...
func (c *Changes) Has(key string) bool {
	c.Lock()
	_, ok := c.dict[key]
	c.Unlock()
	return ok
}

// Delete ...
func (c *Changes) Delete(key string) {
	c.Lock()
	delete(c.dict, key)
	c.Unlock()
}

// ----- State ----- //

// state is everything shared between the audio pull and the control side.
// One lock guards all of it.
type state struct {
	sync.Mutex
	synth *synth.Synth
	pos   int64
	out   []float64 // length: fftSize
}

func newState(sampleRate int) *state {
	return &state{
		synth: synth.New(float64(sampleRate)),
		out:   make([]float64, fftSize),
	}
}

// ----- Audio ----- //

// Audio ...
type Audio struct {
	ctx        context.Context
	otoContext *oto.Context
	CommandCh  chan []string
	state      *state
	Changes    *Changes
	fft        *FFT
	fftResult  []float64 // length: fftSize
}

var _ io.Reader = (*Audio)(nil)

// NewAudio opens the output device and starts processing commands.
func NewAudio(sampleRate int) (*Audio, error) {
	otoContext, err := oto.NewContext(sampleRate, channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return nil, err
	}
	audio := newAudio(sampleRate)
	audio.otoContext = otoContext
	go processCommands(audio, audio.CommandCh)
	return audio, nil
}

// newAudio builds the engine without a device.
func newAudio(sampleRate int) *Audio {
	return &Audio{
		ctx:       context.Background(),
		CommandCh: make(chan []string, 256),
		state:     newState(sampleRate),
		Changes:   newChanges(),
		fft:       NewFFT(fftSize),
		fftResult: make([]float64, fftSize),
	}
}

func (a *Audio) Read(buf []byte) (int, error) {
	select {
	case <-a.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
		a.state.Lock()
		defer a.state.Unlock()
		bufSamples := len(buf) / bytesPerSample
		for i := 0; i < bufSamples; i++ {
			value := a.state.synth.NextSample()
			a.state.out[a.state.pos%fftSize] = value
			a.state.pos++
			for ch := 0; ch < channelNum; ch++ {
				writeSample(value, buf[bytesPerSample*i+bitDepthInBytes*ch:])
			}
		}
		return bufSamples * bytesPerSample, nil
	}
}

func writeSample(value float64, buf []byte) {
	if value > 1 {
		value = 1
	} else if value < -1 {
		value = -1
	}
	switch bitDepthInBytes {
	case 1:
		const max = 127
		b := int(value * max)
		buf[0] = byte(b + 128)
	case 2:
		const max = 32767
		b := int16(value * max)
		buf[0] = byte(b)
		buf[1] = byte(b >> 8)
	}
}

func processCommands(audio *Audio, commandCh <-chan []string) {
	for command := range commandCh {
		if err := audio.update(command); err != nil {
			log.Printf("failed to apply command %v: %v\n", command, err)
		}
	}
	log.Println("processCommands() ended.")
}

func (a *Audio) update(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("empty command")
	}
	a.state.Lock()
	defer a.state.Unlock()

	s := a.state.synth
	switch command[0] {
	case "note_on":
		note, err := parseNote(command)
		if err != nil {
			return err
		}
		s.NoteOn(note)
		return nil
	case "note_off":
		note, err := parseNote(command)
		if err != nil {
			return err
		}
		s.NoteOff(note)
		return nil
	case "all_notes_off":
		s.AllNotesOff()
		return nil
	case "set":
		if err := a.set(command[1:]); err != nil {
			return err
		}
	case "add_effect":
		if len(command) != 2 {
			return fmt.Errorf("invalid command %v", command)
		}
		kind, err := effect.KindFromString(command[1])
		if err != nil {
			return err
		}
		e, err := effect.New(kind, s.SampleRate())
		if err != nil {
			return err
		}
		s.AddEffect(e)
	case "remove_effect":
		if len(command) != 2 {
			return fmt.Errorf("invalid command %v", command)
		}
		index, err := strconv.Atoi(command[1])
		if err != nil {
			return err
		}
		if err := s.Effects().Remove(index); err != nil {
			return err
		}
	case "reset_effects":
		s.ResetEffects()
	default:
		return fmt.Errorf("unknown command %v", command[0])
	}
	a.Changes.Add("data")
	return nil
}

func (a *Audio) set(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("invalid set command")
	}
	s := a.state.synth
	switch command[0] {
	case "synth":
		command = command[1:]
		if len(command) != 2 {
			return fmt.Errorf("invalid key-value pair %v", command)
		}
		return s.Set(command[0], command[1])
	case "effect":
		command = command[1:]
		if len(command) != 3 {
			return fmt.Errorf("invalid effect command %v", command)
		}
		index, err := strconv.Atoi(command[0])
		if err != nil {
			return err
		}
		return s.Effects().Set(index, command[1], command[2])
	}
	return fmt.Errorf("unknown target %v", command[0])
}

func parseNote(command []string) (int, error) {
	if len(command) != 2 {
		return 0, fmt.Errorf("invalid command %v", command)
	}
	note, err := strconv.ParseInt(command[1], 10, 32)
	if err != nil {
		return 0, err
	}
	if note < 0 || note > synth.MaxNote {
		return 0, fmt.Errorf("note out of range: %d", note)
	}
	return int(note), nil
}

// NoteOn ...
func (a *Audio) NoteOn(note int) {
	a.state.Lock()
	a.state.synth.NoteOn(note)
	a.state.Unlock()
}

// NoteOff ...
func (a *Audio) NoteOff(note int) {
	a.state.Lock()
	a.state.synth.NoteOff(note)
	a.state.Unlock()
}

// AddMidiEvent ...
func (a *Audio) AddMidiEvent(data []byte) {
	note, on, ok := parseMidiNote(data)
	if !ok {
		return
	}
	if on {
		log.Printf("got note-on: %v\n", data)
		a.NoteOn(note)
	} else {
		log.Printf("got note-off: %v\n", data)
		a.NoteOff(note)
	}
}

type audioJSON struct {
	Synth   json.RawMessage `json:"synth"`
	Effects json.RawMessage `json:"effects,omitempty"`
}

// ApplyJSON applies synth params. Effects in data are ignored.
func (a *Audio) ApplyJSON(data []byte) error {
	a.state.Lock()
	defer a.state.Unlock()
	var j audioJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("failed to apply JSON to Audio: %w", err)
	}
	if err := a.state.synth.ApplyJSON(j.Synth); err != nil {
		return err
	}
	a.Changes.Add("data")
	return nil
}

// ToJSON ...
func (a *Audio) ToJSON() []byte {
	a.state.Lock()
	defer a.state.Unlock()
	bytes, err := json.Marshal(&audioJSON{
		Synth:   a.state.synth.ToJSON(),
		Effects: a.state.synth.Effects().ToJSON(),
	})
	if err != nil {
		panic(err)
	}
	return bytes
}

// Close ...
func (a *Audio) Close() error {
	log.Println("Closing Audio...")
	close(a.CommandCh)
	if a.otoContext == nil {
		return nil
	}
	return a.otoContext.Close()
}

// Start copies samples to the device until ctx is cancelled.
func (a *Audio) Start(ctx context.Context) error {
	p := a.otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	a.ctx = ctx

	// block until cancel() called
	if _, err := io.CopyBuffer(p, a, make([]byte, bufferSizeInBytes)); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}

// GetFFT returns the magnitude spectrum of the latest fftSize samples.
func (a *Audio) GetFFT() []float64 {
	a.state.Lock()
	// out:       | 4 | 1 | 2 | 3 |
	// offset:        ^
	// fftResult: | 1 | 2 | 3 | 4 |
	// return:    |<----->|
	offset := a.state.pos % fftSize
	copy(a.fftResult, a.state.out[offset:])
	copy(a.fftResult[fftSize-offset:], a.state.out[:offset])
	a.state.Unlock()
	Han(a.fftResult)
	if err := a.fft.CalcAbs(a.fftResult); err != nil {
		log.Printf("failed to calculate FFT: %v\n", err)
		return nil
	}
	for i, value := range a.fftResult {
		a.fftResult[i] = value * 2 / fftSize
	}
	return a.fftResult[:fftSize/2]
}
