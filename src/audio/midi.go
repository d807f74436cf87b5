package audio

import (
	"context"
	"log"

	"gitlab.com/gomidi/rtmididrv"
)

const (
	statusNoteOff = 0x8
	statusNoteOn  = 0x9
)

// parseMidiNote reads a channel voice message. Note-on with velocity 0 is a
// note-off.
func parseMidiNote(data []byte) (note int, on bool, ok bool) {
	if len(data) < 3 {
		return 0, false, false
	}
	switch data[0] >> 4 {
	case statusNoteOff:
		return int(data[1] & 0x7f), false, true
	case statusNoteOn:
		return int(data[1] & 0x7f), data[2] > 0, true
	}
	return 0, false, false
}

// ListenToMidiIn forwards raw messages from the first MIDI input until ctx
// is done.
func ListenToMidiIn(ctx context.Context) <-chan []byte {
	ch := make(chan []byte, 65536)
	go func() {
		defer close(ch)
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			if err := drv.Close(); err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)

		if len(ins) == 0 {
			log.Println("WARN: MIDI IN not found")
			return
		}
		in := ins[0]
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			if err := in.Close(); err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		log.Println("start listening MIDI IN...")
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			msg := make([]byte, len(data))
			copy(msg, data)
			select {
			case ch <- msg:
			default:
				log.Println("WARN: MIDI IN buffer full")
			}
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
			return
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			if err := in.StopListening(); err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		<-ctx.Done()
	}()
	return ch
}
