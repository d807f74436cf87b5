package effect

import "encoding/json"

// ----- Delay ----- //

// Delay is a feedback echo on a single circular buffer.
type Delay struct {
	DelayTime  float64 // sec
	Feedback   float64 // [0,1)
	Mix        float64 // [0,1]
	sampleRate float64
	line       *delayLine
}

// NewDelay ...
func NewDelay(sampleRate float64, delayTime float64, feedback float64, mix float64) *Delay {
	return &Delay{
		DelayTime:  delayTime,
		Feedback:   feedback,
		Mix:        mix,
		sampleRate: sampleRate,
		line:       newDelayLine(int(sampleRate * delayTime)),
	}
}

// Kind ...
func (d *Delay) Kind() Kind { return KindDelay }

// Len returns the buffer length in samples.
func (d *Delay) Len() int {
	return d.line.len()
}

// SetDelayTime resizes the buffer. Buffered audio is discarded.
func (d *Delay) SetDelayTime(delayTime float64) {
	d.DelayTime = delayTime
	d.line.resize(int(d.sampleRate * delayTime))
}

// Process ...
func (d *Delay) Process(in float64, sampleRate float64) float64 {
	delayed := d.line.getDelayed()
	d.line.step(in + delayed*d.Feedback)
	return blend(in, delayed, d.Mix)
}

// Reset ...
func (d *Delay) Reset() {
	d.line.clear()
}

func (d *Delay) set(key string, value string) error {
	switch key {
	case "delay_time":
		var t float64
		if err := parseFloat(value, &t); err != nil {
			return err
		}
		d.SetDelayTime(t)
		return nil
	case "feedback":
		return parseFloat(value, &d.Feedback)
	case "mix":
		return parseFloat(value, &d.Mix)
	}
	return errUnknownKey(key)
}

type delayJSON struct {
	Kind      string  `json:"kind"`
	DelayTime float64 `json:"delayTime"`
	Feedback  float64 `json:"feedback"`
	Mix       float64 `json:"mix"`
}

func (d *Delay) toJSON() json.RawMessage {
	return toRawMessage(&delayJSON{
		Kind:      d.Kind().String(),
		DelayTime: d.DelayTime,
		Feedback:  d.Feedback,
		Mix:       d.Mix,
	})
}
