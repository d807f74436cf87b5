package effect

import (
	"encoding/json"
	"math"
	"testing"
)

const testSampleRate = 48000

func expectEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNearlyEqual(t *testing.T, actual, expected float64) {
	t.Helper()
	if math.Abs(actual-expected) > 0.0001 {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func allEffects(t *testing.T) []Effect {
	t.Helper()
	var effects []Effect
	for kind := range kindNames {
		e, err := New(Kind(kind), testSampleRate)
		expectNoError(t, err)
		effects = append(effects, e)
	}
	return effects
}

func sineInput(n int) []float64 {
	in := make([]float64, n)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * float64(i) / 37)
	}
	return in
}

func TestKindNames(t *testing.T) {
	for kind, name := range kindNames {
		k, err := KindFromString(name)
		expectNoError(t, err)
		expectEqual(t, k, Kind(kind))
		expectEqual(t, k.String(), name)
	}
	if _, err := KindFromString("flanger"); err == nil {
		t.Errorf("expected error for unknown kind")
	}
	if _, err := New(Kind(99), testSampleRate); err == nil {
		t.Errorf("expected error for unknown kind")
	}
}

func TestEmptyStackIsIdentity(t *testing.T) {
	s := NewStack()
	for _, x := range []float64{0, 1, -1, 0.123, 42} {
		expectEqual(t, s.Process(x, testSampleRate), x)
	}
}

func TestStackOrder(t *testing.T) {
	s := NewStack()
	s.Add(NewDistortion(1, 1))
	s.Add(NewTremolo(0, 0, 1))
	// tanh first, then halved by tremolo at depth 0
	expectNearlyEqual(t, s.Process(1, testSampleRate), math.Tanh(1)*0.5)

	r := NewStack()
	r.Add(NewTremolo(0, 0, 1))
	r.Add(NewDistortion(1, 1))
	expectNearlyEqual(t, r.Process(1, testSampleRate), math.Tanh(0.5))
}

func TestStackRemoveAndSet(t *testing.T) {
	s := NewStack()
	s.Add(NewDistortion(2, 0.5))
	s.Add(NewRingMod(440, 0.5))
	expectNoError(t, s.Set(1, "frequency", "220"))
	expectEqual(t, s.At(1).(*RingMod).Frequency, 220.0)
	if err := s.Set(2, "mix", "1"); err == nil {
		t.Errorf("expected error for index out of range")
	}
	expectNoError(t, s.Remove(0))
	expectEqual(t, s.Len(), 1)
	expectEqual(t, s.At(0).Kind(), KindRingMod)
	if err := s.Remove(-1); err == nil {
		t.Errorf("expected error for index out of range")
	}
}

func TestStackRemoveReleasesEffect(t *testing.T) {
	s := NewStack()
	s.Add(NewDelay(testSampleRate, 0.5, 0, 1))
	s.Add(NewDistortion(1, 1))
	s.Add(NewRingMod(440, 1))
	expectNoError(t, s.Remove(0))
	expectEqual(t, s.Len(), 2)
	expectEqual(t, s.At(0).Kind(), KindDistortion)
	expectEqual(t, s.At(1).Kind(), KindRingMod)
	// the vacated slot of the backing array holds no effect
	expectEqual(t, s.effects[:3][2], Effect(nil))
	expectNoError(t, s.Remove(1))
	expectEqual(t, s.effects[:2][1], Effect(nil))
}

func TestDelayReproducesInput(t *testing.T) {
	d := NewDelay(testSampleRate, 0.001, 0, 1)
	length := d.Len()
	expectEqual(t, length, 48)
	in := sineInput(length)
	for i := range in {
		expectEqual(t, d.Process(in[i], testSampleRate), 0.0)
	}
	for i := range in {
		expectEqual(t, d.Process(0, testSampleRate), in[i])
	}
	for i := 0; i < length*3; i++ {
		expectEqual(t, d.Process(0, testSampleRate), 0.0)
	}
}

func TestDelayFeedback(t *testing.T) {
	d := NewDelay(testSampleRate, 0.0001, 0.5, 1) // 4 samples
	expectEqual(t, d.Len(), 4)
	d.Process(1, testSampleRate)
	for i := 0; i < 3; i++ {
		d.Process(0, testSampleRate)
	}
	expectEqual(t, d.Process(0, testSampleRate), 1.0)
	for i := 0; i < 3; i++ {
		d.Process(0, testSampleRate)
	}
	expectEqual(t, d.Process(0, testSampleRate), 0.5)
}

func TestDelayMinimumLength(t *testing.T) {
	d := NewDelay(testSampleRate, 0, 0, 1)
	expectEqual(t, d.Len(), 1)
	expectEqual(t, d.Process(0.3, testSampleRate), 0.0)
	expectEqual(t, d.Process(0, testSampleRate), 0.3)
}

func TestDelaySetDelayTime(t *testing.T) {
	d := NewDelay(testSampleRate, 0.3, 0.4, 0.5)
	d.Process(1, testSampleRate)
	expectNoError(t, Set(d, "delay_time", "0.5"))
	expectEqual(t, d.Len(), 24000)
	expectEqual(t, d.DelayTime, 0.5)
	expectNoError(t, Set(d, "delay_time", "0.1"))
	expectEqual(t, d.Len(), 4800)
	for i := 0; i < d.Len(); i++ {
		expectEqual(t, d.Process(0, testSampleRate), 0.0)
	}
}

func TestDistortion(t *testing.T) {
	d := NewDistortion(3, 0.25)
	for _, x := range []float64{-1, -0.2, 0, 0.5, 1} {
		expectNearlyEqual(t, d.Process(x, testSampleRate), x*0.75+math.Tanh(3*x)*0.25)
	}
}

func TestFilter(t *testing.T) {
	f := NewFilter(1000, 0.7, 1)
	w := 2 * math.Pi * 1000 / testSampleRate
	alpha := w / (1 + w)
	expectNearlyEqual(t, f.Process(1, testSampleRate), alpha)
	expectNearlyEqual(t, f.Process(1, testSampleRate), alpha+alpha*(1-alpha))
	for i := 0; i < 10000; i++ {
		f.Process(1, testSampleRate)
	}
	// DC passes
	expectNearlyEqual(t, f.Process(1, testSampleRate), 1)
	f.Reset()
	expectNearlyEqual(t, f.Process(1, testSampleRate), alpha)
}

func TestFilterResonanceIsInert(t *testing.T) {
	a := NewFilter(500, 0, 0.8)
	b := NewFilter(500, 0.99, 0.8)
	for _, x := range sineInput(500) {
		expectEqual(t, a.Process(x, testSampleRate), b.Process(x, testSampleRate))
	}
}

func TestTremolo(t *testing.T) {
	// 4 samples per LFO period
	tr := NewTremolo(testSampleRate/4, 1, 1)
	expectNearlyEqual(t, tr.Process(1, testSampleRate), 0.5)
	expectNearlyEqual(t, tr.Process(1, testSampleRate), 1)
	expectNearlyEqual(t, tr.Process(1, testSampleRate), 0.5)
	expectNearlyEqual(t, tr.Process(1, testSampleRate), 0)
	expectNearlyEqual(t, tr.Process(1, testSampleRate), 0.5)
	tr.Process(1, testSampleRate)
	tr.Reset()
	expectNearlyEqual(t, tr.Process(1, testSampleRate), 0.5)
	expectNearlyEqual(t, tr.Process(1, testSampleRate), 1)
}

func TestRingMod(t *testing.T) {
	r := NewRingMod(testSampleRate/4, 1)
	expectNearlyEqual(t, r.Process(2, testSampleRate), 0)
	expectNearlyEqual(t, r.Process(2, testSampleRate), 2)
	expectNearlyEqual(t, r.Process(2, testSampleRate), 0)
	expectNearlyEqual(t, r.Process(2, testSampleRate), -2)
	r.Reset()
	expectNearlyEqual(t, r.Process(2, testSampleRate), 0)

	half := NewRingMod(testSampleRate/4, 0.5)
	half.Process(2, testSampleRate)
	expectNearlyEqual(t, half.Process(2, testSampleRate), 2)
	expectNearlyEqual(t, half.Process(2, testSampleRate), 1)
}

func TestChorus(t *testing.T) {
	c := NewChorus(testSampleRate, 3, 1)
	expectEqual(t, c.Voices(), 3)
	expectNearlyEqual(t, c.Rate(0), 0.5)
	expectNearlyEqual(t, c.Rate(2), 0.9)
	expectEqual(t, c.Depth(1), 0.7)
	expectEqual(t, c.voices[0].line.len(), 1440)

	// the wet signal is a mean of delayed copies of the input
	for _, x := range sineInput(5000) {
		y := c.Process(x, testSampleRate)
		if math.Abs(y) > 1 {
			t.Fatalf("chorus output out of range: %v", y)
		}
	}
	expectNoError(t, Set(c, "rate_1", "2"))
	expectNoError(t, Set(c, "depth_2", "0.1"))
	expectEqual(t, c.Rate(1), 2.0)
	expectEqual(t, c.Depth(2), 0.1)
	for _, key := range []string{"rate_3", "depth_x", "speed"} {
		if err := Set(c, key, "1"); err == nil {
			t.Errorf("expected error for %v", key)
		}
	}
}

func TestChorusOffsetSaturates(t *testing.T) {
	for _, c := range []struct {
		depth    float64
		phase    float64
		expected int
	}{
		{0.7, 0.25, 24}, // (1+0.7)/2 * 29
		{3, 0.25, 29},   // past the end of the line
		{-3, 0.25, 0},   // before the write cursor
		{3, 0.75, 0},    // negative swing
		{0, 0.25, 14},   // centre
		{1, 0.25, 29},   // exactly the last sample
	} {
		v := chorusVoice{depth: c.depth, phase: c.phase, line: newDelayLine(30)}
		expectEqual(t, v.offset(), c.expected)
	}

	// an impulse read back through a saturated voice arrives after len-1 steps
	ch := NewChorus(testSampleRate, 1, 1)
	ch.voices[0].depth = 100
	ch.voices[0].rate = 0
	ch.voices[0].phase = 0.25
	length := ch.voices[0].line.len()
	ch.Process(1, testSampleRate)
	for i := 1; i < length-1; i++ {
		expectEqual(t, ch.Process(0, testSampleRate), 0.0)
	}
	expectEqual(t, ch.Process(0, testSampleRate), 1.0)
}

func TestChorusDryWhenMixZero(t *testing.T) {
	c := NewChorus(testSampleRate, 2, 0)
	for _, x := range sineInput(100) {
		expectEqual(t, c.Process(x, testSampleRate), x)
	}
}

func TestReverbSizes(t *testing.T) {
	sampleRate := float64(testSampleRate)
	r := NewReverb(sampleRate, 1, 1)
	expectEqual(t, len(r.combs), 4)
	expectEqual(t, len(r.allpasses), 2)
	expectEqual(t, r.combs[0].len(), int(sampleRate*combDelays[0]))
	expectEqual(t, r.allpasses[1].len(), int(sampleRate*allpassDelays[1]))
	tiny := NewReverb(testSampleRate, 0, 1)
	for _, comb := range tiny.combs {
		expectEqual(t, comb.len(), 1)
	}
	tiny.Process(1, testSampleRate)
}

func TestReverbImpulse(t *testing.T) {
	r := NewReverb(testSampleRate, 1, 1)
	// nothing comes out before the first comb and allpass delays have
	// elapsed, apart from the allpass feed-forward of a silent comb output
	expectEqual(t, r.Process(1, testSampleRate), 0.0)
	energy := 0.0
	for i := 0; i < testSampleRate; i++ {
		y := r.Process(0, testSampleRate)
		energy += y * y
	}
	if energy == 0 {
		t.Errorf("expected a reverb tail")
	}
}

func TestResetSilences(t *testing.T) {
	for _, e := range allEffects(t) {
		for _, x := range sineInput(20000) {
			e.Process(x, testSampleRate)
		}
		e.Reset()
		for i := 0; i < 20000; i++ {
			if y := e.Process(0, testSampleRate); y != 0 {
				t.Fatalf("%v: expected silence after reset, but got %v at %d", e.Kind(), y, i)
			}
		}
	}
}

func TestResetKeepsParams(t *testing.T) {
	d := NewDelay(testSampleRate, 0.2, 0.3, 0.4)
	d.Reset()
	expectEqual(t, d.Len(), 9600)
	expectEqual(t, d.Feedback, 0.3)
	expectEqual(t, d.Mix, 0.4)
}

func TestMixZeroIsDry(t *testing.T) {
	for _, e := range allEffects(t) {
		expectNoError(t, Set(e, "mix", "0"))
		for _, x := range sineInput(1000) {
			if y := e.Process(x, testSampleRate); y != x {
				t.Fatalf("%v: expected dry signal %v, but got %v", e.Kind(), x, y)
			}
		}
	}
}

func TestSetUnknownKey(t *testing.T) {
	for _, e := range allEffects(t) {
		if err := Set(e, "unknown", "1"); err == nil {
			t.Errorf("%v: expected error for unknown key", e.Kind())
		}
		if err := Set(e, "mix", "loud"); err == nil {
			t.Errorf("%v: expected error for invalid value", e.Kind())
		}
	}
}

func TestToJSON(t *testing.T) {
	s := NewStack()
	for _, e := range allEffects(t) {
		s.Add(e)
	}
	var list []struct {
		Kind string  `json:"kind"`
		Mix  float64 `json:"mix"`
	}
	expectNoError(t, json.Unmarshal(s.ToJSON(), &list))
	expectEqual(t, len(list), len(kindNames))
	for i, item := range list {
		expectEqual(t, item.Kind, kindNames[i])
		expectEqual(t, item.Mix, 0.5)
	}
}
