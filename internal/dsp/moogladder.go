package dsp

import "math"

// MoogLadder is a 4-pole transistor-ladder lowpass with resonance: four
// tanh-saturated one-pole stages updated explicitly once per sample, with
// the resonance feedback taken from the previous sample's last stage. It is
// cheap enough for the per-sample graph evaluator while still
// self-oscillating as resonance approaches 4.
type MoogLadder struct {
	stage    [4]float64
	delay    [4]float64
	tanhLast [4]float64
}

func (m *MoogLadder) Reset() {
	m.stage = [4]float64{}
	m.delay = [4]float64{}
	m.tanhLast = [4]float64{}
}

// Process runs one sample through the ladder. cutoff is in Hz, resonance in
// [0,4] (4 self-oscillates).
func (m *MoogLadder) Process(x, cutoff, resonance, sampleRate float64) float64 {
	cutoff = Clamp(cutoff, 20, sampleRate*0.49)
	resonance = Clamp(resonance, 0, 4)

	fc := cutoff / sampleRate
	f := fc * 1.16
	fb := resonance * (1.0 - 0.15*f*f)

	input := x - fb*m.delay[3]
	input = tanhApprox(input)

	for i := 0; i < 4; i++ {
		var in float64
		if i == 0 {
			in = input
		} else {
			in = m.stage[i-1]
		}
		m.stage[i] = m.stage[i] + f*(tanhApprox(in)-m.tanhLast[i])
		m.tanhLast[i] = tanhApprox(m.stage[i])
		m.delay[i] = m.stage[i]
	}
	return flushDenormal(m.stage[3])
}

func tanhApprox(x float64) float64 {
	if math.Abs(x) > 4 {
		if x > 0 {
			return 1
		}
		return -1
	}
	return math.Tanh(x)
}
