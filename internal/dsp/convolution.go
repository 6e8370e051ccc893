package dsp

// Convolution is a direct-form FIR convolver, suitable for the short
// impulse responses a live-coded graph realistically carries (hundreds of
// taps); it is not an FFT-partitioned convolver, which would be overkill
// for this node's expected use (small IRs, not full-length room captures).
type Convolution struct {
	kernel  []float32
	history []float32
	pos     int
}

func NewConvolution(kernel []float32) *Convolution {
	k := make([]float32, len(kernel))
	copy(k, kernel)
	if len(k) == 0 {
		k = []float32{1}
	}
	return &Convolution{kernel: k, history: make([]float32, len(k))}
}

func (c *Convolution) SetKernel(kernel []float32) {
	k := make([]float32, len(kernel))
	copy(k, kernel)
	if len(k) == 0 {
		k = []float32{1}
	}
	c.kernel = k
	c.history = make([]float32, len(k))
	c.pos = 0
}

func (c *Convolution) Process(x float32) float32 {
	n := len(c.kernel)
	c.history[c.pos] = x
	var sum float32
	idx := c.pos
	for i := 0; i < n; i++ {
		sum += c.kernel[i] * c.history[idx]
		idx--
		if idx < 0 {
			idx = n - 1
		}
	}
	c.pos++
	if c.pos >= n {
		c.pos = 0
	}
	return sum
}
