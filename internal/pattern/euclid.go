package pattern

// Bjorklund distributes k pulses as evenly as possible over n slots using the
// standard Euclidean-rhythm construction (Bjorklund's algorithm / the same
// result as Toussaint's "The Euclidean Algorithm Generates Traditional
// Musical Rhythms"). It returns a slice of length n, true where a pulse
// falls. k outside [0, n] is clamped.
func Bjorklund(k, n int) []bool {
	if n <= 0 {
		return nil
	}
	if k < 0 {
		k = 0
	}
	if k > n {
		k = n
	}
	if k == 0 {
		return make([]bool, n)
	}
	if k == n {
		out := make([]bool, n)
		for i := range out {
			out[i] = true
		}
		return out
	}

	// Standard Bjorklund construction: repeatedly fold the shorter remainder
	// sequence into the longer one, the same recurrence used to compute a
	// continued-fraction / GCD expansion of k/n.
	counts := []int{}
	remainders := []int{k}
	divisor := n - k
	level := 0
	for {
		counts = append(counts, divisor/remainders[level])
		remainders = append(remainders, divisor%remainders[level])
		divisor = remainders[level]
		level++
		if remainders[level] <= 1 {
			break
		}
	}
	counts = append(counts, divisor)

	var pattern []bool
	var build func(lvl int)
	build = func(lvl int) {
		switch {
		case lvl == -1:
			pattern = append(pattern, false)
		case lvl == -2:
			pattern = append(pattern, true)
		default:
			for i := 0; i < counts[lvl]; i++ {
				build(lvl - 1)
			}
			if remainders[lvl] != 0 {
				build(lvl - 2)
			}
		}
	}
	build(level)

	if len(pattern) != n {
		return bjorklundFallback(k, n)
	}
	// Rotate so the pattern starts on a pulse, matching the conventional
	// presentation of Euclidean rhythms (e.g. E(3,8) = 1,0,0,1,0,0,1,0).
	first := -1
	for i, on := range pattern {
		if on {
			first = i
			break
		}
	}
	if first <= 0 {
		return pattern
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = pattern[(i+first)%n]
	}
	return out
}

// bjorklundFallback is a simple, unambiguously-correct (if less traditional)
// construction used only if the recursive building above ever produces the
// wrong length pattern for an edge-case input; it places pulses at
// round(i*n/k) for i in [0,k), which is the well-known "evenly spaced"
// approximation and always has exactly k pulses in n slots.
func bjorklundFallback(k, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < k; i++ {
		idx := (i * n) / k
		out[idx] = true
	}
	return out
}

// Rotate returns pulses rotated left by r slots (so pulses[r] becomes the
// new pulses[0]), matching the mini-notation's "bd(3,8,rot)" third argument.
func Rotate(pulses []bool, r int) []bool {
	n := len(pulses)
	if n == 0 {
		return pulses
	}
	r = ((r % n) + n) % n
	out := make([]bool, n)
	for i := range out {
		out[i] = pulses[(i+r)%n]
	}
	return out
}

// Euclid plays p on the pulses of a Bjorklund(k,n) rhythm, optionally rotated
// by rot slots, and rests elsewhere. 0 <= k <= n per spec; k/n outside that
// range are clamped by Bjorklund.
func Euclid[T any](k, n, rot int, p Pattern[T]) Pattern[T] {
	pulses := Rotate(Bjorklund(k, n), rot)
	if len(pulses) == 0 {
		return Silence[T]()
	}
	steps := make([]Pattern[T], len(pulses))
	for i, on := range pulses {
		if on {
			steps[i] = p
		} else {
			steps[i] = Silence[T]()
		}
	}
	return FastCat(steps...)
}
