package mixer

// Mix produces exactly n interleaved stereo frames (2*n floats) into
// out, which must have room for at least 2*n floats, and returns n. It
// never blocks and never allocates once its internal scratch buffer has
// grown to cover the largest n seen so far. Must be called from exactly
// one goroutine ("the mix thread"); Mixer's other methods may run
// concurrently from a different goroutine but not from this one.
func (m *Mixer) Mix(out []float32, n int) int {
	if n <= 0 {
		return n
	}
	if m.scalar {
		return m.mixScalar(out, n)
	}
	return m.mixBlock(out, n)
}

func (m *Mixer) mixScalar(out []float32, n int) int {
	buf := out[:n*2]
	for i := range buf {
		buf[i] = 0
	}

	vol := m.loadVolume()
	for i := range m.layers {
		m.mixLayerScalar(&m.layers[i], vol, buf)
	}
	if m.clip {
		clip(buf)
	}
	return n
}

func (m *Mixer) mixBlock(out []float32, n int) int {
	remaining := n
	outOff := 0

	if m.carryN > 0 {
		take := m.carryN
		if take > remaining {
			take = remaining
		}
		copy(out[outOff*2:], m.carry[:take*2])
		if take < m.carryN {
			copy(m.carry, m.carry[take*2:m.carryN*2])
		}
		m.carryN -= take
		remaining -= take
		outOff += take
		if remaining == 0 {
			return n
		}
	}

	frames := (remaining + 3) &^ 3
	accum := m.ensureScratch(frames * 2)
	for i := range accum {
		accum[i] = 0
	}

	vol := m.loadVolume()
	for i := range m.layers {
		m.mixLayerBlock(&m.layers[i], vol, accum, frames)
	}
	if m.clip {
		clip(accum)
	}

	copy(out[outOff*2:outOff*2+remaining*2], accum[:remaining*2])

	leftover := frames - remaining
	if leftover > 0 {
		copy(m.carry[:leftover*2], accum[remaining*2:frames*2])
	}
	m.carryN = leftover

	return n
}

// ensureScratch returns m.scratch resized to at least n floats, growing
// it (and thus allocating) only the first time a given call size is
// exceeded. In steady-state operation where Mix is always called with
// the same or a smaller n, no further allocation occurs — the closest
// portable equivalent of the specification's stack-allocated SIMD
// accumulator, since Go has no variable-length stack allocation.
func (m *Mixer) ensureScratch(n int) []float32 {
	if cap(m.scratch) < n {
		m.scratch = make([]float32, n)
	}
	return m.scratch[:n]
}

func clip(buf []float32) {
	for i, v := range buf {
		if v < -1 {
			buf[i] = -1
		} else if v > 1 {
			buf[i] = 1
		}
	}
}

// mixLayerScalar mixes one layer's contribution into buf using the
// scalar (1-frame-per-step) kernels.
func (m *Mixer) mixLayerScalar(l *layer, vol float32, buf []float32) {
	flag := LayerState(l.flag.Load())
	if flag == free {
		return
	}

	cur := l.cursor.Load()
	g := l.loadGain()
	g.left *= vol
	g.right *= vol
	fnum := len(buf) / 2

	if flag < Play {
		if l.fade > 0 && cur < l.end {
			if l.snd.channels == 1 {
				cur = mixFadeMonoScalar(l, cur, g, buf, fnum)
			} else {
				cur = mixFadeStereoScalar(l, cur, g, buf, fnum)
			}
		}
		if flag == Stop && (l.fade == 0 || cur == l.end) {
			l.flag.Store(uint32(free))
		}
		return
	}

	loop := flag == Loop
	if l.snd.channels == 1 {
		cur = mixPlayMonoScalar(l, loop, cur, g, buf, fnum)
	} else {
		cur = mixPlayStereoScalar(l, loop, cur, g, buf, fnum)
	}
	if flag == Play && cur == l.end {
		l.flag.CompareAndSwap(uint32(Play), uint32(free))
	}
}

// mixLayerBlock mixes one layer's contribution into buf using the block
// (4-frames-per-step) kernels. fnum is always a multiple of 4.
func (m *Mixer) mixLayerBlock(l *layer, vol float32, buf []float32, fnum int) {
	flag := LayerState(l.flag.Load())
	if flag == free {
		return
	}

	cur := l.cursor.Load()
	g := l.loadGain()
	g.left *= vol
	g.right *= vol

	if flag < Play {
		if l.fade > 0 && cur < l.end {
			if l.snd.channels == 1 {
				cur = mixFadeMonoBlock(l, cur, g, buf, fnum)
			} else {
				cur = mixFadeStereoBlock(l, cur, g, buf, fnum)
			}
		}
		if flag == Stop && (l.fade == 0 || cur == l.end) {
			l.flag.Store(uint32(free))
		}
		return
	}

	loop := flag == Loop
	if l.snd.channels == 1 {
		cur = mixPlayMonoBlock(l, loop, cur, g, buf, fnum)
	} else {
		cur = mixPlayStereoBlock(l, loop, cur, g, buf, fnum)
	}
	if flag == Play && cur == l.end {
		l.flag.CompareAndSwap(uint32(Play), uint32(free))
	}
}
