package mixer

// Scalar mixing kernels: one frame per step, used when the mixer is built
// with WithScalarMode(). Four variants — {fade, play} x {mono, stereo} —
// matching the block kernels in kernels_block.go frame for frame, except
// for cadence (1 frame per step here, 4 per step there).

// mixFadeMonoScalar fades a mono layer out, one frame at a time. Returns
// the new cursor position.
func mixFadeMonoScalar(l *layer, cur int32, g gainPair, buf []float32, fnum int) int32 {
	old := cur
	if l.fade < l.end-cur {
		for i := 0; i < fnum; i++ {
			if l.fade == 0 {
				break
			}
			if cur >= 0 {
				fmul := float32(l.fade) / float32(l.fmax)
				sam := l.snd.samples[cur%l.snd.length]
				buf[i*2] += sam * fmul * g.left
				buf[i*2+1] += sam * fmul * g.right
			}
			l.fade--
			cur++
		}
	} else {
		for i := 0; i < fnum; i++ {
			if cur == l.end {
				break
			}
			if cur >= 0 {
				sam := l.snd.samples[cur%l.snd.length]
				buf[i*2] += sam * g.left
				buf[i*2+1] += sam * g.right
			}
			cur++
		}
	}
	if !l.cursor.CompareAndSwap(old, cur) {
		cur = old
	}
	return cur
}

// mixFadeStereoScalar fades a stereo layer out, one frame at a time.
func mixFadeStereoScalar(l *layer, cur int32, g gainPair, buf []float32, fnum int) int32 {
	old := cur
	if l.fade < l.end-cur {
		for i := 0; i < fnum; i++ {
			if l.fade == 0 {
				break
			}
			if cur >= 0 {
				fmul := float32(l.fade) / float32(l.fmax)
				off := (cur % l.snd.length) * 2
				buf[i*2] += l.snd.samples[off] * fmul * g.left
				buf[i*2+1] += l.snd.samples[off+1] * fmul * g.right
			}
			l.fade--
			cur++
		}
	} else {
		for i := 0; i < fnum; i++ {
			if cur == l.end {
				break
			}
			if cur >= 0 {
				off := (cur % l.snd.length) * 2
				buf[i*2] += l.snd.samples[off] * g.left
				buf[i*2+1] += l.snd.samples[off+1] * g.right
			}
			cur++
		}
	}
	if !l.cursor.CompareAndSwap(old, cur) {
		cur = old
	}
	return cur
}

// mixPlayMonoScalar plays (and fades in, if needed) a mono layer one
// frame at a time. loop wraps the cursor back to start at end instead of
// stopping there.
func mixPlayMonoScalar(l *layer, loop bool, cur int32, g gainPair, buf []float32, fnum int) int32 {
	old := cur
	if l.fade < l.fmax {
		for i := 0; i < fnum; i++ {
			if cur == l.end {
				if !loop {
					break
				}
				cur = l.start
			}
			if cur >= 0 {
				fmul := float32(l.fade) / float32(l.fmax)
				sam := l.snd.samples[cur%l.snd.length]
				buf[i*2] += sam * fmul * g.left
				buf[i*2+1] += sam * fmul * g.right
			}
			if l.fade < l.fmax {
				l.fade++
			}
			cur++
		}
	} else {
		for i := 0; i < fnum; i++ {
			if cur == l.end {
				if !loop {
					break
				}
				cur = l.start
			}
			if cur >= 0 {
				sam := l.snd.samples[cur%l.snd.length]
				buf[i*2] += sam * g.left
				buf[i*2+1] += sam * g.right
			}
			cur++
		}
	}
	if !l.cursor.CompareAndSwap(old, cur) {
		cur = old
	}
	return cur
}

// mixPlayStereoScalar plays (and fades in, if needed) a stereo layer one
// frame at a time.
func mixPlayStereoScalar(l *layer, loop bool, cur int32, g gainPair, buf []float32, fnum int) int32 {
	old := cur
	if l.fade < l.fmax {
		for i := 0; i < fnum; i++ {
			if cur == l.end {
				if !loop {
					break
				}
				cur = l.start
			}
			if cur >= 0 {
				fmul := float32(l.fade) / float32(l.fmax)
				off := (cur % l.snd.length) * 2
				buf[i*2] += l.snd.samples[off] * fmul * g.left
				buf[i*2+1] += l.snd.samples[off+1] * fmul * g.right
			}
			if l.fade < l.fmax {
				l.fade++
			}
			cur++
		}
	} else {
		for i := 0; i < fnum; i++ {
			if cur == l.end {
				if !loop {
					break
				}
				cur = l.start
			}
			if cur >= 0 {
				off := (cur % l.snd.length) * 2
				buf[i*2] += l.snd.samples[off] * g.left
				buf[i*2+1] += l.snd.samples[off+1] * g.right
			}
			cur++
		}
	}
	if !l.cursor.CompareAndSwap(old, cur) {
		cur = old
	}
	return cur
}
