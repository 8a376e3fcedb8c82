package mixer

// Block mixing kernels: four frames per step, used by default (the
// "SIMD path" of the specification). A real vector backend would load
// and store these 4-frame groups with a single SSE/NEON instruction;
// this portable Go implementation processes the same groups with a
// plain loop so the two paths stay numerically indistinguishable in
// frame count and only differ in stepping granularity (see
// DESIGN.md for why hardware intrinsics are out of scope here).
//
// fnum is always a multiple of 4: callers only ever pass the aligned
// scratch-buffer frame count produced by Mixer.Mix.

const blockFrames = 4

// mixFadeMonoBlock fades a mono layer out, four frames per step.
func mixFadeMonoBlock(l *layer, cur int32, g gainPair, buf []float32, fnum int) int32 {
	old := cur
	if l.fade < l.end-cur {
		for i := 0; i < fnum; i += blockFrames {
			if l.fade == 0 {
				break
			}
			if cur >= 0 {
				fmul := float32(l.fade) / float32(l.fmax)
				base := cur % l.snd.length
				for j := 0; j < blockFrames; j++ {
					sam := l.snd.samples[base+int32(j)]
					buf[(i+j)*2] += sam * fmul * g.left
					buf[(i+j)*2+1] += sam * fmul * g.right
				}
			}
			l.fade -= blockFrames
			cur += blockFrames
		}
	} else {
		for i := 0; i < fnum; i += blockFrames {
			if cur == l.end {
				break
			}
			if cur >= 0 {
				base := cur % l.snd.length
				for j := 0; j < blockFrames; j++ {
					sam := l.snd.samples[base+int32(j)]
					buf[(i+j)*2] += sam * g.left
					buf[(i+j)*2+1] += sam * g.right
				}
			}
			cur += blockFrames
		}
	}
	if !l.cursor.CompareAndSwap(old, cur) {
		cur = old
	}
	return cur
}

// mixFadeStereoBlock fades a stereo layer out, four frames per step.
func mixFadeStereoBlock(l *layer, cur int32, g gainPair, buf []float32, fnum int) int32 {
	old := cur
	if l.fade < l.end-cur {
		for i := 0; i < fnum; i += blockFrames {
			if l.fade == 0 {
				break
			}
			if cur >= 0 {
				fmul := float32(l.fade) / float32(l.fmax)
				off := (cur % l.snd.length) * 2
				for j := 0; j < blockFrames*2; j += 2 {
					buf[i*2+j] += l.snd.samples[off+int32(j)] * fmul * g.left
					buf[i*2+j+1] += l.snd.samples[off+int32(j)+1] * fmul * g.right
				}
			}
			l.fade -= blockFrames
			cur += blockFrames
		}
	} else {
		for i := 0; i < fnum; i += blockFrames {
			if cur == l.end {
				break
			}
			if cur >= 0 {
				off := (cur % l.snd.length) * 2
				for j := 0; j < blockFrames*2; j += 2 {
					buf[i*2+j] += l.snd.samples[off+int32(j)] * g.left
					buf[i*2+j+1] += l.snd.samples[off+int32(j)+1] * g.right
				}
			}
			cur += blockFrames
		}
	}
	if !l.cursor.CompareAndSwap(old, cur) {
		cur = old
	}
	return cur
}

// mixPlayMonoBlock plays (and fades in, if needed) a mono layer four
// frames per step. loop wraps the cursor back to start at end instead
// of stopping there.
func mixPlayMonoBlock(l *layer, loop bool, cur int32, g gainPair, buf []float32, fnum int) int32 {
	old := cur
	if l.fade < l.fmax {
		for i := 0; i < fnum; i += blockFrames {
			if cur == l.end {
				if !loop {
					break
				}
				cur = l.start
			}
			if cur >= 0 {
				fmul := float32(l.fade) / float32(l.fmax)
				base := cur % l.snd.length
				for j := 0; j < blockFrames; j++ {
					sam := l.snd.samples[base+int32(j)]
					buf[(i+j)*2] += sam * fmul * g.left
					buf[(i+j)*2+1] += sam * fmul * g.right
				}
			}
			if l.fade < l.fmax {
				l.fade += blockFrames
			}
			cur += blockFrames
		}
	} else {
		for i := 0; i < fnum; i += blockFrames {
			if cur == l.end {
				if !loop {
					break
				}
				cur = l.start
			}
			if cur >= 0 {
				base := cur % l.snd.length
				for j := 0; j < blockFrames; j++ {
					sam := l.snd.samples[base+int32(j)]
					buf[(i+j)*2] += sam * g.left
					buf[(i+j)*2+1] += sam * g.right
				}
			}
			cur += blockFrames
		}
	}
	if !l.cursor.CompareAndSwap(old, cur) {
		cur = old
	}
	return cur
}

// mixPlayStereoBlock plays (and fades in, if needed) a stereo layer four
// frames per step.
func mixPlayStereoBlock(l *layer, loop bool, cur int32, g gainPair, buf []float32, fnum int) int32 {
	old := cur
	if l.fade < l.fmax {
		for i := 0; i < fnum; i += blockFrames {
			if cur == l.end {
				if !loop {
					break
				}
				cur = l.start
			}
			if cur >= 0 {
				fmul := float32(l.fade) / float32(l.fmax)
				off := (cur % l.snd.length) * 2
				for j := 0; j < blockFrames*2; j += 2 {
					buf[i*2+j] += l.snd.samples[off+int32(j)] * fmul * g.left
					buf[i*2+j+1] += l.snd.samples[off+int32(j)+1] * fmul * g.right
				}
			}
			if l.fade < l.fmax {
				l.fade += blockFrames
			}
			cur += blockFrames
		}
	} else {
		for i := 0; i < fnum; i += blockFrames {
			if cur == l.end {
				if !loop {
					break
				}
				cur = l.start
			}
			if cur >= 0 {
				off := (cur % l.snd.length) * 2
				for j := 0; j < blockFrames*2; j += 2 {
					buf[i*2+j] += l.snd.samples[off+int32(j)] * g.left
					buf[i*2+j+1] += l.snd.samples[off+int32(j)+1] * g.right
				}
			}
			cur += blockFrames
		}
	}
	if !l.cursor.CompareAndSwap(old, cur) {
		cur = old
	}
	return cur
}
