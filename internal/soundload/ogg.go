package soundload

import (
	"fmt"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/vorbis"

	"github.com/bareroseaudio/mixer"
)

// LoadOGG reads an OGG Vorbis file from disk, fully decodes it, and
// returns a mixer.Sound at the file's native sample rate. Unlike a
// streaming player, the Mixer needs the whole buffer up front: Sound is
// immutable and shared by every layer that plays it, so partial/on-demand
// decoding has no home here.
func LoadOGG(path string) (*mixer.Sound, error) {
	return LoadOGGAt(path, 0)
}

// LoadOGGAt decodes path and resamples it to targetHz before building the
// Sound. A targetHz of 0 skips resampling, leaving samples at the file's
// native rate; pass the mixer's configured output rate here when mixing
// effects recorded at a different rate than music beds.
func LoadOGGAt(path string, targetHz int) (*mixer.Sound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("soundload: open %s: %w", path, err)
	}
	defer f.Close()

	streamer, format, err := vorbis.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("soundload: decode %s: %w", path, err)
	}
	defer streamer.Close()

	if format.NumChannels != 1 && format.NumChannels != 2 {
		return nil, fmt.Errorf("soundload: unsupported channel count %d", format.NumChannels)
	}

	var src beep.Streamer = streamer
	if targetHz > 0 {
		src = resampleTo(streamer, format.SampleRate, beep.SampleRate(targetHz))
	}

	const chunk = 2048
	buf := make([][2]float64, chunk)
	samples := make([]float32, 0, chunk*2)

	for {
		n, ok := src.Stream(buf)
		for i := 0; i < n; i++ {
			if format.NumChannels == 1 {
				samples = append(samples, float32(buf[i][0]))
			} else {
				samples = append(samples, float32(buf[i][0]), float32(buf[i][1]))
			}
		}
		if !ok {
			break
		}
	}

	length := int32(len(samples) / format.NumChannels)
	return mixer.NewSound(format.NumChannels, samples, length)
}

// resampleTo converts streamer from its native rate to targetHz, matching
// a mixer built to run at a fixed sample rate. Most single-shot sound
// effects are authored at the mixer's target rate already, so this is
// only invoked when the file disagrees.
func resampleTo(streamer beep.Streamer, srcHz, targetHz beep.SampleRate) beep.Streamer {
	if srcHz == targetHz {
		return streamer
	}
	return beep.Resample(4, srcHz, targetHz, streamer)
}
