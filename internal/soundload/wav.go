// Package soundload decodes audio files on disk into mixer.Sound buffers.
// All decoding happens on the control thread, ahead of any Mixer.Play call;
// none of this package touches the mix thread's hot path.
package soundload

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/bareroseaudio/mixer"
)

// riffHeader is the 12-byte RIFF/WAVE container header.
type riffHeader struct {
	ChunkID   [4]byte
	ChunkSize uint32
	Format    [4]byte
}

// fmtChunk is the subset of the "fmt " chunk this loader understands:
// uncompressed PCM only (AudioFormat 1).
type fmtChunk struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// LoadWAV reads a RIFF/WAVE file from disk and decodes it into a mixer.Sound.
// Only 8-, 16-, 24-, and 32-bit integer PCM are supported; float WAV and
// compressed formats return an error. Channel count must be mono or stereo,
// matching mixer.NewSound's requirement.
func LoadWAV(path string) (*mixer.Sound, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("soundload: read %s: %w", path, err)
	}
	return DecodeWAV(data)
}

// DecodeWAV decodes an in-memory RIFF/WAVE file into a mixer.Sound.
func DecodeWAV(data []byte) (*mixer.Sound, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("soundload: wav data too short")
	}

	var hdr riffHeader
	copy(hdr.ChunkID[:], data[0:4])
	hdr.ChunkSize = binary.LittleEndian.Uint32(data[4:8])
	copy(hdr.Format[:], data[8:12])
	if string(hdr.ChunkID[:]) != "RIFF" || string(hdr.Format[:]) != "WAVE" {
		return nil, fmt.Errorf("soundload: not a RIFF/WAVE file")
	}

	var format fmtChunk
	var pcm []byte
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := binary.LittleEndian.Uint32(data[pos+4 : pos+8])
		body := pos + 8
		end := body + int(size)
		if end > len(data) {
			end = len(data)
		}

		switch id {
		case "fmt ":
			if end-body < 16 {
				return nil, fmt.Errorf("soundload: fmt chunk too short")
			}
			format.AudioFormat = binary.LittleEndian.Uint16(data[body : body+2])
			format.NumChannels = binary.LittleEndian.Uint16(data[body+2 : body+4])
			format.SampleRate = binary.LittleEndian.Uint32(data[body+4 : body+8])
			format.ByteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
			format.BlockAlign = binary.LittleEndian.Uint16(data[body+12 : body+14])
			format.BitsPerSample = binary.LittleEndian.Uint16(data[body+14 : body+16])
		case "data":
			pcm = data[body:end]
		}

		// Chunks are word-aligned; an odd size is padded by one byte.
		pos = end
		if size%2 == 1 {
			pos++
		}
	}

	if format.AudioFormat != 1 {
		return nil, fmt.Errorf("soundload: unsupported wav audio format %d (only PCM)", format.AudioFormat)
	}
	if format.NumChannels != 1 && format.NumChannels != 2 {
		return nil, fmt.Errorf("soundload: unsupported channel count %d", format.NumChannels)
	}
	if pcm == nil {
		return nil, fmt.Errorf("soundload: no data chunk found")
	}

	samples, err := pcmToFloat32(pcm, int(format.BitsPerSample))
	if err != nil {
		return nil, err
	}

	length := int32(len(samples) / int(format.NumChannels))
	return mixer.NewSound(int(format.NumChannels), samples, length)
}

func pcmToFloat32(pcm []byte, bits int) ([]float32, error) {
	switch bits {
	case 8:
		out := make([]float32, len(pcm))
		for i, b := range pcm {
			// 8-bit WAV PCM is unsigned, centered at 128.
			out[i] = (float32(b) - 128) / 128
		}
		return out, nil
	case 16:
		n := len(pcm) / 2
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
			out[i] = float32(v) / 32768
		}
		return out, nil
	case 24:
		n := len(pcm) / 3
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			b0, b1, b2 := pcm[i*3], pcm[i*3+1], pcm[i*3+2]
			v := int32(b0) | int32(b1)<<8 | int32(b2)<<16
			if v&0x800000 != 0 {
				v |= ^int32(0xFFFFFF)
			}
			out[i] = float32(v) / 8388608
		}
		return out, nil
	case 32:
		n := len(pcm) / 4
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			v := int32(binary.LittleEndian.Uint32(pcm[i*4:]))
			out[i] = float32(v) / 2147483648
		}
		return out, nil
	default:
		return nil, fmt.Errorf("soundload: unsupported bit depth %d", bits)
	}
}
