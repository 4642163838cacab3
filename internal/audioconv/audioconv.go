// Package audioconv decodes the containers Telegram delivers for voice
// notes (Ogg Opus, occasionally Ogg Vorbis or WAV from other clients) into
// a canonical mono 16 kHz 16-bit WAV file for the transcription upload.
package audioconv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

const targetRate = 16000

// DecodeToWAV16k reads the audio container at srcPath and writes a mono
// 16 kHz 16-bit PCM WAV file to dstPath.
func DecodeToWAV16k(srcPath, dstPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()

	samples, err := decodePCM(f)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return errors.New("decoded stream contains no samples")
	}
	return writeWAV(dstPath, samples)
}

func decodePCM(f *os.File) ([]float32, error) {
	magic, err := bufio.NewReader(f).Peek(4)
	if err != nil {
		return nil, fmt.Errorf("read container magic: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	switch string(magic) {
	case "OggS":
		// Telegram voice notes are Opus in an Ogg container. Vorbis is the
		// fallback for files forwarded from other sources.
		if s, err := decodeOggOpus(f); err == nil {
			return s, nil
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		s, err := decodeOggVorbis(f)
		if err != nil {
			return nil, fmt.Errorf("ogg container is neither opus nor vorbis: %w", err)
		}
		return s, nil
	case "RIFF":
		return decodeWAV(f)
	default:
		return nil, fmt.Errorf("unsupported audio container (magic %q)", string(magic))
	}
}

func decodeOggOpus(r io.ReadSeeker) ([]float32, error) {
	dec, err := popus.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	defer dec.Destroy()

	ch := dec.ChannelCount()
	if ch <= 0 {
		ch = 1
	}

	// Opus always decodes at 48 kHz.
	var pcm []float32
	buf := make([]int16, 48000*ch/2)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			pcm = append(pcm, int16ToFloat32(buf[:n*ch])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	if ch > 1 {
		pcm = downmix(pcm, ch)
	}
	return resample(pcm, 48000, targetRate), nil
}

func decodeOggVorbis(r io.Reader) ([]float32, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("invalid ogg/vorbis stream")
	}
	if format.Channels > 1 {
		pcm = downmix(pcm, format.Channels)
	}
	return resample(pcm, format.SampleRate, targetRate), nil
}

func decodeWAV(r io.ReadSeeker) ([]float32, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav file")
	}
	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if pb == nil || len(pb.Data) == 0 {
		return nil, errors.New("empty wav file")
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	pcm := intToFloat32(pb.Data, bitDepth)

	channels, rate := 1, 44100
	if pb.Format != nil {
		if pb.Format.NumChannels > 0 {
			channels = pb.Format.NumChannels
		}
		if pb.Format.SampleRate > 0 {
			rate = pb.Format.SampleRate
		}
	}
	if channels > 1 {
		pcm = downmix(pcm, channels)
	}
	return resample(pcm, rate, targetRate), nil
}

func writeWAV(path string, samples []float32) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(out, targetRate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		v := int(math.Round(float64(s) * 32767))
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		data[i] = v
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: targetRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		out.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func int16ToFloat32(in []int16) []float32 {
	out := make([]float32, len(in))
	const scale = 1.0 / 32768.0
	for i, v := range in {
		out[i] = float32(float64(v) * scale)
	}
	return out
}

func intToFloat32(in []int, bitDepth int) []float32 {
	out := make([]float32, len(in))
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	for i, v := range in {
		f := float64(v) * scale
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		out[i] = float32(f)
	}
	return out
}

// downmix averages interleaved channels into mono.
func downmix(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	frames := len(in) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		base := i * channels
		for c := 0; c < channels; c++ {
			sum += float64(in[base+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

// resample performs linear interpolation between sample rates.
func resample(in []float32, inRate, outRate int) []float32 {
	if inRate == outRate || len(in) == 0 {
		return in
	}
	ratio := float64(outRate) / float64(inRate)
	n := int(math.Ceil(float64(len(in)) * ratio))
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		src := float64(i) / ratio
		i0 := int(math.Floor(src))
		i1 := i0 + 1
		if i0 >= len(in) {
			out[i] = in[len(in)-1]
			continue
		}
		if i1 >= len(in) {
			out[i] = in[i0]
			continue
		}
		a := float32(src - float64(i0))
		out[i] = in[i0]*(1-a) + in[i1]*a
	}
	return out
}
