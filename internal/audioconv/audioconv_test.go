package audioconv

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeTestWAV(t *testing.T, path string, rate, channels, frames int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	data := make([]int, frames*channels)
	for i := range data {
		data[i] = (i%200 - 100) * 50
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encoder Write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("encoder Close: %v", err)
	}
}

func TestDecodeToWAV16k_WAVInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "in.wav")
	dst := filepath.Join(dir, "out.wav")
	writeTestWAV(t, src, 8000, 2, 1600)

	if err := DecodeToWAV16k(src, dst); err != nil {
		t.Fatalf("DecodeToWAV16k() error = %v", err)
	}

	f, err := os.Open(dst)
	if err != nil {
		t.Fatalf("Open output: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("output is not a valid wav file")
	}
	pb, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	if pb.Format.NumChannels != 1 {
		t.Errorf("channels = %d, want 1", pb.Format.NumChannels)
	}
	if pb.Format.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want 16000", pb.Format.SampleRate)
	}
	// 1600 frames at 8 kHz upsample to ~3200 at 16 kHz.
	if got := len(pb.Data); got < 3000 || got > 3400 {
		t.Errorf("sample count = %d, want ~3200", got)
	}
}

func TestDecodeToWAV16k_UnsupportedContainer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "in.bin")
	if err := os.WriteFile(src, []byte("definitely not audio"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := DecodeToWAV16k(src, filepath.Join(dir, "out.wav")); err == nil {
		t.Error("DecodeToWAV16k() succeeded on garbage input")
	}
}

func TestDecodeToWAV16k_MissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := DecodeToWAV16k(filepath.Join(dir, "missing.oga"), filepath.Join(dir, "out.wav")); err == nil {
		t.Error("DecodeToWAV16k() succeeded on a missing file")
	}
}

func TestResample(t *testing.T) {
	t.Parallel()

	in := make([]float32, 1200)
	for i := range in {
		in[i] = float32(math.Sin(float64(i) / 10))
	}

	t.Run("same rate is identity", func(t *testing.T) {
		t.Parallel()
		out := resample(in, 16000, 16000)
		if len(out) != len(in) {
			t.Errorf("len = %d, want %d", len(out), len(in))
		}
	})

	t.Run("downsample 48k to 16k thirds the length", func(t *testing.T) {
		t.Parallel()
		out := resample(in, 48000, 16000)
		if got, want := len(out), 400; got != want {
			t.Errorf("len = %d, want %d", got, want)
		}
	})
}

func TestDownmix(t *testing.T) {
	t.Parallel()

	in := []float32{1, 0, 0.5, 0.5, -1, 1}
	out := downmix(in, 2)
	want := []float32{0.5, 0.5, 0}
	if len(out) != len(want) {
		t.Fatalf("len = %d, want %d", len(out), len(want))
	}
	for i := range want {
		if math.Abs(float64(out[i]-want[i])) > 1e-6 {
			t.Errorf("out[%d] = %f, want %f", i, out[i], want[i])
		}
	}
}
