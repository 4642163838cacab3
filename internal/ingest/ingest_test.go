package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type stubFetcher struct {
	data []byte
	err  error
}

func (s stubFetcher) FetchAttachment(context.Context, string) ([]byte, error) {
	return s.data, s.err
}

func writeStubWAV(src, dst string) error {
	return os.WriteFile(dst, []byte("RIFFwav-stub"), 0o600)
}

func newTestIngestor(t *testing.T, fetcher AttachmentFetcher, decode func(src, dst string) error) *Ingestor {
	t.Helper()
	in := New(fetcher)
	in.dir = t.TempDir()
	if decode != nil {
		in.decode = decode
	}
	return in
}

func tempFileCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}
	return len(entries)
}

func TestIngest_SuccessAndCleanup(t *testing.T) {
	t.Parallel()

	in := newTestIngestor(t, stubFetcher{data: []byte("OggSopus")}, writeStubWAV)

	audio, err := in.Ingest(context.Background(), "file-1")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if _, err := os.Stat(audio.WAVPath); err != nil {
		t.Fatalf("decoded artifact missing: %v", err)
	}
	if got := tempFileCount(t, in.dir); got != 2 {
		t.Fatalf("temp file count = %d, want 2 (raw + wav)", got)
	}

	if err := audio.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := tempFileCount(t, in.dir); got != 0 {
		t.Errorf("temp file count after Close = %d, want 0", got)
	}
	// Close must be idempotent.
	if err := audio.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestIngest_DownloadFailure(t *testing.T) {
	t.Parallel()

	in := newTestIngestor(t, stubFetcher{err: errors.New("404")}, writeStubWAV)

	_, err := in.Ingest(context.Background(), "file-1")
	if !errors.Is(err, ErrDownload) {
		t.Fatalf("Ingest() error = %v, want %v", err, ErrDownload)
	}
	if got := tempFileCount(t, in.dir); got != 0 {
		t.Errorf("temp file count = %d, want 0 after download failure", got)
	}
}

func TestIngest_DecodeFailureRemovesArtifacts(t *testing.T) {
	t.Parallel()

	failDecode := func(src, dst string) error { return errors.New("not an ogg stream") }
	in := newTestIngestor(t, stubFetcher{data: []byte("garbage")}, failDecode)

	_, err := in.Ingest(context.Background(), "file-1")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("Ingest() error = %v, want %v", err, ErrDecode)
	}
	if got := tempFileCount(t, in.dir); got != 0 {
		t.Errorf("temp file count = %d, want 0 after decode failure", got)
	}
}

func TestIngest_ConcurrentRunsGetDistinctArtifacts(t *testing.T) {
	t.Parallel()

	in := newTestIngestor(t, stubFetcher{data: []byte("OggSopus")}, writeStubWAV)

	const runs = 8
	paths := make([]string, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			audio, err := in.Ingest(context.Background(), "same-ref")
			if err != nil {
				t.Errorf("Ingest() error = %v", err)
				return
			}
			paths[i] = audio.WAVPath
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if seen[p] {
			t.Fatalf("two concurrent runs shared artifact %s", p)
		}
		seen[p] = true
		if filepath.Ext(p) != ".wav" {
			t.Errorf("artifact %s does not end in .wav", p)
		}
	}
}
