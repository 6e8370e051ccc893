// Package samplebank loads and caches the WAV buffers that Sample nodes in
// the signal graph play back. Lookup is pure from the graph's perspective:
// the same (name, index) pair always yields the same buffer once loaded.
package samplebank

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-audio/wav"
)

// AudioBuffer is an immutable, shared-ownership decoded sample: once
// returned from Load it is never mutated, so many voices can play the same
// buffer concurrently without locking.
type AudioBuffer struct {
	Channels   int
	SampleRate int
	Data       []float32 // interleaved by Channels
}

// Frames reports the buffer's length in sample-frames (per channel).
func (b *AudioBuffer) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Bank resolves a sample name and index to a decoded buffer. Name lookup is
// case-sensitive; a missing sample reports ok=false rather than an error, so
// callers (the Sample node) can skip the trigger and log a warning instead
// of failing the whole graph.
type Bank interface {
	Load(name string, index uint32) (buf *AudioBuffer, ok bool)
}

// DiskBank loads "<root>/<name>/<index>.wav" files on first request and
// caches the decoded result for the life of the process.
type DiskBank struct {
	root string

	mu    sync.RWMutex
	cache map[string]*AudioBuffer
}

// NewDiskBank creates a bank rooted at dir. dir need not exist yet; missing
// directories simply yield misses.
func NewDiskBank(dir string) *DiskBank {
	return &DiskBank{root: dir, cache: make(map[string]*AudioBuffer)}
}

func cacheKey(name string, index uint32) string {
	return fmt.Sprintf("%s:%d", name, index)
}

func (b *DiskBank) Load(name string, index uint32) (*AudioBuffer, bool) {
	key := cacheKey(name, index)

	b.mu.RLock()
	if buf, ok := b.cache[key]; ok {
		b.mu.RUnlock()
		return buf, buf != nil
	}
	b.mu.RUnlock()

	buf, err := b.decode(name, index)

	b.mu.Lock()
	defer b.mu.Unlock()
	// Another goroutine may have raced us to the same key; keep whichever
	// was cached first so all callers observe the same buffer identity.
	if existing, ok := b.cache[key]; ok {
		return existing, existing != nil
	}
	if err != nil {
		b.cache[key] = nil
		return nil, false
	}
	b.cache[key] = buf
	return buf, true
}

func (b *DiskBank) decode(name string, index uint32) (*AudioBuffer, error) {
	path := filepath.Join(b.root, name, fmt.Sprintf("%d.wav", index))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("samplebank: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("samplebank: %s is not a valid WAV file", path)
	}
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("samplebank: decode %s: %w", path, err)
	}

	data := make([]float32, len(pcm.Data))
	max := float32(int(1) << uint(pcm.SourceBitDepth-1))
	if pcm.SourceBitDepth == 0 {
		max = float32(int(1) << 15)
	}
	for i, s := range pcm.Data {
		data[i] = float32(s) / max
	}

	return &AudioBuffer{
		Channels:   pcm.Format.NumChannels,
		SampleRate: pcm.Format.SampleRate,
		Data:       data,
	}, nil
}
