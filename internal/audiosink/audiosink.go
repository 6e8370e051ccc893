// Package audiosink bridges a runtime.Runtime to a real SDL2 audio device
// for phonon live/edit. Grounded on the retrieval pack's only two SDL2
// audio-output consumers (an emulator core and a devkit), both of which
// skip SDL's native C-callback mode entirely and instead push samples with
// sdl.QueueAudio from an ordinary Go goroutine paced against
// sdl.GetQueuedAudioSize — exactly the shape used here. A cgo
// sdl.AudioCallback function pointer has no clean way to invoke back into
// a Go closure holding runtime state, so this push model is the only
// practical option from Go, not just the one the examples happened to use.
package audiosink

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/phonon-lang/phonon/internal/runtime"
)

// targetQueuedFrames is how far ahead of the device's playback position the
// sink tries to keep the SDL-side queue buffered.
const targetQueuedFrames = 2048

// fillInterval is how often the push goroutine tops up the SDL queue.
const fillInterval = 5 * time.Millisecond

const bytesPerFrame = 2 * 4 // stereo, 4 bytes per float32 sample

// Sink owns an open SDL2 audio device and a goroutine that keeps it fed
// from a runtime.Runtime.
type Sink struct {
	device sdl.AudioDeviceID
	rt     *runtime.Runtime

	stop chan struct{}
	done chan struct{}
}

// Open initializes SDL's audio subsystem and opens the default output
// device in float32, stereo, at sampleRate.
func Open(rt *runtime.Runtime, sampleRate int) (*Sink, error) {
	if err := sdl.Init(sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("audiosink: sdl init: %w", err)
	}

	spec := &sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_F32SYS,
		Channels: 2,
		Samples:  512,
	}
	obtained := &sdl.AudioSpec{}
	device, err := sdl.OpenAudioDevice("", false, spec, obtained, 0)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("audiosink: open device: %w", err)
	}

	s := &Sink{
		device: device,
		rt:     rt,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	sdl.PauseAudioDevice(device, false)
	return s, nil
}

// Start launches the goroutine that keeps the device's queue topped up.
func (s *Sink) Start() {
	go s.loop()
}

// Close stops the feed goroutine and tears down the SDL audio device.
func (s *Sink) Close() error {
	close(s.stop)
	<-s.done
	sdl.CloseAudioDevice(s.device)
	sdl.Quit()
	return nil
}

func (s *Sink) loop() {
	defer close(s.done)
	ticker := time.NewTicker(fillInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.fill()
		}
	}
}

func (s *Sink) fill() {
	targetBytes := uint32(targetQueuedFrames * bytesPerFrame)
	queued := sdl.GetQueuedAudioSize(s.device)
	if queued >= targetBytes {
		return
	}
	framesNeeded := int(targetBytes-queued) / bytesPerFrame
	if framesNeeded <= 0 {
		return
	}

	buf := make([]float32, framesNeeded*2)
	s.rt.Callback(buf)

	bytes := (*[1 << 30]byte)(unsafe.Pointer(&buf[0]))[: len(buf)*4 : len(buf)*4]
	sdl.QueueAudio(s.device, bytes)
}
