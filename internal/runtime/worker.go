package runtime

import (
	"context"
	"sync"
	"time"
)

// worker renders chunks of audio ahead of the real-time reader, the
// producer side of Runtime's ring buffer. It runs on an ordinary ticker-
// driven goroutine guarded by context cancellation, the same shape as the
// write-ahead buffering worker in the retrieval pack's VST3 host bindings:
// a ticker wakes it at a fixed interval, it checks how full the ring is,
// and renders another chunk when there's room. Only Runtime.Callback must
// stay real-time safe; the worker is free to allocate and take its time.
type worker struct {
	rt  *Runtime
	ctx context.Context
	cancel context.CancelFunc
	wg  sync.WaitGroup

	scratch []float32
}

// tickInterval is how often the worker checks ring-buffer health.
const tickInterval = 2 * time.Millisecond

func newWorker(rt *Runtime) *worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &worker{
		rt:      rt,
		ctx:     ctx,
		cancel:  cancel,
		scratch: make([]float32, rt.chunkFrames*2),
	}
}

func (w *worker) start() {
	w.wg.Add(1)
	go w.loop()
}

func (w *worker) stopAndWait() {
	w.cancel()
	w.wg.Wait()
}

func (w *worker) loop() {
	defer w.wg.Done()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			for w.rt.rb.FreeFrames() >= w.rt.chunkFrames {
				w.renderChunk()
				select {
				case <-w.ctx.Done():
					return
				default:
				}
			}
		}
	}
}

func (w *worker) renderChunk() {
	g := w.rt.g.Load()
	for i := 0; i < w.rt.chunkFrames; i++ {
		l, r := g.ProcessSample()
		w.scratch[i*2] = l
		w.scratch[i*2+1] = r
	}
	w.rt.rb.Write(w.scratch)
}
