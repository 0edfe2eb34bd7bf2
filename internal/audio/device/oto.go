package device

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"eduspeak/internal/audio"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process. It is created on first use and
// suspended, not destroyed, when an output is closed.
var (
	otoOnce    sync.Once
	otoContext *oto.Context
	otoFormat  audio.Format
	otoErr     error
)

type otoOutput struct {
	ctx *oto.Context

	mu     sync.Mutex
	closed bool
}

func openOto(format audio.Format) (audio.Output, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatFloat32LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready
		otoContext = ctx
		otoFormat = format
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoFormat != format {
		return nil, fmt.Errorf("oto context already opened at %d Hz / %d channels", otoFormat.SampleRate, otoFormat.Channels)
	}
	if err := otoContext.Resume(); err != nil {
		return nil, fmt.Errorf("failed to resume oto context: %w", err)
	}
	return &otoOutput{ctx: otoContext}, nil
}

func (o *otoOutput) Start(buf *audio.Buffer, done func()) (audio.Voice, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, fmt.Errorf("oto output is closed")
	}

	player := o.ctx.NewPlayer(bytes.NewReader(float32LE(buf.Interleaved())))
	v := &otoVoice{player: player, stop: make(chan struct{})}
	player.Play()

	go v.watch(done)
	return v, nil
}

func (o *otoOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	return o.ctx.Suspend()
}

type otoVoice struct {
	player *oto.Player
	stop   chan struct{}
	once   sync.Once

	mu     sync.Mutex
	paused bool
}

// watch polls the player until it drains; oto has no completion callback.
func (v *otoVoice) watch(done func()) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-v.stop:
			return
		case <-ticker.C:
			v.mu.Lock()
			finished := !v.paused && !v.player.IsPlaying()
			v.mu.Unlock()
			if finished {
				_ = v.player.Close()
				done()
				return
			}
		}
	}
}

func (v *otoVoice) Stop() {
	v.once.Do(func() {
		close(v.stop)
		v.player.Pause()
		_ = v.player.Close()
	})
}

func (v *otoVoice) SetPaused(paused bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.paused = paused
	if paused {
		v.player.Pause()
		return
	}
	v.player.Play()
}

func float32LE(samples []float64) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(float32(s)))
	}
	return out
}
