package device

import (
	"fmt"
	"sync"
	"time"

	"eduspeak/internal/audio"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// speakerOutput plays through the beep speaker. The speaker is process-wide,
// so only one speakerOutput should be open at a time.
type speakerOutput struct {
	mu     sync.Mutex
	closed bool
}

func openSpeaker(format audio.Format) (audio.Output, error) {
	sr := beep.SampleRate(format.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("failed to initialise speaker: %w", err)
	}
	return &speakerOutput{}, nil
}

func (o *speakerOutput) Start(buf *audio.Buffer, done func()) (audio.Voice, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, fmt.Errorf("speaker is closed")
	}

	v := &speakerVoice{ctrl: &beep.Ctrl{Streamer: newBufferStreamer(buf), Paused: false}}
	speaker.Play(beep.Seq(v.ctrl, beep.Callback(func() {
		// runs on the speaker goroutine with the speaker locked
		if !v.stopped {
			done()
		}
	})))
	return v, nil
}

func (o *speakerOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	speaker.Clear()
	speaker.Close()
	return nil
}

type speakerVoice struct {
	ctrl    *beep.Ctrl
	stopped bool
}

func (v *speakerVoice) Stop() {
	speaker.Lock()
	v.stopped = true
	v.ctrl.Streamer = nil
	speaker.Unlock()
}

func (v *speakerVoice) SetPaused(paused bool) {
	speaker.Lock()
	v.ctrl.Paused = paused
	speaker.Unlock()
}
