package audio

import "time"

// Format describes raw PCM audio: signed 16-bit little-endian samples,
// interleaved when there is more than one channel.
type Format struct {
	SampleRate int
	Channels   int
}

// SpeechFormat is the format of every payload returned by the speech
// generation service. It is part of the service contract and never negotiated.
var SpeechFormat = Format{SampleRate: 24000, Channels: 1}

// BytesPerFrame returns the size of one frame (one sample for every channel).
func (f Format) BytesPerFrame() int {
	return 2 * f.Channels
}

// Buffer is decoded audio: one slice of samples in [-1, 1] per channel.
type Buffer struct {
	SampleRate int
	Channels   [][]float64
}

// Frames returns the number of frames in the buffer.
func (b *Buffer) Frames() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate == 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	if b == nil {
		return 0
	}
	return len(b.Channels)
}

// Interleaved returns the samples frame by frame, channels interleaved.
func (b *Buffer) Interleaved() []float64 {
	n := b.Frames()
	ch := b.NumChannels()
	out := make([]float64, 0, n*ch)
	for i := 0; i < n; i++ {
		for c := 0; c < ch; c++ {
			out = append(out, b.Channels[c][i])
		}
	}
	return out
}
