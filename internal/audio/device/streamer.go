package device

import "eduspeak/internal/audio"

// bufferStreamer streams a decoded buffer as stereo frames. Mono buffers are
// duplicated onto both channels.
type bufferStreamer struct {
	buf *audio.Buffer
	pos int
}

func newBufferStreamer(buf *audio.Buffer) *bufferStreamer {
	return &bufferStreamer{buf: buf}
}

func (s *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	frames := s.buf.Frames()
	if s.pos >= frames {
		return 0, false
	}

	left := s.buf.Channels[0]
	right := left
	if s.buf.NumChannels() > 1 {
		right = s.buf.Channels[1]
	}

	for n < len(samples) && s.pos < frames {
		samples[n][0] = left[s.pos]
		samples[n][1] = right[s.pos]
		n++
		s.pos++
	}
	return n, true
}

func (s *bufferStreamer) Err() error {
	return nil
}

func (s *bufferStreamer) Len() int {
	return s.buf.Frames()
}

func (s *bufferStreamer) Position() int {
	return s.pos
}
