package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// Decode converts a base64 payload of raw PCM into a Buffer.
func Decode(payload string, format Format) (*Buffer, error) {
	if format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, &DecodeError{Reason: fmt.Sprintf("invalid format %d Hz / %d channels", format.SampleRate, format.Channels)}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &DecodeError{Reason: "malformed base64", Err: err}
	}
	if len(data) == 0 {
		return nil, &DecodeError{Reason: "empty payload"}
	}

	frameSize := format.BytesPerFrame()
	if len(data)%frameSize != 0 {
		return nil, &DecodeError{Reason: fmt.Sprintf("payload length %d is not a multiple of %d", len(data), frameSize)}
	}

	frames := len(data) / frameSize
	buf := &Buffer{
		SampleRate: format.SampleRate,
		Channels:   make([][]float64, format.Channels),
	}
	for c := range buf.Channels {
		buf.Channels[c] = make([]float64, frames)
	}

	for i := 0; i < frames; i++ {
		for c := 0; c < format.Channels; c++ {
			off := (i*format.Channels + c) * 2
			sample := int16(binary.LittleEndian.Uint16(data[off : off+2]))
			buf.Channels[c][i] = float64(sample) / 32768.0
		}
	}

	return buf, nil
}

// Encode is the inverse of Decode for interleaved 16-bit samples.
func Encode(samples []int16) string {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return base64.StdEncoding.EncodeToString(data)
}
