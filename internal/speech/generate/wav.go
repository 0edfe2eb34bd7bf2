package generate

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// stripWAVHeader returns the "data" chunk of a RIFF/WAVE file. Input without a
// RIFF header is returned unchanged.
func stripWAVHeader(b []byte) ([]byte, error) {
	if len(b) < 12 || !bytes.Equal(b[0:4], []byte("RIFF")) {
		return b, nil
	}
	if !bytes.Equal(b[8:12], []byte("WAVE")) {
		return nil, fmt.Errorf("RIFF payload is not WAVE")
	}

	pos := 12
	for pos+8 <= len(b) {
		id := string(b[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		body := pos + 8
		if id == "data" {
			end := body + size
			if end > len(b) {
				end = len(b)
			}
			return b[body:end], nil
		}
		// chunks are word aligned
		pos = body + size + size%2
	}
	return nil, fmt.Errorf("WAVE payload has no data chunk")
}
