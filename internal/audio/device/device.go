// Package device opens real audio outputs for the Player.
package device

import (
	"fmt"

	"eduspeak/internal/audio"
)

type Type string

const (
	TypeBeep Type = "beep"
	TypeOto  Type = "oto"
)

func (t Type) String() string {
	return string(t)
}

// Factory returns the audio.OutputFactory for the named device type.
func Factory(name string) (audio.OutputFactory, error) {
	switch Type(name) {
	case "", TypeBeep:
		return openSpeaker, nil
	case TypeOto:
		return openOto, nil
	default:
		return nil, fmt.Errorf("unsupported audio output: %s", name)
	}
}
