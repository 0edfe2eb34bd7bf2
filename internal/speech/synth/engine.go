package synth

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type EngineType string

const (
	EngineTypeMock   EngineType = "mock"
	EngineTypeESpeak EngineType = "espeak"
	EngineTypeAuto   EngineType = "auto"
)

func (e EngineType) String() string {
	return string(e)
}

// NewEngine creates an on-device synthesizer for the given config.
func NewEngine(config Config) (Engine, error) {
	if config.Type == "" || config.Type == EngineTypeAuto.String() {
		config.Type = bestEngine().String()
	}

	switch config.Type {
	case EngineTypeMock.String():
		return NewMockEngine(), nil

	case EngineTypeESpeak.String():
		return newESpeakEngine(config)

	default:
		return nil, fmt.Errorf("unsupported speech synthesizer: %s", config.Type)
	}
}

// bestEngine prefers eSpeak when it is installed.
func bestEngine() EngineType {
	if _, err := findESpeakExecutable(); err == nil {
		return EngineTypeESpeak
	}
	logrus.Warn("eSpeak not found, on-device speech will be simulated")
	return EngineTypeMock
}
