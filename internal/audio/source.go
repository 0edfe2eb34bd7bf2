package audio

// Source is what Play accepts: either TextToSpeak or EncodedAudio.
type Source interface {
	kind() string
}

// TextToSpeak is literal text handed to the on-device speech synthesizer.
type TextToSpeak string

// EncodedAudio is a base64 payload of raw PCM in SpeechFormat.
type EncodedAudio string

func (TextToSpeak) kind() string  { return "speech" }
func (EncodedAudio) kind() string { return "encoded" }

// State is the playback state of a Player.
type State int

const (
	StateIdle State = iota
	StateStarting
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
