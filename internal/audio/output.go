package audio

// Output is an opened audio device. One Output is owned by exactly one Player,
// which closes it on teardown.
type Output interface {
	// Start begins playing buf. done is called once, from another goroutine,
	// when the buffer has been played to the end. It is not called for a
	// voice that was stopped.
	Start(buf *Buffer, done func()) (Voice, error)
	Close() error
}

// Voice is one buffer playing on an Output.
type Voice interface {
	Stop()
	SetPaused(paused bool)
}

// OutputFactory opens an Output for the given format.
type OutputFactory func(format Format) (Output, error)
