package player

// EngineState is the pipeline-level state of a playback engine. Null and
// Ready both map to the stopped logical state.
type EngineState int

const (
	EngineNull EngineState = iota
	EngineReady
	EnginePaused
	EnginePlaying
)

// EventType discriminates asynchronous engine events.
type EventType int

const (
	EventStateChanged EventType = iota
	EventEndOfStream
	EventError
)

// Event is an asynchronous notification from the engine. Old/New are set
// for state changes, Message for errors.
type Event struct {
	Type    EventType
	Old     EngineState
	New     EngineState
	Message string
}

// Engine is the opaque playback pipeline the player drives. Commands are
// requests; the authoritative state arrives on the Events channel and is
// folded in by the player's polling loop. Duration and Position fail
// softly (ok=false) until the media is primed.
type Engine interface {
	// Load points the engine at a new media source, replacing the
	// current one.
	Load(path string) error
	// SetState requests a pipeline state transition.
	SetState(state EngineState) error
	// Duration returns the source duration in seconds, if known yet.
	Duration() (float64, bool)
	// Position returns the stream position in seconds, if known.
	Position() (float64, bool)
	// Seek jumps to an absolute stream time in seconds.
	Seek(seconds float64) error
	// SetVolume sets the output volume in [0, 1].
	SetVolume(v float64) error
	// Volume returns the last applied volume.
	Volume() float64
	// Events is the engine's asynchronous event stream.
	Events() <-chan Event
	// Release frees the engine's resources after the final state change.
	Release()
}
