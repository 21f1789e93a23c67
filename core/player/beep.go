package player

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// BeepEngine is the production Engine, playing through the local audio
// output via the beep speaker. Stored blobs carry no extension, so the
// decoder is picked by sniffing the file's magic bytes.
type BeepEngine struct {
	mu       sync.Mutex
	events   chan Event
	state    EngineState
	path     string
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	level    float64
}

// NewBeepEngine creates an engine in the Null state with full volume.
func NewBeepEngine() *BeepEngine {
	return &BeepEngine{
		events: make(chan Event, 16),
		level:  1.0,
	}
}

// Load replaces the current media source. The engine drops to Ready; a
// following SetState(EnginePlaying) starts the new source from the top.
func (e *BeepEngine) Load(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.path = path
	if err := e.openLocked(); err != nil {
		e.path = ""
		return err
	}
	e.setStateLocked(EngineReady)
	return nil
}

// SetState requests a pipeline transition. Confirmation is emitted on the
// event channel, matching the asynchronous contract of the interface.
func (e *BeepEngine) SetState(state EngineState) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch state {
	case EnginePlaying:
		return e.playLocked()
	case EnginePaused:
		if e.ctrl != nil {
			speaker.Lock()
			e.ctrl.Paused = true
			speaker.Unlock()
		}
		e.setStateLocked(EnginePaused)
		return nil
	case EngineReady, EngineNull:
		e.stopLocked()
		e.setStateLocked(state)
		return nil
	}
	return fmt.Errorf("unknown engine state %d", state)
}

func (e *BeepEngine) playLocked() error {
	switch e.state {
	case EnginePlaying:
		return nil
	case EnginePaused:
		speaker.Lock()
		e.ctrl.Paused = false
		speaker.Unlock()
	default:
		if e.streamer == nil {
			if e.path == "" {
				return fmt.Errorf("no media loaded")
			}
			// Stopping tears the stream down; restart from the top.
			if err := e.openLocked(); err != nil {
				return err
			}
		}
		speaker.Play(beep.Seq(e.volume, beep.Callback(func() {
			e.emit(Event{Type: EventEndOfStream})
		})))
	}
	e.setStateLocked(EnginePlaying)
	return nil
}

// Duration returns the source duration in seconds once media is loaded.
func (e *BeepEngine) Duration() (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return 0, false
	}
	speaker.Lock()
	n := e.streamer.Len()
	speaker.Unlock()
	return e.format.SampleRate.D(n).Seconds(), true
}

// Position returns the stream position in seconds.
func (e *BeepEngine) Position() (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return 0, false
	}
	speaker.Lock()
	n := e.streamer.Position()
	speaker.Unlock()
	return e.format.SampleRate.D(n).Seconds(), true
}

// Seek jumps to an absolute stream time. Seeking to the very end drains
// the stream and produces the end-of-stream event.
func (e *BeepEngine) Seek(seconds float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return fmt.Errorf("no media loaded")
	}
	speaker.Lock()
	defer speaker.Unlock()
	target := e.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	target = min(target, e.streamer.Len())
	target = max(target, 0)
	if err := e.streamer.Seek(target); err != nil {
		return fmt.Errorf("seek failed: %w", err)
	}
	return nil
}

// SetVolume applies the output volume in [0, 1].
func (e *BeepEngine) SetVolume(v float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.level = v
	if e.volume != nil {
		speaker.Lock()
		e.volume.Volume = levelToVolume(v)
		e.volume.Silent = v == 0
		speaker.Unlock()
	}
	return nil
}

// Volume returns the last applied volume level.
func (e *BeepEngine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level
}

// Events is the asynchronous event stream.
func (e *BeepEngine) Events() <-chan Event {
	return e.events
}

// Release frees the decoder after the final stop.
func (e *BeepEngine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.path = ""
}

// openLocked opens and decodes e.path and prepares the speaker chain.
func (e *BeepEngine) openLocked() error {
	f, err := os.Open(e.path)
	if err != nil {
		return fmt.Errorf("failed to open media: %w", err)
	}

	streamer, format, err := decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to decode media: %w", err)
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		streamer.Close()
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	e.streamer = streamer
	e.format = format
	e.ctrl = &beep.Ctrl{Streamer: streamer}
	e.volume = &effects.Volume{
		Streamer: e.ctrl,
		Base:     2,
		Volume:   levelToVolume(e.level),
		Silent:   e.level == 0,
	}
	return nil
}

// stopLocked clears the speaker and tears the stream down. The source path
// is kept so playback can restart from the top.
func (e *BeepEngine) stopLocked() {
	speaker.Clear()
	if e.streamer != nil {
		e.streamer.Close()
		e.streamer = nil
		e.ctrl = nil
		e.volume = nil
	}
}

func (e *BeepEngine) setStateLocked(state EngineState) {
	if e.state == state {
		return
	}
	old := e.state
	e.state = state
	e.emit(Event{Type: EventStateChanged, Old: old, New: state})
}

// emit never blocks; the poll loop drains faster than the engine emits,
// but a wedged consumer must not stall the speaker goroutine.
func (e *BeepEngine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
	}
}

// decode picks a decoder from the file's magic bytes. Blobs are stored
// under their content hash, so there is no extension to go by.
func decode(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	magic := make([]byte, 4)
	if _, err := f.Read(magic); err != nil {
		return nil, beep.Format{}, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, beep.Format{}, err
	}

	switch {
	case string(magic) == "fLaC":
		return flac.Decode(f)
	case string(magic) == "OggS":
		return vorbis.Decode(f)
	case string(magic) == "RIFF":
		return wav.Decode(f)
	default:
		return mp3.Decode(f)
	}
}

// levelToVolume converts a 0..1 level to beep's base-2 logarithmic scale
// (0 = unchanged, -1 = half, -2 = quarter).
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}

// Verify BeepEngine implements Engine at compile time.
var _ Engine = (*BeepEngine)(nil)
