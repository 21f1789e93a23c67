// Package player implements the playback coordinator: a thin state machine
// over an opaque Engine. Command methods only request engine transitions
// and read cached state; the polling loop started by Run is the single
// place where engine-reported state is observed and folded back in, so
// commands never race with event delivery.
package player

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"jukeboxd/logger"
	"jukeboxd/model"
)

// State is the logical playback state as last reported by the engine.
type State int

const (
	StateStopped State = iota
	StatePaused
	StatePlaying
)

// String returns the wire name of the state.
func (s State) String() string {
	switch s {
	case StatePlaying:
		return "play"
	case StatePaused:
		return "pause"
	default:
		return "stop"
	}
}

var (
	// ErrNotPlaying is returned by Pause when the player isn't playing.
	ErrNotPlaying = errors.New("player not in PLAY state")
	// ErrStopped is returned by seek operations while stopped or before
	// the track's timing is known.
	ErrStopped = errors.New("player stopped")
	// ErrBadPosition is returned by Seek for fractions outside [0, 1].
	ErrBadPosition = errors.New("wrong position value")
	// ErrBadVolume is returned by SetVolume for values outside [0, 1].
	ErrBadVolume = errors.New("wrong volume")
)

// skipSeconds is the fixed amount moved by SkipForwards/SkipBackwards.
const skipSeconds = 10.0

// Listener receives the engine conditions no RPC caller is waiting for.
type Listener interface {
	// TrackFinished is called when the engine reaches end of stream.
	TrackFinished()
	// EngineError is called with the engine's diagnostic text. Playback
	// is left in whatever state the engine reports.
	EngineError(message string)
}

// Player coordinates transport commands with the engine's asynchronous
// state machine.
type Player struct {
	engine   Engine
	listener Listener
	interval time.Duration

	mu          sync.Mutex
	state       State
	song        *model.Song
	position    float64
	hasPosition bool

	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a player over engine. The listener is notified from the
// polling loop goroutine.
func New(engine Engine, listener Listener, interval time.Duration) *Player {
	return &Player{
		engine:   engine,
		listener: listener,
		interval: interval,
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Play requests playback of song. Loading is skipped when song is already
// the loaded one, so resuming from pause continues where it left off.
func (p *Player) Play(song *model.Song) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.song != song {
		if err := p.engine.Load(song.Path); err != nil {
			return fmt.Errorf("failed to load %s: %w", song.Title, err)
		}
		p.song = song
	}
	return p.engine.SetState(EnginePlaying)
}

// Pause requests a transition to pause. Only valid while playing.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StatePlaying {
		return ErrNotPlaying
	}
	return p.engine.SetState(EnginePaused)
}

// Stop requests a transition to stop. Stopping an already stopped player
// is not an error here; that policy belongs to the jukebox.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.SetState(EngineReady)
}

// Seek jumps to the given fraction of the current song's duration.
func (p *Player) Seek(fraction float64) error {
	if fraction < 0.0 || fraction > 1.0 {
		return ErrBadPosition
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	duration, ok := p.trackDuration()
	if !ok {
		return ErrStopped
	}
	return p.engine.Seek(fraction * duration)
}

// SkipForwards moves the stream position a fixed amount forwards, clamped
// to the song duration.
func (p *Player) SkipForwards() error {
	return p.skip(skipSeconds)
}

// SkipBackwards moves the stream position a fixed amount backwards,
// clamped to the start of the song.
func (p *Player) SkipBackwards() error {
	return p.skip(-skipSeconds)
}

func (p *Player) skip(delta float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	duration, ok := p.trackDuration()
	if !ok || !p.hasPosition {
		return ErrStopped
	}
	target := p.position + delta
	target = max(target, 0.0)
	target = min(target, duration)
	return p.engine.Seek(target)
}

// trackDuration returns the current song's duration when the player is
// not stopped and the duration has been measured. Callers hold p.mu.
func (p *Player) trackDuration() (float64, bool) {
	if p.state == StateStopped || p.song == nil {
		return 0, false
	}
	return p.song.Duration()
}

// SetVolume applies the volume immediately; it is not gated by playback
// state.
func (p *Player) SetVolume(v float64) error {
	if v < 0.0 || v > 1.0 {
		return ErrBadVolume
	}
	return p.engine.SetVolume(v)
}

// State returns the last engine-reported logical state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Status returns a snapshot of the player.
func (p *Player) Status() model.PlayerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := model.PlayerStatus{
		State:  p.state.String(),
		Volume: p.engine.Volume(),
	}
	if p.hasPosition {
		pos := p.position
		st.Position = &pos
	}
	return st
}

// Run drives the polling loop until Close is called. It is the only
// goroutine that consumes engine events or writes engine-observed state.
func (p *Player) Run() {
	defer close(p.done)
	for {
		select {
		case <-p.closing:
			if err := p.engine.SetState(EngineNull); err != nil {
				logger.Warn("player: final engine stop failed", logger.ErrorField(err))
			}
			p.engine.Release()
			return
		default:
		}

		if p.step() {
			// An event was handled; drain the next one without waiting.
			continue
		}

		select {
		case <-p.closing:
		case <-time.After(p.interval):
		}
	}
}

// step performs one poll iteration: handle a pending engine event if there
// is one, otherwise refresh the timing attributes. Returns true when an
// event was handled.
func (p *Player) step() bool {
	select {
	case ev := <-p.engine.Events():
		p.handleEvent(ev)
		return true
	default:
	}
	p.refresh()
	return false
}

func (p *Player) handleEvent(ev Event) {
	switch ev.Type {
	case EventError:
		p.listener.EngineError(ev.Message)
	case EventEndOfStream:
		p.listener.TrackFinished()
	case EventStateChanged:
		p.mu.Lock()
		p.state = logicalState(ev.New)
		if p.state == StateStopped {
			p.position = 0
			p.hasPosition = false
		}
		p.mu.Unlock()
		logger.Debug("player: state changed", logger.String("state", logicalState(ev.New).String()))
	}
}

// refresh updates position, and duration once, from the engine.
func (p *Player) refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateStopped || p.song == nil {
		p.position = 0
		p.hasPosition = false
		return
	}
	if _, ok := p.song.Duration(); !ok {
		if d, ok := p.engine.Duration(); ok {
			p.song.SetDuration(d)
		}
	}
	if pos, ok := p.engine.Position(); ok {
		p.position = pos
		p.hasPosition = true
	}
}

// Close asks the polling loop to shut the engine down and exit.
func (p *Player) Close() {
	p.closeOnce.Do(func() {
		close(p.closing)
	})
}

// Done is closed once the polling loop has released the engine.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

func logicalState(s EngineState) State {
	switch s {
	case EnginePlaying:
		return StatePlaying
	case EnginePaused:
		return StatePaused
	default:
		return StateStopped
	}
}
