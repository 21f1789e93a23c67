// Package jukebox glues the playlist and the player together. It owns
// both and is the only component allowed to mutate either, so every
// policy about what happens to playback when the queue changes under it
// lives here.
package jukebox

import (
	"errors"
	"sync"
	"time"

	"jukeboxd/core/playlist"
	"jukeboxd/core/player"
	"jukeboxd/logger"
	"jukeboxd/model"
)

var (
	// ErrNoSongs is returned by Play on an empty playlist.
	ErrNoSongs = errors.New("no songs to play")
	// ErrAlreadyStopped is returned by Stop when nothing is playing.
	ErrAlreadyStopped = errors.New("already stopped")
	// ErrNegativeIndex is returned by Remove for negative indices.
	ErrNegativeIndex = errors.New("index must be non-negative")
)

// Jukebox reconciles transport commands with playlist mutations. One
// mutex serializes every command, and the player's listener callbacks
// take the same mutex, so no command ever observes a partial mutation.
type Jukebox struct {
	mu       sync.Mutex
	playlist *playlist.Playlist
	player   *player.Player
}

// New creates a jukebox over pl and a player driving engine. The jukebox
// registers itself as the player's listener.
func New(pl *playlist.Playlist, engine player.Engine, pollInterval time.Duration) *Jukebox {
	j := &Jukebox{playlist: pl}
	j.player = player.New(engine, j, pollInterval)
	return j
}

// Run drives the player's polling loop; it blocks until Close.
func (j *Jukebox) Run() {
	j.player.Run()
}

// Close shuts the player down and waits for the polling loop to release
// the engine.
func (j *Jukebox) Close() {
	j.player.Close()
	<-j.player.Done()
}

// Enqueue adds a song to the playlist.
func (j *Jukebox) Enqueue(title string, data []byte) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.playlist.Enqueue(title, data)
}

// Clear stops playback and empties the playlist. With the queue gone
// there is nothing meaningful left to play.
func (j *Jukebox) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.player.Stop(); err != nil {
		return err
	}
	return j.playlist.Clear()
}

// Play starts playback of the current song.
func (j *Jukebox) Play() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	song := j.playlist.Current()
	if song == nil {
		return ErrNoSongs
	}
	return j.player.Play(song)
}

// Pause pauses playback.
func (j *Jukebox) Pause() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.player.Pause()
}

// Stop stops playback. Stopping twice is an error.
func (j *Jukebox) Stop() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.player.State() == player.StateStopped {
		return ErrAlreadyStopped
	}
	return j.player.Stop()
}

// Next moves to the next song. Playback resumes on the new song only if
// it was playing before; navigating while paused leaves the new song
// stopped (long-standing behavior, kept on purpose).
func (j *Jukebox) Next() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.next()
}

// Prev moves to the previous song, with the same resume policy as Next.
func (j *Jukebox) Prev() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	state := j.player.State()
	if err := j.player.Stop(); err != nil {
		return err
	}
	if err := j.playlist.Prev(); err != nil {
		return err
	}
	if state == player.StatePlaying {
		return j.player.Play(j.playlist.Current())
	}
	return nil
}

// next is Next with the jukebox lock already held, shared with the
// end-of-stream callback.
func (j *Jukebox) next() error {
	state := j.player.State()
	if err := j.player.Stop(); err != nil {
		return err
	}
	if err := j.playlist.Next(); err != nil {
		return err
	}
	if state == player.StatePlaying {
		return j.player.Play(j.playlist.Current())
	}
	return nil
}

// Remove deletes the slot at index. Removing the current song stops the
// player first and, if it was playing and a song remains under the
// cursor, resumes on it; removing any other slot leaves playback alone.
func (j *Jukebox) Remove(index int) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if index < 0 {
		return ErrNegativeIndex
	}
	current, ok := j.playlist.CurrentIndex()
	if !ok || index != current {
		return j.playlist.Remove(index)
	}

	state := j.player.State()
	if err := j.player.Stop(); err != nil {
		return err
	}
	if err := j.playlist.Remove(index); err != nil {
		return err
	}
	if song := j.playlist.Current(); song != nil && state == player.StatePlaying {
		return j.player.Play(song)
	}
	return nil
}

// Seek jumps to the given fraction of the current song.
func (j *Jukebox) Seek(fraction float64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.player.Seek(fraction)
}

// SetVolume sets the player volume.
func (j *Jukebox) SetVolume(v float64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.player.SetVolume(v)
}

// SkipForwards moves the stream position a fixed amount forwards.
func (j *Jukebox) SkipForwards() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.player.SkipForwards()
}

// SkipBackwards moves the stream position a fixed amount backwards.
func (j *Jukebox) SkipBackwards() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.player.SkipBackwards()
}

// Status returns the aggregate playlist and player snapshot.
func (j *Jukebox) Status() model.Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return model.Status{
		Playlist: j.playlist.Status(),
		Player:   j.player.Status(),
	}
}

// TrackFinished advances to the next song when the engine reports end of
// stream. Running off the end of the queue is the expected terminal
// condition and settles playback into stop.
func (j *Jukebox) TrackFinished() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.next(); err != nil {
		if errors.Is(err, playlist.ErrNoMoreSongs) {
			logger.Debug("jukebox: reached end of queue")
			return
		}
		logger.Error("jukebox: failed to advance after end of stream", logger.ErrorField(err))
	}
}

// EngineError logs an asynchronous engine failure. No caller is waiting
// for it; playback is left in the state the engine reports.
func (j *Jukebox) EngineError(message string) {
	logger.Error("jukebox: engine error", logger.String("message", message))
}

// Verify Jukebox implements the player listener at compile time.
var _ player.Listener = (*Jukebox)(nil)
