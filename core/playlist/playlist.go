// Package playlist implements the bounded queue of songs with a current
// cursor. Capacity pressure only ever evicts already-played history from
// the front of the queue; the current song and everything after it are
// never evicted, even if that means temporarily exceeding the capacity.
package playlist

import (
	"errors"

	"jukeboxd/core/store"
	"jukeboxd/logger"
	"jukeboxd/model"
)

// ErrNoMoreSongs is returned when navigation or removal runs off either
// end of the queue.
var ErrNoMoreSongs = errors.New("no more songs")

// Playlist keeps the queue of songs to play. It is not safe for concurrent
// use; the jukebox serializes access to it.
type Playlist struct {
	store   *store.Store
	queue   []*model.Song
	size    int
	current int
}

// New creates an empty playlist backed by st, evicting history once the
// queue grows past size.
func New(st *store.Store, size int) *Playlist {
	return &Playlist{
		store: st,
		size:  size,
	}
}

// Enqueue stores data in the track store and appends a slot for it at the
// tail. When the queue was empty the new slot becomes current.
func (p *Playlist) Enqueue(title string, data []byte) error {
	hash, err := p.store.Put(data)
	if err != nil {
		return err
	}
	p.queue = append(p.queue, model.NewSong(title, p.store.Path(hash), hash))
	p.evict()
	logger.Debug("playlist: enqueued",
		logger.String("title", title),
		logger.String("hash", hash),
		logger.Int("length", len(p.queue)),
	)
	return nil
}

// Next moves the cursor forward, then evicts history that just became
// eligible.
func (p *Playlist) Next() error {
	if p.current+1 > len(p.queue)-1 {
		return ErrNoMoreSongs
	}
	p.current++
	p.evict()
	return nil
}

// Prev moves the cursor backward. There is no wraparound.
func (p *Playlist) Prev() error {
	if p.current-1 < 0 {
		return ErrNoMoreSongs
	}
	p.current--
	return nil
}

// Remove deletes the slot at index and releases its content. The cursor is
// shifted when a slot before it is removed, then clamped into the queue.
func (p *Playlist) Remove(index int) error {
	if index < 0 || index > len(p.queue)-1 {
		return ErrNoMoreSongs
	}
	if err := p.store.Release(p.queue[index].Hash); err != nil {
		return err
	}
	p.queue = append(p.queue[:index], p.queue[index+1:]...)
	if index < p.current {
		p.current--
	}
	p.current = min(p.current, len(p.queue)-1)
	p.current = max(p.current, 0)
	return nil
}

// Clear empties the queue, releasing every slot, and wipes the store
// directory.
func (p *Playlist) Clear() error {
	p.queue = nil
	p.current = 0
	return p.store.Clear()
}

// Current returns the song under the cursor, or nil when the queue is
// empty.
func (p *Playlist) Current() *model.Song {
	if len(p.queue) == 0 {
		return nil
	}
	return p.queue[p.current]
}

// CurrentIndex returns the cursor position. The second return value is
// false when the queue is empty.
func (p *Playlist) CurrentIndex() (int, bool) {
	if len(p.queue) == 0 {
		return 0, false
	}
	return p.current, true
}

// Len returns the queue length.
func (p *Playlist) Len() int {
	return len(p.queue)
}

// Status returns a read-only snapshot of the queue.
func (p *Playlist) Status() model.PlaylistStatus {
	st := model.PlaylistStatus{
		Songs: make([]model.SongInfo, 0, len(p.queue)),
	}
	for _, song := range p.queue {
		st.Songs = append(st.Songs, song.Info())
	}
	if idx, ok := p.CurrentIndex(); ok {
		st.Current = &idx
	}
	return st
}

// evict trims played history from the front when the queue exceeds its
// capacity. Only slots before the cursor are eligible, so at most
// min(current, len-size) are removed and the cursor shifts by the same
// amount.
func (p *Playlist) evict() {
	toRemove := min(p.current, max(0, len(p.queue)-p.size))
	for i := 0; i < toRemove; i++ {
		song := p.queue[0]
		p.queue = p.queue[1:]
		if err := p.store.Release(song.Hash); err != nil {
			logger.Error("playlist: failed to release evicted song",
				logger.String("hash", song.Hash),
				logger.ErrorField(err),
			)
		}
	}
	p.current -= toRemove
}
