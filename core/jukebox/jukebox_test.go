package jukebox

import (
	"testing"
	"time"

	"jukeboxd/core/player"
	"jukeboxd/core/playlist"
	"jukeboxd/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newJukebox builds a jukebox over a mock engine with its polling loop
// running, torn down when the test ends.
func newJukebox(t *testing.T, size int) (*Jukebox, *player.MockEngine) {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	engine := player.NewMockEngine()
	jb := New(playlist.New(st, size), engine, time.Millisecond)
	go jb.Run()
	t.Cleanup(jb.Close)
	return jb, engine
}

func enqueue(t *testing.T, jb *Jukebox, titles ...string) {
	t.Helper()
	for _, title := range titles {
		require.NoError(t, jb.Enqueue(title, []byte(title)))
	}
}

// waitState blocks until the polling loop has folded in the engine's
// confirmation of the wanted state.
func waitState(t *testing.T, jb *Jukebox, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return jb.Status().Player.State == want
	}, time.Second, time.Millisecond, "player never reached state %q", want)
}

func currentIndex(t *testing.T, jb *Jukebox) int {
	t.Helper()
	current := jb.Status().Playlist.Current
	require.NotNil(t, current)
	return *current
}

func TestStatusDefaults(t *testing.T) {
	jb, _ := newJukebox(t, 10)

	st := jb.Status()
	assert.Empty(t, st.Playlist.Songs)
	assert.Nil(t, st.Playlist.Current)
	assert.Equal(t, "stop", st.Player.State)
	assert.Nil(t, st.Player.Position)
	assert.Equal(t, 1.0, st.Player.Volume)
}

func TestPlayEmptyQueue(t *testing.T) {
	jb, _ := newJukebox(t, 10)
	assert.ErrorIs(t, jb.Play(), ErrNoSongs)
}

func TestStopWhenStopped(t *testing.T) {
	jb, _ := newJukebox(t, 10)
	assert.ErrorIs(t, jb.Stop(), ErrAlreadyStopped)
}

func TestPauseWhenStopped(t *testing.T) {
	jb, _ := newJukebox(t, 10)
	assert.ErrorIs(t, jb.Pause(), player.ErrNotPlaying)
}

func TestPlayPauseResumeStop(t *testing.T) {
	jb, engine := newJukebox(t, 10)
	enqueue(t, jb, "one")

	require.NoError(t, jb.Play())
	waitState(t, jb, "play")

	require.NoError(t, jb.Pause())
	waitState(t, jb, "pause")

	// Resuming the same song continues without reloading it.
	require.NoError(t, jb.Play())
	waitState(t, jb, "play")
	assert.Len(t, engine.LoadCalls(), 1)

	require.NoError(t, jb.Stop())
	waitState(t, jb, "stop")
	assert.ErrorIs(t, jb.Stop(), ErrAlreadyStopped)
}

func TestNextResumesWhenPlaying(t *testing.T) {
	jb, engine := newJukebox(t, 10)
	enqueue(t, jb, "one", "two")

	require.NoError(t, jb.Play())
	waitState(t, jb, "play")

	require.NoError(t, jb.Next())
	waitState(t, jb, "play")
	assert.Len(t, engine.LoadCalls(), 2)
	assert.Equal(t, 1, currentIndex(t, jb))
}

func TestNextWhilePausedStaysStopped(t *testing.T) {
	jb, engine := newJukebox(t, 10)
	enqueue(t, jb, "one", "two")

	require.NoError(t, jb.Play())
	waitState(t, jb, "play")
	require.NoError(t, jb.Pause())
	waitState(t, jb, "pause")

	// Navigating while paused moves the cursor but does not resume.
	require.NoError(t, jb.Next())
	waitState(t, jb, "stop")
	assert.Equal(t, 1, currentIndex(t, jb))
	assert.Len(t, engine.LoadCalls(), 1)
}

func TestNextAtEndOfQueue(t *testing.T) {
	jb, _ := newJukebox(t, 10)
	enqueue(t, jb, "one")

	require.NoError(t, jb.Play())
	waitState(t, jb, "play")

	// The stop request precedes the failed cursor move, so playback ends
	// up stopped with the cursor where it was.
	assert.ErrorIs(t, jb.Next(), playlist.ErrNoMoreSongs)
	waitState(t, jb, "stop")
	assert.Equal(t, 0, currentIndex(t, jb))
}

func TestPrevResumesWhenPlaying(t *testing.T) {
	jb, engine := newJukebox(t, 10)
	enqueue(t, jb, "one", "two")

	require.NoError(t, jb.Play())
	waitState(t, jb, "play")
	require.NoError(t, jb.Next())
	waitState(t, jb, "play")

	require.NoError(t, jb.Prev())
	waitState(t, jb, "play")
	assert.Equal(t, 0, currentIndex(t, jb))
	assert.Len(t, engine.LoadCalls(), 3)
}

func TestPrevAtStartOfQueue(t *testing.T) {
	jb, _ := newJukebox(t, 10)
	enqueue(t, jb, "one")
	assert.ErrorIs(t, jb.Prev(), playlist.ErrNoMoreSongs)
}

func TestRemoveNegativeIndex(t *testing.T) {
	jb, _ := newJukebox(t, 10)
	assert.ErrorIs(t, jb.Remove(-1), ErrNegativeIndex)
}

func TestRemoveOutOfRange(t *testing.T) {
	jb, _ := newJukebox(t, 10)
	enqueue(t, jb, "one")
	assert.ErrorIs(t, jb.Remove(3), playlist.ErrNoMoreSongs)
}

func TestRemoveCurrentWhilePlayingResumes(t *testing.T) {
	jb, engine := newJukebox(t, 10)
	enqueue(t, jb, "one", "two")

	require.NoError(t, jb.Play())
	waitState(t, jb, "play")

	require.NoError(t, jb.Remove(0))
	waitState(t, jb, "play")
	assert.Len(t, engine.LoadCalls(), 2)

	st := jb.Status()
	require.Len(t, st.Playlist.Songs, 1)
	assert.Equal(t, "two", st.Playlist.Songs[0].Title)
	assert.Equal(t, 0, currentIndex(t, jb))
}

func TestRemoveOnlySongStops(t *testing.T) {
	jb, engine := newJukebox(t, 10)
	enqueue(t, jb, "one")

	require.NoError(t, jb.Play())
	waitState(t, jb, "play")

	require.NoError(t, jb.Remove(0))
	waitState(t, jb, "stop")
	assert.Nil(t, jb.Status().Playlist.Current)
	assert.Len(t, engine.LoadCalls(), 1)
}

func TestRemoveOtherSongKeepsPlaying(t *testing.T) {
	jb, engine := newJukebox(t, 10)
	enqueue(t, jb, "one", "two")

	require.NoError(t, jb.Play())
	waitState(t, jb, "play")

	require.NoError(t, jb.Remove(1))
	assert.Equal(t, "play", jb.Status().Player.State)
	assert.Len(t, engine.LoadCalls(), 1)
	assert.Len(t, jb.Status().Playlist.Songs, 1)
}

func TestTrackFinishedAdvances(t *testing.T) {
	jb, engine := newJukebox(t, 10)
	enqueue(t, jb, "one", "two")

	require.NoError(t, jb.Play())
	waitState(t, jb, "play")

	engine.EmitEndOfStream()
	require.Eventually(t, func() bool {
		return len(engine.LoadCalls()) == 2
	}, time.Second, time.Millisecond)
	waitState(t, jb, "play")
	assert.Equal(t, 1, currentIndex(t, jb))

	// Running off the end of the queue settles into stop.
	engine.EmitEndOfStream()
	waitState(t, jb, "stop")
	assert.Equal(t, 1, currentIndex(t, jb))
	assert.Len(t, engine.LoadCalls(), 2)
}

func TestClearStopsAndEmpties(t *testing.T) {
	jb, _ := newJukebox(t, 10)
	enqueue(t, jb, "one", "two")

	require.NoError(t, jb.Play())
	waitState(t, jb, "play")

	require.NoError(t, jb.Clear())
	waitState(t, jb, "stop")
	st := jb.Status()
	assert.Empty(t, st.Playlist.Songs)
	assert.Nil(t, st.Playlist.Current)

	// Clearing an already empty, stopped jukebox is fine.
	require.NoError(t, jb.Clear())
}

func TestSetVolume(t *testing.T) {
	jb, _ := newJukebox(t, 10)

	require.NoError(t, jb.SetVolume(0.25))
	assert.Equal(t, 0.25, jb.Status().Player.Volume)
	assert.ErrorIs(t, jb.SetVolume(1.5), player.ErrBadVolume)
}

func TestSeekErrorsSurface(t *testing.T) {
	jb, _ := newJukebox(t, 10)
	assert.ErrorIs(t, jb.Seek(2.0), player.ErrBadPosition)
	assert.ErrorIs(t, jb.Seek(0.5), player.ErrStopped)
	assert.ErrorIs(t, jb.SkipForwards(), player.ErrStopped)
	assert.ErrorIs(t, jb.SkipBackwards(), player.ErrStopped)
}

func TestEngineErrorLeavesPlaybackAlone(t *testing.T) {
	jb, engine := newJukebox(t, 10)
	enqueue(t, jb, "one")

	require.NoError(t, jb.Play())
	waitState(t, jb, "play")

	engine.EmitError("internal data stream error")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "play", jb.Status().Player.State)
}
