package model

// SongInfo is the serialized form of a playlist slot. Duration is null
// until the engine has measured it.
type SongInfo struct {
	Title    string   `json:"title"`
	Duration *float64 `json:"duration"`
}

// PlaylistStatus is a read-only snapshot of the playlist. Current is null
// when the playlist is empty.
type PlaylistStatus struct {
	Songs   []SongInfo `json:"songs"`
	Current *int       `json:"current"`
}

// PlayerStatus is a read-only snapshot of the player. Position is null
// while the player is stopped.
type PlayerStatus struct {
	State    string   `json:"state"`
	Position *float64 `json:"position"`
	Volume   float64  `json:"volume"`
}

// Status aggregates the playlist and player snapshots returned by the
// status operation.
type Status struct {
	Playlist PlaylistStatus `json:"playlist"`
	Player   PlayerStatus   `json:"player"`
}
