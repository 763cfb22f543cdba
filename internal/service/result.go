package service

import "errors"

// ErrRefreshRunning is returned when another refresh holds the lock.
var ErrRefreshRunning = errors.New("refresh already running")

// Result summarizes a refresh or parse pass.
type Result struct {
	// Skipped is true when the throttle window had not passed.
	Skipped bool `json:"skipped"`
	// FetchFailed is true when the playlist could not be retrieved.
	FetchFailed bool `json:"fetch_failed"`

	Lines             int `json:"lines"`
	CategoriesCreated int `json:"categories_created"`
	ChannelsCreated   int `json:"channels_created"`
	// Duplicates counts entries whose name was already stored.
	Duplicates int `json:"duplicates"`
	// Malformed counts #EXTINF: lines with no derivable name.
	Malformed int `json:"malformed"`
	// Orphans counts URL lines with no preceding #EXTINF:.
	Orphans int `json:"orphans"`
}
