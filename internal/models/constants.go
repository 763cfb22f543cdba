package models

// StreamTypeLive is the only stream type produced from an M3U playlist.
const StreamTypeLive = "live"

// Setting keys.
const (
	// SettingChannelLastUpdate holds the Unix time of the last full playlist parse.
	SettingChannelLastUpdate = "channel_last_update"
)
