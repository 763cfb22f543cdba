package models

// Channel is a stored live stream entry. Name is unique.
type Channel struct {
	ID                int64  `json:"channel_id,omitempty"`
	Name              string `json:"name"`
	StreamType        string `json:"stream_type"`
	DirectSource      string `json:"direct_source"`
	StreamIcon        string `json:"stream_icon"`
	EPGChannelID      string `json:"epg_channel_id"`
	CategoryID        *int64 `json:"category_id"`
	TVArchive         int    `json:"tv_archive"`
	TVArchiveDuration int    `json:"tv_archive_duration"`
}

// LiveStream is the consumer-facing shape of a Channel (Xtream get_live_streams).
type LiveStream struct {
	Num               int64   `json:"num"`
	Name              string  `json:"name"`
	StreamType        string  `json:"stream_type"`
	StreamID          int64   `json:"stream_id"`
	StreamIcon        string  `json:"stream_icon"`
	EPGChannelID      string  `json:"epg_channel_id"`
	Added             *string `json:"added"`
	CategoryID        *int64  `json:"category_id"`
	TVArchive         int     `json:"tv_archive"`
	DirectSource      string  `json:"direct_source"`
	TVArchiveDuration int     `json:"tv_archive_duration"`
}

// ToLiveStream projects a stored channel. StreamID is the channel id minus one; Added is unknown.
func (c Channel) ToLiveStream() LiveStream {
	return LiveStream{
		Num:               c.ID,
		Name:              c.Name,
		StreamType:        c.StreamType,
		StreamID:          c.ID - 1,
		StreamIcon:        c.StreamIcon,
		EPGChannelID:      c.EPGChannelID,
		Added:             nil,
		CategoryID:        c.CategoryID,
		TVArchive:         c.TVArchive,
		DirectSource:      c.DirectSource,
		TVArchiveDuration: c.TVArchiveDuration,
	}
}
