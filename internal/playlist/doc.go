// Package playlist classifies M3U playlist lines and accumulates them into
// channel records.
//
// A record is built from an #EXTINF: line, an optional #EXTGRP: line and is
// completed by the stream URL that follows. Classification does no I/O.
package playlist
