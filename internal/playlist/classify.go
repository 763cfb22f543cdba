package playlist

import (
	"errors"
	"regexp"
	"strings"
)

// Line tags.
const (
	TagEXTINF = "#EXTINF:"
	TagEXTGRP = "#EXTGRP:"
	urlPrefix = "http"
)

var (
	// ErrNoName is returned for an #EXTINF: line with neither tvg-name nor a title.
	ErrNoName = errors.New("no name from EXTINF")
	// ErrNoEntry is returned for a URL line with no preceding #EXTINF: line.
	ErrNoEntry = errors.New("url without EXTINF")
)

var (
	reTvgName = regexp.MustCompile(`(?:^|\s)tvg-name="([^"]*)"`)
	reTvgID   = regexp.MustCompile(`(?:^|\s)tvg-id="([^"]*)"`)
	reTvgLogo = regexp.MustCompile(`(?:^|\s)tvg-logo="([^"]*)"`)
	reGroup   = regexp.MustCompile(`(?:^|\s)group-title="([^"]*)"`)
)

// Classify applies one playlist line to st and returns the next state.
//
// A Complete state passed in is treated as Accumulating with an empty record;
// callers reset after consuming a Complete record. On error the returned
// state is still valid and processing can continue with the next line.
func Classify(line string, st State) (State, error) {
	if st.Phase == Complete {
		st = State{}
	}
	line = strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(line, TagEXTINF):
		rec, err := parseEXTINF(line)
		if err != nil {
			return State{Phase: Skipping}, err
		}
		return State{Phase: Accumulating, Record: rec}, nil

	case strings.HasPrefix(line, TagEXTGRP):
		if st.Phase == Skipping {
			return st, nil
		}
		if g := strings.TrimSpace(strings.TrimPrefix(line, TagEXTGRP)); g != "" {
			st.Record.GroupTitle = g
		}
		return st, nil

	case strings.HasPrefix(line, urlPrefix):
		if st.Phase == Skipping {
			// URL of the malformed entry; drop it and start over.
			return State{}, nil
		}
		if st.Record.Name == "" {
			return State{}, ErrNoEntry
		}
		st.Record.URL = line
		st.Phase = Complete
		return st, nil
	}
	return st, nil
}

func parseEXTINF(line string) (Record, error) {
	header, title := splitEXTINF(line)
	rec := Record{
		StreamIcon:   attr(reTvgLogo, header),
		GroupTitle:   attr(reGroup, header),
		EPGChannelID: attr(reTvgID, header),
	}
	rec.Name = attr(reTvgName, header)
	if rec.Name == "" {
		rec.Name = strings.TrimSpace(title)
	}
	if rec.Name == "" {
		return Record{}, ErrNoName
	}
	return rec, nil
}

// splitEXTINF splits an #EXTINF: line into its attribute header and display
// title at the first comma outside a quoted attribute value. A line with no
// such comma has no title. When quotes are unbalanced the last comma is used.
func splitEXTINF(line string) (header, title string) {
	inQuote := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				return line[:i], line[i+1:]
			}
		}
	}
	if inQuote {
		if i := strings.LastIndex(line, ","); i >= 0 {
			return line[:i], line[i+1:]
		}
	}
	return line, ""
}

func attr(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
