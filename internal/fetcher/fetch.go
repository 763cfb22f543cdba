package fetcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrMissingURL is returned when no playlist URL is configured.
var ErrMissingURL = errors.New("playlist URL is required")

// maxLineSize bounds a single playlist line (some EXTINF lines are very long).
const maxLineSize = 1024 * 1024

// FetchLines fetches the playlist at url and returns its lines.
// userAgent is optional; timeout bounds the whole request.
func FetchLines(ctx context.Context, url string, userAgent string, timeout time.Duration) ([]string, error) {
	if url == "" {
		return nil, ErrMissingURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("NewRequest: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	lines, err := ReadLines(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ReadLines: %w", err)
	}
	return lines, nil
}

// ReadLines splits r into lines with trailing CR stripped.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
