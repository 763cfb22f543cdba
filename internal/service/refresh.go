package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/voyagen/xtreamvault/internal/metrics"
	"github.com/voyagen/xtreamvault/internal/models"
	"github.com/voyagen/xtreamvault/internal/playlist"
	"github.com/voyagen/xtreamvault/internal/store"
)

// Refresh parses the playlist when the last parse is older than the refresh
// interval, then records the parse time. Otherwise it returns a Result with
// Skipped set and touches nothing but the setting lookup.
func (p *Parser) Refresh(ctx context.Context) (Result, error) {
	return p.refresh(ctx, false)
}

// ForceRefresh parses the playlist regardless of the refresh interval.
func (p *Parser) ForceRefresh(ctx context.Context) (Result, error) {
	return p.refresh(ctx, true)
}

func (p *Parser) refresh(ctx context.Context, force bool) (Result, error) {
	release, err := p.lock.TryLock(ctx)
	if err != nil {
		return Result{}, err
	}
	defer release()

	if err := p.store.Open(ctx); err != nil {
		return Result{}, fmt.Errorf("open store: %w", err)
	}
	defer p.store.Close()

	now := p.opts.Now()
	if !force {
		last, err := p.lastUpdate(ctx)
		if err != nil {
			return Result{}, err
		}
		if age := now.Unix() - last; age < int64(p.opts.RefreshInterval/time.Second) {
			p.logger.Debug("refresh not due", "last_update", last, "age_seconds", age)
			return Result{Skipped: true}, nil
		}
	}

	lines, fetchErr := p.fetch(ctx)
	if fetchErr != nil {
		p.logger.Warn("playlist fetch failed", "err", fetchErr)
		if p.metrics != nil {
			p.metrics.FetchFailures.Inc()
		}
		lines = nil
	}

	res, err := p.ingest(ctx, lines)
	res.FetchFailed = fetchErr != nil
	if err != nil {
		return res, err
	}
	if res.FetchFailed && !p.opts.ThrottleOnFailure {
		p.logger.Info("not recording refresh after failed fetch")
		return res, nil
	}
	if err := p.store.SetSetting(ctx, models.SettingChannelLastUpdate, strconv.FormatInt(now.Unix(), 10)); err != nil {
		return res, fmt.Errorf("SetSetting: %w", err)
	}
	if p.metrics != nil {
		p.metrics.LastRefresh.Set(float64(now.Unix()))
	}
	return res, nil
}

// lastUpdate reads the last parse time; unset or unparseable counts as 0.
func (p *Parser) lastUpdate(ctx context.Context) (int64, error) {
	v, err := p.store.GetSetting(ctx, models.SettingChannelLastUpdate)
	if err != nil {
		return 0, fmt.Errorf("GetSetting: %w", err)
	}
	if v == "" {
		return 0, nil
	}
	last, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.logger.Warn("invalid last update setting", "value", v)
		return 0, nil
	}
	return last, nil
}

// Ingest runs one full parse pass over lines without the refresh gate.
func (p *Parser) Ingest(ctx context.Context, lines []string) (Result, error) {
	if err := p.store.Open(ctx); err != nil {
		return Result{}, fmt.Errorf("open store: %w", err)
	}
	defer p.store.Close()
	return p.ingest(ctx, lines)
}

func (p *Parser) ingest(ctx context.Context, lines []string) (Result, error) {
	res := Result{Lines: len(lines)}
	// Category ids resolved during this pass, by name.
	categoryIDs := make(map[string]int64)

	var st playlist.State
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("parse cancelled: %w", err)
		}

		next, err := playlist.Classify(line, st)
		st = next
		switch {
		case errors.Is(err, playlist.ErrNoName):
			res.Malformed++
			p.skipped(metrics.ReasonMalformed)
			p.logger.Warn("skipping entry without name", "line", i+1, "text", line)
			continue
		case errors.Is(err, playlist.ErrNoEntry):
			res.Orphans++
			p.skipped(metrics.ReasonOrphan)
			p.logger.Warn("skipping url without EXTINF", "line", i+1, "url", line)
			continue
		}
		if st.Phase != playlist.Complete {
			continue
		}

		// Rows are committed one at a time. An aborted pass keeps what it wrote;
		// the next pass finds those names and counts them as duplicates.
		if err := p.upsert(ctx, st.Record, categoryIDs, &res); err != nil {
			return res, err
		}
		st = playlist.State{Phase: playlist.Accumulating}
	}

	p.logger.Info("playlist parsed",
		"lines", res.Lines,
		"categories_created", res.CategoriesCreated,
		"channels_created", res.ChannelsCreated,
		"duplicates", res.Duplicates,
		"malformed", res.Malformed,
		"orphans", res.Orphans,
	)
	return res, nil
}

// upsert stores one completed record: its category first, then the channel
// unless a channel with the same normalized name exists.
func (p *Parser) upsert(ctx context.Context, rec playlist.Record, categoryIDs map[string]int64, res *Result) error {
	name := playlist.NormalizeName(rec.Name)
	if name == "" {
		res.Malformed++
		p.skipped(metrics.ReasonMalformed)
		p.logger.Warn("skipping entry with empty normalized name", "name", rec.Name, "url", rec.URL)
		return nil
	}

	var categoryID *int64
	if rec.GroupTitle != "" {
		id, err := p.ensureCategory(ctx, rec.GroupTitle, categoryIDs, res)
		if err != nil {
			return err
		}
		categoryID = &id
	}

	_, err := p.store.ChannelByName(ctx, name)
	if err == nil {
		res.Duplicates++
		p.skipped(metrics.ReasonDuplicate)
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("ChannelByName: %w", err)
	}

	ch := &models.Channel{
		Name:         name,
		StreamType:   models.StreamTypeLive,
		DirectSource: rec.URL,
		StreamIcon:   rec.StreamIcon,
		EPGChannelID: rec.EPGChannelID,
		CategoryID:   categoryID,
	}
	id, err := p.store.InsertChannel(ctx, ch)
	if err != nil {
		return fmt.Errorf("InsertChannel: %w", err)
	}
	res.ChannelsCreated++
	if p.metrics != nil {
		p.metrics.ChannelsCreated.Inc()
	}
	p.logger.Debug("channel added", "id", id, "name", name)
	return nil
}

func (p *Parser) ensureCategory(ctx context.Context, name string, categoryIDs map[string]int64, res *Result) (int64, error) {
	if id, ok := categoryIDs[name]; ok {
		return id, nil
	}
	c, err := p.store.CategoryByName(ctx, name)
	if err == nil {
		categoryIDs[name] = c.ID
		return c.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("CategoryByName: %w", err)
	}
	id, err := p.store.InsertCategory(ctx, name, 0)
	if err != nil {
		return 0, fmt.Errorf("InsertCategory: %w", err)
	}
	categoryIDs[name] = id
	res.CategoriesCreated++
	if p.metrics != nil {
		p.metrics.CategoriesCreated.Inc()
	}
	p.logger.Debug("category added", "id", id, "name", name)
	return id, nil
}

func (p *Parser) skipped(reason string) {
	if p.metrics != nil {
		p.metrics.EntriesSkipped.WithLabelValues(reason).Inc()
	}
}
