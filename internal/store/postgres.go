package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voyagen/xtreamvault/internal/models"
)

// Postgres implements Store using PostgreSQL.
type Postgres struct {
	dsn string

	mu   sync.Mutex
	refs int
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store for dsn. No connection is made until Open.
func NewPostgres(dsn string) *Postgres {
	return &Postgres{dsn: dsn}
}

// Open creates the connection pool on first use.
func (p *Postgres) Open(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refs > 0 {
		p.refs++
		return nil
	}
	pool, err := pgxpool.New(ctx, p.dsn)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping: %w", err)
	}
	p.pool = pool
	p.refs = 1
	return nil
}

// Close closes the pool when the last holder releases it.
func (p *Postgres) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refs == 0 {
		return nil
	}
	p.refs--
	if p.refs == 0 {
		p.pool.Close()
		p.pool = nil
	}
	return nil
}

func (p *Postgres) conn() (*pgxpool.Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool == nil {
		return nil, ErrNotOpen
	}
	return p.pool, nil
}

func (p *Postgres) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	pool, err := p.conn()
	if err != nil {
		return nil, err
	}
	var c models.Category
	err = pool.QueryRow(ctx,
		`SELECT category_id, category_name, parent_id FROM iptv_categories WHERE category_name = $1`,
		name,
	).Scan(&c.ID, &c.Name, &c.ParentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("CategoryByName: %w", err)
	}
	return &c, nil
}

func (p *Postgres) InsertCategory(ctx context.Context, name string, parentID int64) (int64, error) {
	pool, err := p.conn()
	if err != nil {
		return 0, err
	}
	var id int64
	err = pool.QueryRow(ctx,
		`INSERT INTO iptv_categories (category_name, parent_id) VALUES ($1, $2) RETURNING category_id`,
		name, parentID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("InsertCategory: %w", err)
	}
	return id, nil
}

func (p *Postgres) ListCategories(ctx context.Context) ([]models.Category, error) {
	pool, err := p.conn()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx,
		`SELECT category_id, category_name, parent_id FROM iptv_categories ORDER BY category_id`)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID); err != nil {
			return nil, fmt.Errorf("ListCategories scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListCategories rows: %w", err)
	}
	return out, nil
}

const channelColumns = `channel_id, name, stream_type, direct_source, stream_icon, epg_channel_id,
	category_id, tv_archive, tv_archive_duration`

func (p *Postgres) ChannelByName(ctx context.Context, name string) (*models.Channel, error) {
	pool, err := p.conn()
	if err != nil {
		return nil, err
	}
	var ch models.Channel
	err = pool.QueryRow(ctx,
		`SELECT `+channelColumns+` FROM iptv_channels WHERE name = $1`,
		name,
	).Scan(&ch.ID, &ch.Name, &ch.StreamType, &ch.DirectSource, &ch.StreamIcon, &ch.EPGChannelID,
		&ch.CategoryID, &ch.TVArchive, &ch.TVArchiveDuration)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ChannelByName: %w", err)
	}
	return &ch, nil
}

func (p *Postgres) InsertChannel(ctx context.Context, ch *models.Channel) (int64, error) {
	pool, err := p.conn()
	if err != nil {
		return 0, err
	}
	var id int64
	err = pool.QueryRow(ctx,
		`INSERT INTO iptv_channels (name, stream_type, direct_source, stream_icon, epg_channel_id, category_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING channel_id`,
		ch.Name, ch.StreamType, ch.DirectSource, ch.StreamIcon, ch.EPGChannelID, ch.CategoryID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("InsertChannel: %w", err)
	}
	return id, nil
}

func (p *Postgres) ListChannels(ctx context.Context) ([]models.Channel, error) {
	pool, err := p.conn()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, `SELECT `+channelColumns+` FROM iptv_channels ORDER BY channel_id`)
	if err != nil {
		return nil, fmt.Errorf("ListChannels: %w", err)
	}
	defer rows.Close()

	var out []models.Channel
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.StreamType, &ch.DirectSource, &ch.StreamIcon, &ch.EPGChannelID,
			&ch.CategoryID, &ch.TVArchive, &ch.TVArchiveDuration); err != nil {
			return nil, fmt.Errorf("ListChannels scan: %w", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListChannels rows: %w", err)
	}
	return out, nil
}

func (p *Postgres) GetSetting(ctx context.Context, key string) (string, error) {
	pool, err := p.conn()
	if err != nil {
		return "", err
	}
	var v string
	err = pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("GetSetting: %w", err)
	}
	return v, nil
}

func (p *Postgres) SetSetting(ctx context.Context, key, value string) error {
	pool, err := p.conn()
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("SetSetting: %w", err)
	}
	return nil
}
