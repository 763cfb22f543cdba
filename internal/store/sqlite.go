package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/voyagen/xtreamvault/internal/models"
	_ "modernc.org/sqlite"
)

// SQLite implements Store on a SQLite database file.
type SQLite struct {
	path string

	mu   sync.Mutex
	refs int
	db   *sql.DB
}

// NewSQLite creates a SQLite store for the database file at path. No file is opened until Open.
func NewSQLite(path string) *SQLite {
	return &SQLite{path: path}
}

// sqliteDSN adds the pragmas every connection needs.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open opens the database on first use.
func (s *SQLite) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs > 0 {
		s.refs++
		return nil
	}
	db, err := sql.Open("sqlite", sqliteDSN(s.path))
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping: %w", err)
	}
	s.db = db
	s.refs = 1
	return nil
}

// Close closes the database when the last holder releases it.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs == 0 {
		return nil
	}
	s.refs--
	if s.refs > 0 {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLite) conn() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrNotOpen
	}
	return s.db, nil
}

func (s *SQLite) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var c models.Category
	err = db.QueryRowContext(ctx,
		`SELECT category_id, category_name, parent_id FROM iptv_categories WHERE category_name = ?`,
		name,
	).Scan(&c.ID, &c.Name, &c.ParentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("CategoryByName: %w", err)
	}
	return &c, nil
}

func (s *SQLite) InsertCategory(ctx context.Context, name string, parentID int64) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO iptv_categories (category_name, parent_id) VALUES (?, ?)`,
		name, parentID,
	)
	if err != nil {
		return 0, fmt.Errorf("InsertCategory: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLite) ListCategories(ctx context.Context) ([]models.Category, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChannel(r rowScanner) (models.Channel, error) {
	var ch models.Channel
	var cat sql.NullInt64
	err := r.Scan(&ch.ID, &ch.Name, &ch.StreamType, &ch.DirectSource, &ch.StreamIcon, &ch.EPGChannelID,
		&cat, &ch.TVArchive, &ch.TVArchiveDuration)
	if err != nil {
		return ch, err
	}
	if cat.Valid {
		id := cat.Int64
		ch.CategoryID = &id
	}
	return ch, nil
}

func (s *SQLite) ChannelByName(ctx context.Context, name string) (*models.Channel, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	ch, err := scanChannel(db.QueryRowContext(ctx,
		`SELECT `+channelColumns+` FROM iptv_channels WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ChannelByName: %w", err)
	}
	return &ch, nil
}

func (s *SQLite) InsertChannel(ctx context.Context, ch *models.Channel) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var cat sql.NullInt64
	if ch.CategoryID != nil {
		cat = sql.NullInt64{Int64: *ch.CategoryID, Valid: true}
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO iptv_channels (name, stream_type, direct_source, stream_icon, epg_channel_id, category_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ch.Name, ch.StreamType, ch.DirectSource, ch.StreamIcon, ch.EPGChannelID, cat,
	)
	if err != nil {
		return 0, fmt.Errorf("InsertChannel: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLite) ListChannels(ctx context.Context) ([]models.Channel, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT `+channelColumns+` FROM iptv_channels ORDER BY channel_id`)
	if err != nil {
		return nil, fmt.Errorf("ListChannels: %w", err)
	}
	defer rows.Close()

	var out []models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("ListChannels scan: %w", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListChannels rows: %w", err)
	}
	return out, nil
}

func (s *SQLite) GetSetting(ctx context.Context, key string) (string, error) {
	db, err := s.conn()
	if err != nil {
		return "", err
	}
	var v string
	err = db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("GetSetting: %w", err)
	}
	return v, nil
}

func (s *SQLite) SetSetting(ctx context.Context, key, value string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("SetSetting: %w", err)
	}
	return nil
}
