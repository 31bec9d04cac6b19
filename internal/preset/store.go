package preset

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"
	"golang.org/x/text/unicode/norm"

	"github.com/leandrodaf/synthsync/internal/codec"
	"github.com/leandrodaf/synthsync/sdk/contracts"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - presets table
const currentSchemaVersion = 1

// MaxNameLength bounds preset names, in runes.
const MaxNameLength = 128

var (
	// ErrInvalidName is returned for empty, oversized or non-UTF-8 preset names.
	ErrInvalidName = errors.New("invalid preset name")
	// ErrNotFound is returned when no preset has the requested name.
	ErrNotFound = errors.New("preset not found")
)

// Info describes a stored preset without its body.
type Info struct {
	Name      string
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is a SQLite-backed preset bank.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the preset database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to connect to database: %w", err), db.Close())
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to apply pragmas: %w", err), db.Close())
	}
	if err := applySchema(db); err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to apply schema: %w", err), db.Close())
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NormalizeName trims name and converts it to NFC.
func NormalizeName(name string) (string, error) {
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: not valid UTF-8", ErrInvalidName)
	}
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidName, MaxNameLength)
	}
	return name, nil
}

// Save stores snap under name, replacing any preset with the same name.
func (s *Store) Save(ctx context.Context, name string, snap contracts.Snapshot) error {
	key, err := NormalizeName(name)
	if err != nil {
		return err
	}
	body, err := codec.Encode(snap)
	if err != nil {
		return err
	}
	version := snap.Version
	if version == 0 {
		version = contracts.SnapshotVersion
	}

	now := s.now().UTC().UnixNano()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO presets (name, version, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			body = excluded.body,
			updated_at = excluded.updated_at`,
		key, version, body, now, now)
	if err != nil {
		return fmt.Errorf("save preset %q: %w", key, err)
	}
	return nil
}

// Load returns the snapshot stored under name.
func (s *Store) Load(ctx context.Context, name string) (contracts.Snapshot, error) {
	key, err := NormalizeName(name)
	if err != nil {
		return contracts.Snapshot{}, err
	}

	var body []byte
	err = s.db.QueryRowContext(ctx, `SELECT body FROM presets WHERE name = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return contracts.Snapshot{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if err != nil {
		return contracts.Snapshot{}, fmt.Errorf("load preset %q: %w", key, err)
	}
	snap, err := codec.Decode(body)
	if err != nil {
		return contracts.Snapshot{}, fmt.Errorf("decode preset %q: %w", key, err)
	}
	return snap, nil
}

// List returns the stored presets ordered by name.
func (s *Store) List(ctx context.Context) (infos []Info, err error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, version, created_at, updated_at
		FROM presets
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer func() { err = multierr.Append(err, rows.Close()) }()

	infos = []Info{}
	for rows.Next() {
		var (
			info             Info
			created, updated int64
		)
		if err := rows.Scan(&info.Name, &info.Version, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		info.CreatedAt = time.Unix(0, created).UTC()
		info.UpdatedAt = time.Unix(0, updated).UTC()
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate presets: %w", err)
	}
	return infos, nil
}

// Delete removes the preset stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	key, err := NormalizeName(name)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE name = ?`, key)
	if err != nil {
		return fmt.Errorf("delete preset %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete preset %q: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, currentSchemaVersion)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
