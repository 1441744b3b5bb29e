package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore 以 modernc.org/sqlite 實作食材、食譜、食材櫃與抓取紀錄的儲存
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite 開啟 SQLite 資料庫並設定 WAL 模式
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dsn); dir != "." && dsn != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "sqlite: create dir %s", dir)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// 單一連線避免 WAL 下的寫入競爭
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS ingredients (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL UNIQUE COLLATE NOCASE,
	category     TEXT NOT NULL DEFAULT 'other',
	substitutes  TEXT NOT NULL DEFAULT '[]',
	storage_tips TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS recipes (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	name              TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	instructions      TEXT NOT NULL DEFAULT '',
	prep_time_minutes INTEGER NOT NULL DEFAULT 0,
	cook_time_minutes INTEGER NOT NULL DEFAULT 0,
	servings          INTEGER NOT NULL DEFAULT 1,
	source_url        TEXT NOT NULL DEFAULT '',
	image_path        TEXT NOT NULL DEFAULT '',
	cuisine           TEXT NOT NULL DEFAULT '',
	category          TEXT NOT NULL DEFAULT '',
	difficulty        TEXT NOT NULL DEFAULT '',
	dietary_tags      TEXT NOT NULL DEFAULT '[]',
	rating            REAL,
	nutrition         TEXT NOT NULL DEFAULT '{}',
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS recipe_ingredients (
	recipe_id        INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	ingredient_id    INTEGER NOT NULL REFERENCES ingredients(id),
	quantity         REAL NOT NULL DEFAULT 0,
	unit             TEXT NOT NULL DEFAULT '',
	preparation_note TEXT NOT NULL DEFAULT '',
	display_order    INTEGER NOT NULL DEFAULT 0,
	is_optional      INTEGER NOT NULL DEFAULT 0,
	UNIQUE(recipe_id, ingredient_id)
);

CREATE TABLE IF NOT EXISTS pantry (
	household_id      INTEGER NOT NULL,
	ingredient_id     INTEGER NOT NULL REFERENCES ingredients(id),
	is_available      INTEGER NOT NULL DEFAULT 1,
	quantity_estimate TEXT NOT NULL DEFAULT '',
	last_updated      DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (household_id, ingredient_id)
);

CREATE TABLE IF NOT EXISTS scrape_log (
	id             TEXT PRIMARY KEY,
	url            TEXT NOT NULL,
	success        INTEGER NOT NULL,
	method         TEXT NOT NULL DEFAULT '',
	confidence     REAL NOT NULL DEFAULT 0,
	failure_reason TEXT NOT NULL DEFAULT '',
	duration_ms    INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_recipe_id ON recipe_ingredients(recipe_id);
CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_ingredient_id ON recipe_ingredients(ingredient_id);
CREATE INDEX IF NOT EXISTS idx_pantry_household ON pantry(household_id);
CREATE INDEX IF NOT EXISTS idx_pantry_ingredient ON pantry(ingredient_id);
CREATE INDEX IF NOT EXISTS idx_scrape_log_created_at ON scrape_log(created_at);
`

// Migrate 建立資料表
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Ping 檢查資料庫連線
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

// Close 關閉資料庫
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// checkRowsAffected 更新或刪除沒有影響任何資料列時回傳 notFound
func checkRowsAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal json")
	}
	return string(b), nil
}

func unmarshalJSON(raw string, v any) error {
	if raw == "" {
		return nil
	}
	return eris.Wrap(json.Unmarshal([]byte(raw), v), "sqlite: unmarshal json")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
