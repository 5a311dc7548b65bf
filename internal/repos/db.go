package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// OpenDB opens the SQLite database and applies the schema. The pool is held
// to a single connection: SQLite serializes writers anyway and ":memory:"
// databases are per-connection.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Wines (catalog entries; quantity and shelf live in inventory)
CREATE TABLE IF NOT EXISTS wines(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  vin_id TEXT NOT NULL UNIQUE,
  item_number TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL DEFAULT '',
  type TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  region TEXT NOT NULL DEFAULT '',
  grape TEXT NOT NULL DEFAULT '',
  vintage INTEGER,
  purchase_price REAL,
  image_url TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_wines_name ON wines(LOWER(name));

-- Locations (created lazily by name)
CREATE TABLE IF NOT EXISTS locations(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  category TEXT NOT NULL DEFAULT 'wine' CHECK (category IN ('wine','other-goods')),
  description TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Inventory
CREATE TABLE IF NOT EXISTS inventory(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  wine_id INTEGER NOT NULL REFERENCES wines(id) ON DELETE RESTRICT,
  location_id INTEGER NOT NULL REFERENCES locations(id) ON DELETE RESTRICT,
  shelf_unit TEXT NOT NULL DEFAULT '',
  shelf_level TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL DEFAULT 0,
  min_quantity INTEGER NOT NULL DEFAULT 24,
  updated_at TEXT,
  UNIQUE(wine_id, location_id, shelf_unit, shelf_level)
);
CREATE INDEX IF NOT EXISTS idx_inventory_wine     ON inventory(wine_id);
CREATE INDEX IF NOT EXISTS idx_inventory_location ON inventory(location_id);

-- Count log (append-only; no FK so entries outlive deleted wines)
CREATE TABLE IF NOT EXISTS counts(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  vin_id TEXT NOT NULL,
  inventory_id INTEGER,
  previous_quantity INTEGER NOT NULL,
  new_quantity INTEGER NOT NULL,
  delta INTEGER NOT NULL,
  counted_by TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_counts_vin ON counts(vin_id);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

// chunk splits ids so IN (...) lists stay well under SQLite's variable limit.
func chunk(ids []int64, size int) [][]int64 {
	var out [][]int64
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
