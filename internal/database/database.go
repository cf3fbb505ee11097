package database

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// DB encapsula a conexão com o banco de dados
type DB struct {
	conn *sql.DB
	log  *zap.Logger
}

// New abre o banco sqlite em dbPath e cria as tabelas necessárias
func New(dbPath string, log *zap.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// sqlite serializa escritas; uma conexão evita SQLITE_BUSY entre goroutines
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, log: log}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info("Banco de dados inicializado", zap.String("path", dbPath))
	return db, nil
}

// Close fecha a conexão com o banco de dados
func (db *DB) Close() error {
	return db.conn.Close()
}

// init cria as tabelas necessárias
func (db *DB) init() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			canonical_name TEXT NOT NULL,
			display_name TEXT NOT NULL,
			category TEXT,
			subcategory TEXT,
			brand TEXT,
			size TEXT,
			unit TEXT,
			ean TEXT,
			image_url TEXT,
			synonyms TEXT,
			variants TEXT,
			active BOOLEAN DEFAULT 1,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS supermarkets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			chain TEXT,
			city_id TEXT NOT NULL,
			street TEXT,
			neighborhood TEXT,
			zip_code TEXT,
			city TEXT,
			state TEXT,
			latitude REAL,
			longitude REAL,
			phone TEXT,
			website TEXT,
			social TEXT,
			opening_hours TEXT,
			rating REAL DEFAULT 0,
			total_reviews INTEGER DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_supermarkets_city ON supermarkets(city_id)`,
		`CREATE TABLE IF NOT EXISTS offers (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL REFERENCES products(id),
			supermarket_id TEXT NOT NULL REFERENCES supermarkets(id),
			price TEXT NOT NULL,
			unit_price TEXT NOT NULL,
			currency TEXT NOT NULL DEFAULT 'BRL',
			source TEXT NOT NULL,
			confidence_score REAL NOT NULL,
			collected_at TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			is_promotion BOOLEAN DEFAULT 0,
			stock_status TEXT NOT NULL DEFAULT 'available',
			submitter_id TEXT,
			photo_url TEXT,
			ocr_verified BOOLEAN DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_offers_product ON offers(product_id, supermarket_id)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			product_id TEXT NOT NULL REFERENCES products(id),
			city_id TEXT,
			target_price TEXT NOT NULL,
			active BOOLEAN DEFAULT 1,
			disarmed BOOLEAN DEFAULT 0,
			created_at TEXT NOT NULL,
			last_checked TEXT,
			triggered_at TEXT,
			last_triggered_at TEXT,
			version INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts(user_id)`,
		`CREATE TABLE IF NOT EXISTS scrape_targets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id TEXT NOT NULL REFERENCES products(id),
			supermarket_id TEXT NOT NULL REFERENCES supermarkets(id),
			url TEXT NOT NULL UNIQUE,
			active BOOLEAN DEFAULT 1
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// os tempos ficam em texto UTC para que a ordenação lexicográfica seja cronológica
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(s sql.NullString, v any) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), v)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(ids []string) []any {
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
