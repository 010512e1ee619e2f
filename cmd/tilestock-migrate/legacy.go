package main

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Legacy row shapes, matching the old schema column for column. Nullable
// columns use sql.Null* so a sparse row doesn't fail the whole scan.

type legacyUser struct {
	ID        int64
	Username  string
	Email     sql.NullString
	Role      string
	IsActive  bool
	CreatedAt sql.NullString
}

type legacyTile struct {
	ID       int64
	Brand    string
	Size     string
	BuyPrice sql.NullFloat64
	Price    float64
	Quantity int
}

type legacyBill struct {
	ID             int64
	CustomerName   sql.NullString
	CustomerMobile sql.NullString
	Total          float64
	GST            float64
	Discount       float64
	Date           sql.NullString
}

type legacyBillItem struct {
	BillID   int64
	TileName string
	Size     string
	Price    float64
	Quantity int
	Total    float64
}

// legacyDB wraps the read side of the migration.
type legacyDB struct {
	db *sql.DB
}

func openLegacy(path string) (*legacyDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	return &legacyDB{db: db}, nil
}

func (l *legacyDB) Close() error { return l.db.Close() }

func (l *legacyDB) users() ([]legacyUser, error) {
	rows, err := l.db.Query(`SELECT id, username, email, role, is_active, created_at FROM user`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []legacyUser
	for rows.Next() {
		var u legacyUser
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (l *legacyDB) tiles() ([]legacyTile, error) {
	rows, err := l.db.Query(`SELECT id, brand, size, buy_price, price, quantity FROM tile`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []legacyTile
	for rows.Next() {
		var t legacyTile
		if err := rows.Scan(&t.ID, &t.Brand, &t.Size, &t.BuyPrice, &t.Price, &t.Quantity); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (l *legacyDB) bills() ([]legacyBill, error) {
	rows, err := l.db.Query(`SELECT id, customer_name, customer_mobile, total, gst, discount, date FROM bill`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []legacyBill
	for rows.Next() {
		var b legacyBill
		if err := rows.Scan(&b.ID, &b.CustomerName, &b.CustomerMobile, &b.Total, &b.GST, &b.Discount, &b.Date); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// billItems returns all line items grouped by their bill id.
func (l *legacyDB) billItems() (map[int64][]legacyBillItem, error) {
	rows, err := l.db.Query(`SELECT bill_id, tile_name, size, price, quantity, total FROM bill_item ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]legacyBillItem)
	for rows.Next() {
		var it legacyBillItem
		if err := rows.Scan(&it.BillID, &it.TileName, &it.Size, &it.Price, &it.Quantity, &it.Total); err != nil {
			return nil, err
		}
		out[it.BillID] = append(out[it.BillID], it)
	}
	return out, rows.Err()
}

// parseLegacyTime handles the timestamp formats SQLite stored over the
// app's lifetime. A blank or unparseable value falls back to now.
func parseLegacyTime(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Now().UTC()
	}
	layouts := []string{
		"2006-01-02 15:04:05.999999",
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw.String); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}
