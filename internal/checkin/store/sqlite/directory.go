package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

// PersonDirectory reads the persons table.  Registration happens outside the
// engine (roster seeding), so there is no write path here.
type PersonDirectory struct {
	db *sql.DB
}

func NewPersonDirectory(db *sql.DB) *PersonDirectory {
	return &PersonDirectory{db: db}
}

// LookupByShortCode orders by rowid so duplicate codes resolve the same way
// for a given snapshot of the table.
func (d *PersonDirectory) LookupByShortCode(ctx context.Context, code string) ([]types.Person, error) {
	rows, err := d.db.QueryContext(ctx, `
SELECT person_id, display_name, short_code, COALESCE(email, ''), COALESCE(phone, '')
FROM persons
WHERE short_code = ?
ORDER BY rowid;
`, code)
	if err != nil {
		return nil, fmt.Errorf("LookupByShortCode query: %w", err)
	}
	defer rows.Close()

	var out []types.Person
	for rows.Next() {
		var p types.Person
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.ShortCode, &p.Email, &p.Phone); err != nil {
			return nil, fmt.Errorf("LookupByShortCode scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LookupByShortCode rows: %w", err)
	}
	return out, nil
}

func (d *PersonDirectory) LookupByID(ctx context.Context, id string) (*types.Person, error) {
	var p types.Person
	err := d.db.QueryRowContext(ctx, `
SELECT person_id, display_name, short_code, COALESCE(email, ''), COALESCE(phone, '')
FROM persons
WHERE person_id = ?;
`, id).Scan(&p.ID, &p.DisplayName, &p.ShortCode, &p.Email, &p.Phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LookupByID query: %w", err)
	}
	return &p, nil
}

type LocationDirectory struct {
	db *sql.DB
}

func NewLocationDirectory(db *sql.DB) *LocationDirectory {
	return &LocationDirectory{db: db}
}

func (d *LocationDirectory) ListAll(ctx context.Context) ([]types.Location, error) {
	rows, err := d.db.QueryContext(ctx, `
SELECT location_id, display_name
FROM locations
ORDER BY display_name, location_id;
`)
	if err != nil {
		return nil, fmt.Errorf("ListAll query: %w", err)
	}
	defer rows.Close()

	out := []types.Location{}
	for rows.Next() {
		var l types.Location
		if err := rows.Scan(&l.ID, &l.DisplayName); err != nil {
			return nil, fmt.Errorf("ListAll scan: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAll rows: %w", err)
	}
	return out, nil
}

func (d *LocationDirectory) LookupByID(ctx context.Context, id string) (*types.Location, error) {
	var l types.Location
	err := d.db.QueryRowContext(ctx, `
SELECT location_id, display_name FROM locations WHERE location_id = ?;
`, id).Scan(&l.ID, &l.DisplayName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LookupByID query: %w", err)
	}
	return &l, nil
}
