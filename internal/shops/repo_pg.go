package shops

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres. Row order follows the BIGSERIAL
// seq columns, which mirror insertion order.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) List(ctx context.Context) ([]Shop, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, name, address, phone, created_at
FROM shops
ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Shop
	index := make(map[string]int)
	for rows.Next() {
		var s Shop
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Tires = []Tire{}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return []Shop{}, nil
	}

	tireRows, err := r.DB.QueryContext(ctx, `
SELECT shop_id, id, code, brand, model, size, price, quantity
FROM tires
ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer tireRows.Close()
	for tireRows.Next() {
		var shopID string
		var t Tire
		if err := tireRows.Scan(&shopID, &t.ID, &t.Code, &t.Brand, &t.Model, &t.Size, &t.Price, &t.Quantity); err != nil {
			return nil, err
		}
		if i, ok := index[shopID]; ok {
			out[i].Tires = append(out[i].Tires, t)
		}
	}
	return out, tireRows.Err()
}

func (r *PGRepo) Get(ctx context.Context, id string) (Shop, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Shop{}, ErrNotFound
	}
	var s Shop
	err := r.DB.QueryRowContext(ctx, `
SELECT id, name, address, phone, created_at
FROM shops
WHERE id = $1`, id).Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Shop{}, ErrNotFound
	}
	if err != nil {
		return Shop{}, err
	}

	rows, err := r.DB.QueryContext(ctx, `
SELECT id, code, brand, model, size, price, quantity
FROM tires
WHERE shop_id = $1
ORDER BY seq`, id)
	if err != nil {
		return Shop{}, err
	}
	defer rows.Close()
	s.Tires = []Tire{}
	for rows.Next() {
		var t Tire
		if err := rows.Scan(&t.ID, &t.Code, &t.Brand, &t.Model, &t.Size, &t.Price, &t.Quantity); err != nil {
			return Shop{}, err
		}
		s.Tires = append(s.Tires, t)
	}
	return s, rows.Err()
}

func (r *PGRepo) Create(ctx context.Context, shop Shop) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO shops (id, name, address, phone, created_at)
VALUES ($1, $2, $3, $4, $5)`,
		shop.ID, shop.Name, shop.Address, shop.Phone, shop.CreatedAt); err != nil {
		return err
	}
	for _, t := range shop.Tires {
		if err := insertTire(ctx, tx, shop.ID, t); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PGRepo) AddTire(ctx context.Context, shopID string, tire Tire) error {
	if _, err := uuid.Parse(shopID); err != nil {
		return ErrNotFound
	}
	return insertTire(ctx, r.DB, shopID, tire)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertTire only inserts when the shop exists, so a missing shop shows up
// as zero affected rows instead of a foreign key error.
func insertTire(ctx context.Context, db execer, shopID string, t Tire) error {
	res, err := db.ExecContext(ctx, `
INSERT INTO tires (id, shop_id, code, brand, model, size, price, quantity)
SELECT $1, id, $3, $4, $5, $6, $7, $8
FROM shops
WHERE id = $2`,
		t.ID, shopID, t.Code, t.Brand, t.Model, t.Size, t.Price, t.Quantity)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) TiresBySize(ctx context.Context, size string) ([]SizedTire, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT s.id, s.name, t.id, t.code, t.brand, t.model, t.size, t.price, t.quantity
FROM tires t
JOIN shops s ON s.id = t.shop_id
WHERE t.size = $1
ORDER BY s.seq, t.seq`, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SizedTire{}
	for rows.Next() {
		var st SizedTire
		t := &st.Tire
		if err := rows.Scan(&st.ShopID, &st.ShopName, &t.ID, &t.Code, &t.Brand, &t.Model, &t.Size, &t.Price, &t.Quantity); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
