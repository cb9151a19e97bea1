package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

const getCart = `
SELECT product_id, title, price::text, image, amount
FROM cart_items
WHERE storage_key = $1
ORDER BY position
`

type GetCartRow struct {
	ProductID int64
	Title     string
	Price     string
	Image     string
	Amount    int32
}

func (q *Queries) GetCart(ctx context.Context, storageKey string) ([]GetCartRow, error) {
	rows, err := q.db.Query(ctx, getCart, storageKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []GetCartRow
	for rows.Next() {
		var i GetCartRow
		if err := rows.Scan(&i.ProductID, &i.Title, &i.Price, &i.Image, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteCart = `
DELETE FROM cart_items
WHERE storage_key = $1
`

func (q *Queries) DeleteCart(ctx context.Context, storageKey string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCart, storageKey)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const addItem = `
INSERT INTO cart_items (storage_key, position, product_id, title, price, image, amount)
VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
`

type AddItemParams struct {
	StorageKey string
	Position   int32
	ProductID  int64
	Title      string
	Price      string
	Image      string
	Amount     int32
}

func (q *Queries) AddItem(ctx context.Context, arg AddItemParams) error {
	_, err := q.db.Exec(ctx, addItem,
		arg.StorageKey,
		arg.Position,
		arg.ProductID,
		arg.Title,
		arg.Price,
		arg.Image,
		arg.Amount,
	)
	return err
}
