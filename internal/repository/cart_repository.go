package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cart-demo/internal/db"
	"github.com/nikolayk812/cart-demo/internal/domain"
	"github.com/nikolayk812/cart-demo/internal/port"
	"github.com/shopspring/decimal"
)

const DefaultStorageKey = "@RocketShoes:cart"

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
	key  string
}

// NewCart returns a PostgreSQL-backed repository storing one row per entry under key.
func NewCart(pool *pgxpool.Pool, key string) (port.CartRepository, error) {
	if key == "" {
		return nil, errEmptyKey
	}

	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
		key:  key,
	}, nil
}

func NewCartWithTx(tx pgx.Tx, key string) (port.CartRepository, error) {
	if key == "" {
		return nil, errEmptyKey
	}

	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
		key:  key,
	}, nil
}

func (r *cartRepository) Load(ctx context.Context) (domain.Cart, error) {
	rows, err := r.q.GetCart(ctx, r.key)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCart: %w", err)
	}

	items, err := mapGetCartRowsToDomain(rows)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapGetCartRowsToDomain: %w", err)
	}

	return domain.Cart{Items: items}, nil
}

// Save replaces all rows of the key in a single transaction.
func (r *cartRepository) Save(ctx context.Context, cart domain.Cart) error {
	return withTx(ctx, r.pool, r.q, func(q *db.Queries) error {
		if _, err := q.DeleteCart(ctx, r.key); err != nil {
			return fmt.Errorf("q.DeleteCart: %w", err)
		}

		for i, item := range cart.Items {
			err := q.AddItem(ctx, db.AddItemParams{
				StorageKey: r.key,
				Position:   int32(i),
				ProductID:  item.ID,
				Title:      item.Title,
				Price:      item.Price.String(),
				Image:      item.Image,
				Amount:     int32(item.Amount),
			})
			if err != nil {
				return fmt.Errorf("q.AddItem[%d]: %w", item.ID, err)
			}
		}

		return nil
	})
}

func mapGetCartRowToDomain(row db.GetCartRow) (domain.Product, error) {
	price, err := decimal.NewFromString(row.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("price[%s] is not valid: %w", row.Price, err)
	}

	return domain.Product{
		ID:     row.ProductID,
		Title:  row.Title,
		Price:  price,
		Image:  row.Image,
		Amount: int(row.Amount),
	}, nil
}

func mapGetCartRowsToDomain(rows []db.GetCartRow) ([]domain.Product, error) {
	items := make([]domain.Product, 0, len(rows))

	for _, row := range rows {
		item, err := mapGetCartRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapGetCartRowToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
