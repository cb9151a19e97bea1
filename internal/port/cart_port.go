package port

import (
	"context"

	"github.com/nikolayk812/cart-demo/internal/domain"
)

// CartRepository stores the whole cart snapshot under a single key.
type CartRepository interface {
	// Load returns an empty cart when nothing has been stored yet.
	Load(ctx context.Context) (domain.Cart, error)
	// Save overwrites the stored snapshot.
	Save(ctx context.Context, cart domain.Cart) error
}

type Catalog interface {
	GetStock(ctx context.Context, productID int64) (domain.Stock, error)
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
}

type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}
