package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/cart-demo/internal/domain"
	"github.com/nikolayk812/cart-demo/internal/port"
	"github.com/sirupsen/logrus"
)

var (
	ErrStockUnavailable = errors.New("requested quantity exceeds stock")
	ErrEntryNotFound    = errors.New("product is not in cart")
	ErrRemoteFetch      = errors.New("remote fetch failed")
)

const (
	MsgOutOfStock   = "Requested quantity is out of stock"
	MsgAddFailed    = "Error adding product"
	MsgRemoveFailed = "Error removing product"
	MsgUpdateFailed = "Error updating product amount"
)

type UpdateProductAmount struct {
	ProductID int64
	Amount    int
}

// CartStore owns the cart snapshot. Mutations are validated against the catalog,
// saved to the repository and only then published in memory. Every rejected
// mutation emits exactly one notification and leaves the snapshot untouched.
type CartStore struct {
	repo     port.CartRepository
	catalog  port.Catalog
	notifier port.Notifier
	log      logrus.FieldLogger

	// held for the whole operation, remote calls included
	mu   sync.Mutex
	cart domain.Cart
}

func NewCartStore(
	ctx context.Context,
	repo port.CartRepository,
	catalog port.Catalog,
	notifier port.Notifier,
	log logrus.FieldLogger,
) (*CartStore, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is nil")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is nil")
	}
	if log == nil {
		return nil, fmt.Errorf("log is nil")
	}

	cart, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.Load: %w", err)
	}

	return &CartStore{
		repo:     repo,
		catalog:  catalog,
		notifier: notifier,
		log:      log,
		cart:     cart.Clone(),
	}, nil
}

// Cart returns a copy of the current snapshot.
func (s *CartStore) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Clone()
}

func (s *CartStore) AddProduct(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stock, err := s.catalog.GetStock(ctx, productID)
	if err != nil {
		return s.reject(ctx, MsgAddFailed, productID, fmt.Errorf("catalog.GetStock: %w: %w", ErrRemoteFetch, err))
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return s.reject(ctx, MsgAddFailed, productID, fmt.Errorf("catalog.GetProduct: %w: %w", ErrRemoteFetch, err))
	}

	var next domain.Cart

	if current, found := s.cart.Find(productID); found {
		if current.Amount >= stock.Amount {
			return s.reject(ctx, MsgOutOfStock, productID, stockError(current.Amount+1, stock))
		}
		next = s.cart.WithAmount(productID, current.Amount+1)
	} else {
		// zero stock rejects the first add too
		if stock.Amount < 1 {
			return s.reject(ctx, MsgOutOfStock, productID, stockError(1, stock))
		}
		product.Amount = 1
		next = s.cart.Append(product)
	}

	if err := s.commit(ctx, next); err != nil {
		return s.reject(ctx, MsgAddFailed, productID, err)
	}

	return nil
}

func (s *CartStore) RemoveProduct(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.cart.Find(productID); !found {
		return s.reject(ctx, MsgRemoveFailed, productID, fmt.Errorf("product[%d]: %w", productID, ErrEntryNotFound))
	}

	if err := s.commit(ctx, s.cart.Without(productID)); err != nil {
		return s.reject(ctx, MsgRemoveFailed, productID, err)
	}

	return nil
}

// UpdateProductAmount sets the amount of an existing entry. Amounts below 1 are
// ignored without a notification so a decrement control can stop at 1.
func (s *CartStore) UpdateProductAmount(ctx context.Context, upd UpdateProductAmount) error {
	if upd.Amount < 1 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.cart.Find(upd.ProductID); !found {
		return s.reject(ctx, MsgUpdateFailed, upd.ProductID, fmt.Errorf("product[%d]: %w", upd.ProductID, ErrEntryNotFound))
	}

	stock, err := s.catalog.GetStock(ctx, upd.ProductID)
	if err != nil {
		return s.reject(ctx, MsgUpdateFailed, upd.ProductID, fmt.Errorf("catalog.GetStock: %w: %w", ErrRemoteFetch, err))
	}

	if stock.Amount < upd.Amount {
		return s.reject(ctx, MsgOutOfStock, upd.ProductID, stockError(upd.Amount, stock))
	}

	if err := s.commit(ctx, s.cart.WithAmount(upd.ProductID, upd.Amount)); err != nil {
		return s.reject(ctx, MsgUpdateFailed, upd.ProductID, err)
	}

	return nil
}

// commit saves next and then publishes it; s.mu must be held.
func (s *CartStore) commit(ctx context.Context, next domain.Cart) error {
	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("repo.Save: %w", err)
	}

	s.cart = next

	s.log.WithField("size", next.Size()).Debug("cart committed")
	return nil
}

func (s *CartStore) reject(ctx context.Context, msg string, productID int64, err error) error {
	level := domain.LevelError
	if errors.Is(err, ErrStockUnavailable) {
		level = domain.LevelInfo
	}

	s.log.WithFields(logrus.Fields{
		"product_id": productID,
	}).WithError(err).Info("cart mutation rejected")

	s.notifier.Notify(ctx, domain.NewNotification(level, msg, productID, err))
	return err
}

func stockError(requested int, stock domain.Stock) error {
	return fmt.Errorf("product[%d] requested %d, stock %d: %w", stock.ProductID, requested, stock.Amount, ErrStockUnavailable)
}
