package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/cart-demo/internal/domain"
	"github.com/nikolayk812/cart-demo/internal/port"
	"github.com/redis/go-redis/v9"
)

type redisRepository struct {
	client *redis.Client
	key    string
}

// NewRedis stores the cart as one JSON string value under key.
func NewRedis(client *redis.Client, key string) (port.CartRepository, error) {
	if key == "" {
		return nil, errEmptyKey
	}

	return &redisRepository{client: client, key: key}, nil
}

func (r *redisRepository) Load(ctx context.Context) (domain.Cart, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{Items: []domain.Product{}}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("client.Get: %w", err)
	}

	cart, err := decodeCart(data)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("decodeCart: %w", err)
	}

	return cart, nil
}

func (r *redisRepository) Save(ctx context.Context, cart domain.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return fmt.Errorf("encodeCart: %w", err)
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}
