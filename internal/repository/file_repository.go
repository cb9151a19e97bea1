package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/nikolayk812/cart-demo/internal/domain"
	"github.com/nikolayk812/cart-demo/internal/port"
)

type fileRepository struct {
	path string
}

// NewFile keeps the cart in dir, in a file named after the escaped key.
func NewFile(dir, key string) (port.CartRepository, error) {
	if key == "" {
		return nil, errEmptyKey
	}
	if dir == "" {
		return nil, fmt.Errorf("dir is empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	return &fileRepository{
		path: filepath.Join(dir, url.PathEscape(key)+".json"),
	}, nil
}

func (r *fileRepository) Load(_ context.Context) (domain.Cart, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Cart{Items: []domain.Product{}}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("os.ReadFile: %w", err)
	}

	cart, err := decodeCart(data)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("decodeCart: %w", err)
	}

	return cart, nil
}

// Save writes to a temp file in the same directory and renames it over the old snapshot.
func (r *fileRepository) Save(_ context.Context, cart domain.Cart) (saveErr error) {
	data, err := encodeCart(cart)
	if err != nil {
		return fmt.Errorf("encodeCart: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".cart-*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", err)
	}

	defer func() {
		if saveErr != nil {
			if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				saveErr = errors.Join(saveErr, fmt.Errorf("os.Remove: %w", rmErr))
			}
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return errors.Join(fmt.Errorf("tmp.Write: %w", err), tmp.Close())
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	return nil
}
