package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikolayk812/cart-demo/internal/domain"
)

var errEmptyKey = errors.New("storage key is empty")

// encodeCart writes the snapshot as a bare JSON array of entries.
func encodeCart(cart domain.Cart) ([]byte, error) {
	items := cart.Items
	if items == nil {
		items = []domain.Product{}
	}

	return json.Marshal(items)
}

func decodeCart(data []byte) (domain.Cart, error) {
	var items []domain.Product
	if err := json.Unmarshal(data, &items); err != nil {
		return domain.Cart{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	if items == nil {
		items = []domain.Product{}
	}

	return domain.Cart{Items: items}, nil
}
