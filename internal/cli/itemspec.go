package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fjod/papapizza/internal/domain"
)

type itemSpec struct {
	ID       domain.ProductID
	Quantity int
}

// parseItemSpec reads "id" or "id:qty". The quantity defaults to 1.
func parseItemSpec(s string) (itemSpec, error) {
	id, qty, hasQty := strings.Cut(strings.TrimSpace(s), ":")
	id = strings.TrimSpace(id)
	if id == "" {
		return itemSpec{}, fmt.Errorf("item %q: missing product id", s)
	}
	spec := itemSpec{ID: domain.ProductID(id), Quantity: 1}
	if !hasQty {
		return spec, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(qty))
	if err != nil || n < 1 {
		return itemSpec{}, fmt.Errorf("item %q: quantity must be a positive integer", s)
	}
	spec.Quantity = n
	return spec, nil
}
