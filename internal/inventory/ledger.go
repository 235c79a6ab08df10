// Package inventory owns stock quantity changes and the low-stock signal.
//
// Stock never goes negative: every mutation runs as one atomic
// read-modify-write through the repository and is rejected whole when it
// would break that rule.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/period"
	"github.com/andresuchdata/retailpulse/internal/repository"
)

type Ledger struct {
	inventory        repository.InventoryRepository
	products         repository.ProductRepository
	defaultThreshold int
	now              func() time.Time
}

type Option func(*Ledger)

// WithClock overrides the source of the current date.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithDefaultThreshold sets the threshold used by Create when none is given.
// Non-positive values keep domain.DefaultLowStockThreshold.
func WithDefaultThreshold(threshold int) Option {
	return func(l *Ledger) {
		if threshold > 0 {
			l.defaultThreshold = threshold
		}
	}
}

func NewLedger(inv repository.InventoryRepository, products repository.ProductRepository, opts ...Option) *Ledger {
	l := &Ledger{
		inventory:        inv,
		products:         products,
		defaultThreshold: domain.DefaultLowStockThreshold,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) today() time.Time {
	return period.Truncate(l.now())
}

// Create opens the stock record of a product.
func (l *Ledger) Create(ctx context.Context, in domain.NewInventory) (*domain.Inventory, error) {
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, in.Quantity)
	}
	if err := checkBounds(in.Quantity, in.LowStockThreshold); err != nil {
		return nil, err
	}
	threshold := l.defaultThreshold
	if in.LowStockThreshold != nil {
		threshold = *in.LowStockThreshold
	}
	if threshold < 0 {
		return nil, domain.NewValidationError("low_stock_threshold", "must not be negative")
	}

	if _, err := l.products.Get(ctx, in.ProductID); err != nil {
		return nil, err
	}

	if _, err := l.inventory.GetByProduct(ctx, in.ProductID); err == nil {
		return nil, fmt.Errorf("%w: inventory for product %d", domain.ErrAlreadyExists, in.ProductID)
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	lastUpdated := in.LastUpdated
	if lastUpdated.IsZero() {
		lastUpdated = l.today()
	}

	rec := &domain.Inventory{
		ProductID:         in.ProductID,
		Quantity:          in.Quantity,
		LowStockThreshold: threshold,
		LastUpdated:       period.Truncate(lastUpdated),
	}
	if err := l.inventory.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Adjust changes the quantity by delta. An adjustment that would leave the
// quantity negative is rejected and leaves the record unchanged.
func (l *Ledger) Adjust(ctx context.Context, productID int64, delta int) (*domain.Inventory, error) {
	return l.inventory.Update(ctx, productID, func(inv *domain.Inventory) error {
		if delta > 0 && inv.Quantity > domain.MaxQuantity-delta {
			return domain.NewValidationError("adjustment", fmt.Sprintf("quantity would exceed %d", domain.MaxQuantity))
		}
		if inv.Quantity+delta < 0 {
			return &domain.InvalidAdjustmentError{ProductID: productID, Current: inv.Quantity, Delta: delta}
		}
		inv.Quantity += delta
		inv.LastUpdated = l.today()
		return nil
	})
}

// SetFields applies a partial update. An explicit LastUpdated wins; otherwise
// any change stamps the current date. An empty update returns the record as is.
func (l *Ledger) SetFields(ctx context.Context, productID int64, u domain.InventoryUpdate) (*domain.Inventory, error) {
	if u.Quantity != nil && *u.Quantity < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, *u.Quantity)
	}
	if u.LowStockThreshold != nil && *u.LowStockThreshold < 0 {
		return nil, domain.NewValidationError("low_stock_threshold", "must not be negative")
	}
	quantity := 0
	if u.Quantity != nil {
		quantity = *u.Quantity
	}
	if err := checkBounds(quantity, u.LowStockThreshold); err != nil {
		return nil, err
	}
	if u.IsEmpty() {
		return l.inventory.GetByProduct(ctx, productID)
	}

	return l.inventory.Update(ctx, productID, func(inv *domain.Inventory) error {
		if u.Quantity != nil {
			inv.Quantity = *u.Quantity
		}
		if u.LowStockThreshold != nil {
			inv.LowStockThreshold = *u.LowStockThreshold
		}
		if u.LastUpdated != nil {
			inv.LastUpdated = period.Truncate(*u.LastUpdated)
		} else {
			inv.LastUpdated = l.today()
		}
		return nil
	})
}

func checkBounds(quantity int, threshold *int) error {
	if quantity > domain.MaxQuantity {
		return domain.NewValidationError("quantity", fmt.Sprintf("must not exceed %d", domain.MaxQuantity))
	}
	if threshold != nil && *threshold > domain.MaxQuantity {
		return domain.NewValidationError("low_stock_threshold", fmt.Sprintf("must not exceed %d", domain.MaxQuantity))
	}
	return nil
}

// IsLowStock reports quantity <= threshold, where override replaces the
// record's own threshold when set.
func IsLowStock(inv domain.Inventory, override *int) bool {
	return inv.Quantity <= EffectiveThreshold(inv, override)
}

func EffectiveThreshold(inv domain.Inventory, override *int) int {
	if override != nil {
		return *override
	}
	return inv.LowStockThreshold
}
