package inventory

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 20, 15, 4, 5, 0, time.UTC)

func intPtr(v int) *int { return &v }

type fixture struct {
	store  *memory.Store
	ledger *Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	return &fixture{
		store:  store,
		ledger: NewLedger(store.Inventory(), store.Products(), WithClock(func() time.Time { return fixedNow })),
	}
}

func (f *fixture) product(t *testing.T, name, category string) int64 {
	t.Helper()
	p := &domain.Product{Name: name, Category: category, Price: decimal.NewFromInt(10)}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p.ID
}

func (f *fixture) stock(t *testing.T, productID int64, qty, threshold int) {
	t.Helper()
	_, err := f.ledger.Create(context.Background(), domain.NewInventory{
		ProductID:         productID,
		Quantity:          qty,
		LowStockThreshold: intPtr(threshold),
	})
	require.NoError(t, err)
}

func TestAdjustBasicScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Laptop", "Electronics")
	f.stock(t, p, 10, 5)

	inv, err := f.ledger.Adjust(ctx, p, -3)
	require.NoError(t, err)
	assert.Equal(t, 7, inv.Quantity)
	assert.False(t, IsLowStock(*inv, nil))

	inv, err = f.ledger.Adjust(ctx, p, -5)
	require.NoError(t, err)
	assert.Equal(t, 2, inv.Quantity)
	assert.True(t, IsLowStock(*inv, nil))

	_, err = f.ledger.Adjust(ctx, p, -10)
	require.ErrorIs(t, err, domain.ErrInvalidAdjustment)
	var adjErr *domain.InvalidAdjustmentError
	require.ErrorAs(t, err, &adjErr)
	assert.Equal(t, 2, adjErr.Current)

	stored, err := f.store.Inventory().GetByProduct(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity)
}

func TestAdjustStampsDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Laptop", "Electronics")
	_, err := f.ledger.Create(ctx, domain.NewInventory{ProductID: p, Quantity: 1, LastUpdated: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	inv, err := f.ledger.Adjust(ctx, p, 4)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), inv.LastUpdated)
}

func TestAdjustMissingRecord(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Adjust(context.Background(), 99, 1)
	assert.True(t, domain.IsNotFound(err))
}

func TestAdjustNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Tablet", "Electronics")
	f.stock(t, p, 20, 5)

	r := rand.New(rand.NewSource(1))
	want := 20
	for i := 0; i < 200; i++ {
		delta := r.Intn(21) - 12
		inv, err := f.ledger.Adjust(ctx, p, delta)
		if want+delta < 0 {
			require.ErrorIs(t, err, domain.ErrInvalidAdjustment)
		} else {
			require.NoError(t, err)
			want += delta
			assert.Equal(t, want, inv.Quantity)
		}
		stored, err := f.store.Inventory().GetByProduct(ctx, p)
		require.NoError(t, err)
		require.Equal(t, want, stored.Quantity)
		require.GreaterOrEqual(t, stored.Quantity, 0)
	}
}

func TestAdjustRejectsQuantityOverflow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Cable", "Electronics")
	f.stock(t, p, 10, 5)

	_, err := f.ledger.Adjust(ctx, p, math.MaxInt)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrInvalidAdjustment)
	assert.True(t, domain.IsClientError(err))

	inv, err := f.ledger.Adjust(ctx, p, domain.MaxQuantity-10)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxQuantity, inv.Quantity)

	_, err = f.ledger.Adjust(ctx, p, 1)
	require.ErrorIs(t, err, domain.ErrValidation)

	stored, err := f.store.Inventory().GetByProduct(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxQuantity, stored.Quantity)
}

func TestQuantityAboveColumnRangeRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Cable", "Electronics")

	_, err := f.ledger.Create(ctx, domain.NewInventory{ProductID: p, Quantity: math.MaxInt})
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.ledger.Create(ctx, domain.NewInventory{ProductID: p, Quantity: 1, LowStockThreshold: intPtr(math.MaxInt)})
	require.ErrorIs(t, err, domain.ErrValidation)

	f.stock(t, p, 10, 5)
	_, err = f.ledger.SetFields(ctx, p, domain.InventoryUpdate{Quantity: intPtr(math.MaxInt)})
	require.ErrorIs(t, err, domain.ErrValidation)

	stored, err := f.store.Inventory().GetByProduct(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Quantity)
}

func TestConcurrentAdjustSerializes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Headphones", "Electronics")
	f.stock(t, p, 6, 2)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := f.ledger.Adjust(ctx, p, -5); err == nil {
				succeeded.Add(1)
			} else if assert.ErrorIs(t, err, domain.ErrInvalidAdjustment) {
				rejected.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(1), rejected.Load())
	stored, err := f.store.Inventory().GetByProduct(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Quantity)
}

func TestConcurrentAdjustManyProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ids := make([]int64, 4)
	for i := range ids {
		ids[i] = f.product(t, "p", "c")
		f.stock(t, ids[i], 50, 0)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, _ = f.ledger.Adjust(ctx, id, -1)
			}(id)
		}
	}
	wg.Wait()

	for _, id := range ids {
		stored, err := f.store.Inventory().GetByProduct(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.Quantity)
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Smartwatch", "Electronics")

	inv, err := f.ledger.Create(ctx, domain.NewInventory{ProductID: p, Quantity: 15})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLowStockThreshold, inv.LowStockThreshold)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), inv.LastUpdated)
	assert.NotZero(t, inv.ID)

	_, err = f.ledger.Create(ctx, domain.NewInventory{ProductID: p, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = f.ledger.Create(ctx, domain.NewInventory{ProductID: 404, Quantity: 1})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "product", nf.Entity)

	other := f.product(t, "Tablet", "Electronics")
	_, err = f.ledger.Create(ctx, domain.NewInventory{ProductID: other, Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.ledger.Create(ctx, domain.NewInventory{ProductID: other, LowStockThreshold: intPtr(-1)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateUsesConfiguredDefaultThreshold(t *testing.T) {
	store := memory.NewStore()
	ledger := NewLedger(store.Inventory(), store.Products(), WithDefaultThreshold(3))
	p := &domain.Product{Name: "Cable", Category: "Accessories"}
	require.NoError(t, store.Products().Create(context.Background(), p))

	inv, err := ledger.Create(context.Background(), domain.NewInventory{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, inv.LowStockThreshold)
}

func TestSetFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Laptop", "Electronics")
	_, err := f.ledger.Create(ctx, domain.NewInventory{
		ProductID:   p,
		Quantity:    8,
		LastUpdated: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	inv, err := f.ledger.SetFields(ctx, p, domain.InventoryUpdate{Quantity: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, inv.Quantity)
	assert.Equal(t, 10, inv.LowStockThreshold)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), inv.LastUpdated)

	explicit := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	inv, err = f.ledger.SetFields(ctx, p, domain.InventoryUpdate{LowStockThreshold: intPtr(2), LastUpdated: &explicit})
	require.NoError(t, err)
	assert.Equal(t, 2, inv.LowStockThreshold)
	assert.Equal(t, explicit, inv.LastUpdated)

	_, err = f.ledger.SetFields(ctx, p, domain.InventoryUpdate{Quantity: intPtr(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	same, err := f.ledger.SetFields(ctx, p, domain.InventoryUpdate{})
	require.NoError(t, err)
	assert.Equal(t, inv, same)

	_, err = f.ledger.SetFields(ctx, 404, domain.InventoryUpdate{Quantity: intPtr(1)})
	assert.True(t, domain.IsNotFound(err))
}

func TestIsLowStock(t *testing.T) {
	inv := domain.Inventory{Quantity: 5, LowStockThreshold: 5}
	assert.True(t, IsLowStock(inv, nil), "quantity equal to threshold is low")
	assert.False(t, IsLowStock(inv, intPtr(4)))
	assert.True(t, IsLowStock(domain.Inventory{Quantity: 0}, nil))
}
