package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bousala/bousala/internal/ledger"
	"github.com/bousala/bousala/internal/masterdata/clients"
)

type memoryState struct {
	products     map[uuid.UUID]*ProductInfo
	clientDebt   map[uuid.UUID]int64
	clientByName map[string]uuid.UUID
	accounts     map[uuid.UUID]int64
	invoices     map[uuid.UUID]Invoice
}

func (s *memoryState) clone() *memoryState {
	out := &memoryState{
		products:     make(map[uuid.UUID]*ProductInfo, len(s.products)),
		clientDebt:   make(map[uuid.UUID]int64, len(s.clientDebt)),
		clientByName: make(map[string]uuid.UUID, len(s.clientByName)),
		accounts:     make(map[uuid.UUID]int64, len(s.accounts)),
		invoices:     make(map[uuid.UUID]Invoice, len(s.invoices)),
	}
	for id, p := range s.products {
		cp := *p
		out.products[id] = &cp
	}
	for id, v := range s.clientDebt {
		out.clientDebt[id] = v
	}
	for k, v := range s.clientByName {
		out.clientByName[k] = v
	}
	for id, v := range s.accounts {
		out.accounts[id] = v
	}
	for id, v := range s.invoices {
		out.invoices[id] = v
	}
	return out
}

type memoryRepo struct {
	state *memoryState
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{state: &memoryState{
		products:     make(map[uuid.UUID]*ProductInfo),
		clientDebt:   make(map[uuid.UUID]int64),
		clientByName: make(map[string]uuid.UUID),
		accounts:     make(map[uuid.UUID]int64),
		invoices:     make(map[uuid.UUID]Invoice),
	}}
}

type memoryTx struct {
	state *memoryState
}

// WithTx applies fn against a snapshot and only publishes it on success, so
// a failing operation leaves no partial writes, matching the transactional
// repository.
func (r *memoryRepo) WithTx(ctx context.Context, ownerID uuid.UUID, fn func(context.Context, TxRepository) error) error {
	snapshot := r.state.clone()
	if err := fn(ctx, &memoryTx{state: snapshot}); err != nil {
		return err
	}
	r.state = snapshot
	return nil
}

func (r *memoryRepo) GetInvoice(ctx context.Context, ownerID, id uuid.UUID) (Invoice, error) {
	inv, ok := r.state.invoices[id]
	if !ok {
		return Invoice{}, ErrInvoiceNotFound
	}
	return inv, nil
}

func (r *memoryRepo) ListInvoices(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range r.state.invoices {
		out = append(out, inv)
	}
	return out, nil
}

func (t *memoryTx) GetProduct(ctx context.Context, id uuid.UUID) (ProductInfo, error) {
	p, ok := t.state.products[id]
	if !ok {
		return ProductInfo{}, ErrInvoiceNotFound
	}
	return *p, nil
}

func (t *memoryTx) AdjustStock(ctx context.Context, productID uuid.UUID, delta int64) error {
	p, ok := t.state.products[productID]
	if !ok || p.Stock+delta < 0 {
		return ErrInsufficientStock
	}
	p.Stock += delta
	return nil
}

func (t *memoryTx) UpsertClientByName(ctx context.Context, name string, at time.Time) (uuid.UUID, error) {
	key := clients.Normalize(name)
	if id, ok := t.state.clientByName[key]; ok {
		return id, nil
	}
	id := uuid.New()
	t.state.clientByName[key] = id
	t.state.clientDebt[id] = 0
	return id, nil
}

func (t *memoryTx) ApplyDeltas(ctx context.Context, deltas []ledger.Delta) error {
	for _, d := range deltas {
		switch d.Kind {
		case ledger.KindCashAccount:
			t.state.accounts[d.EntityID] += d.Amount
		case ledger.KindClientDebt:
			next := t.state.clientDebt[d.EntityID] + d.Amount
			if d.FloorZero && next < 0 {
				next = 0
			}
			t.state.clientDebt[d.EntityID] = next
		default:
			return ledger.ErrUnknownEntity
		}
	}
	return nil
}

func (t *memoryTx) InsertInvoice(ctx context.Context, inv Invoice) error {
	t.state.invoices[inv.ID] = inv
	return nil
}

func (t *memoryTx) GetInvoiceForUpdate(ctx context.Context, id uuid.UUID) (Invoice, error) {
	inv, ok := t.state.invoices[id]
	if !ok {
		return Invoice{}, ErrInvoiceNotFound
	}
	return inv, nil
}

func (t *memoryTx) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	delete(t.state.invoices, id)
	return nil
}

func seedSale(repo *memoryRepo) (ownerID, productID, accountID uuid.UUID) {
	ownerID = uuid.New()
	productID = uuid.New()
	accountID = uuid.New()
	repo.state.products[productID] = &ProductInfo{ID: productID, Name: "قميص قطن", Stock: 10}
	repo.state.accounts[accountID] = 1000
	return
}

func TestCreateSaleAppliesAllEffects(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, productID, accountID := seedSale(repo)
	svc := NewService(repo, nil)

	inv, err := svc.CreateSale(context.Background(), ownerID, CreateSaleRequest{
		CustomerName: "Ahmed",
		AccountID:    accountID,
		PaidAmount:   200,
		Items:        []SaleItemRequest{{ProductID: productID, Quantity: 3, PriceAtSale: 100}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 300, inv.Total)
	require.EqualValues(t, 100, inv.RemainingAmount)
	require.Equal(t, StatusPartial, inv.Status)
	require.NotNil(t, inv.ClientID)
	require.Equal(t, "قميص قطن", inv.Items[0].ProductName)

	require.EqualValues(t, 7, repo.state.products[productID].Stock)
	require.EqualValues(t, 1200, repo.state.accounts[accountID])
	require.EqualValues(t, 100, repo.state.clientDebt[*inv.ClientID])
}

func TestCreateSaleRejectsInsufficientStockWithoutMutation(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, productID, accountID := seedSale(repo)
	svc := NewService(repo, nil)

	_, err := svc.CreateSale(context.Background(), ownerID, CreateSaleRequest{
		AccountID:  accountID,
		PaidAmount: 0,
		Items:      []SaleItemRequest{{ProductID: productID, Quantity: 11, PriceAtSale: 100}},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// nothing moved
	require.EqualValues(t, 10, repo.state.products[productID].Stock)
	require.EqualValues(t, 1000, repo.state.accounts[accountID])
	require.Empty(t, repo.state.invoices)
}

func TestCreateThenDeleteSaleRoundTrips(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, productID, accountID := seedSale(repo)
	svc := NewService(repo, nil)

	inv, err := svc.CreateSale(context.Background(), ownerID, CreateSaleRequest{
		CustomerName: "Ahmed",
		AccountID:    accountID,
		PaidAmount:   200,
		Items:        []SaleItemRequest{{ProductID: productID, Quantity: 3, PriceAtSale: 100}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(context.Background(), ownerID, inv.ID))

	require.EqualValues(t, 10, repo.state.products[productID].Stock)
	require.EqualValues(t, 1000, repo.state.accounts[accountID])
	require.EqualValues(t, 0, repo.state.clientDebt[*inv.ClientID])
	require.Empty(t, repo.state.invoices)
}

func TestDeleteSaleFloorsClientDebtAtZero(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, productID, accountID := seedSale(repo)
	svc := NewService(repo, nil)

	inv, err := svc.CreateSale(context.Background(), ownerID, CreateSaleRequest{
		CustomerName: "Ahmed",
		AccountID:    accountID,
		PaidAmount:   100,
		Items:        []SaleItemRequest{{ProductID: productID, Quantity: 3, PriceAtSale: 100}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 200, repo.state.clientDebt[*inv.ClientID])

	// a receipt recorded outside the invoice drove the debt below the
	// reversal amount; deletion must stop at zero, not go negative
	repo.state.clientDebt[*inv.ClientID] = 50
	require.NoError(t, svc.DeleteSale(context.Background(), ownerID, inv.ID))
	require.EqualValues(t, 0, repo.state.clientDebt[*inv.ClientID])
}

func TestCreateSaleReusesClientByFoldedName(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, productID, accountID := seedSale(repo)
	svc := NewService(repo, nil)

	first, err := svc.CreateSale(context.Background(), ownerID, CreateSaleRequest{
		CustomerName: "Ahmed Ali",
		AccountID:    accountID,
		Items:        []SaleItemRequest{{ProductID: productID, Quantity: 1, PriceAtSale: 100}},
	})
	require.NoError(t, err)

	second, err := svc.CreateSale(context.Background(), ownerID, CreateSaleRequest{
		CustomerName: "  ahmed ALI ",
		AccountID:    accountID,
		Items:        []SaleItemRequest{{ProductID: productID, Quantity: 1, PriceAtSale: 100}},
	})
	require.NoError(t, err)
	require.Equal(t, *first.ClientID, *second.ClientID)
	require.EqualValues(t, 200, repo.state.clientDebt[*first.ClientID])
}

func TestCreateSaleRequiresItems(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, _, accountID := seedSale(repo)
	svc := NewService(repo, nil)

	_, err := svc.CreateSale(context.Background(), ownerID, CreateSaleRequest{AccountID: accountID})
	require.ErrorIs(t, err, ErrEmptyCart)
}
