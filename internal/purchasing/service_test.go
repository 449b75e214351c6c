package purchasing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bousala/bousala/internal/ledger"
)

type memoryState struct {
	products     map[uuid.UUID]*ProductState
	supplierDebt map[uuid.UUID]int64
	accounts     map[uuid.UUID]int64
	purchases    map[uuid.UUID]Purchase
}

func (s *memoryState) clone() *memoryState {
	out := &memoryState{
		products:     make(map[uuid.UUID]*ProductState, len(s.products)),
		supplierDebt: make(map[uuid.UUID]int64, len(s.supplierDebt)),
		accounts:     make(map[uuid.UUID]int64, len(s.accounts)),
		purchases:    make(map[uuid.UUID]Purchase, len(s.purchases)),
	}
	for id, p := range s.products {
		cp := *p
		out.products[id] = &cp
	}
	for id, v := range s.supplierDebt {
		out.supplierDebt[id] = v
	}
	for id, v := range s.accounts {
		out.accounts[id] = v
	}
	for id, v := range s.purchases {
		out.purchases[id] = v
	}
	return out
}

type memoryRepo struct {
	state *memoryState
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{state: &memoryState{
		products:     make(map[uuid.UUID]*ProductState),
		supplierDebt: make(map[uuid.UUID]int64),
		accounts:     make(map[uuid.UUID]int64),
		purchases:    make(map[uuid.UUID]Purchase),
	}}
}

type memoryTx struct {
	state *memoryState
}

// WithTx publishes the snapshot only when fn succeeds, so a refused
// operation leaves every balance untouched.
func (r *memoryRepo) WithTx(ctx context.Context, ownerID uuid.UUID, fn func(context.Context, TxRepository) error) error {
	snapshot := r.state.clone()
	if err := fn(ctx, &memoryTx{state: snapshot}); err != nil {
		return err
	}
	r.state = snapshot
	return nil
}

func (r *memoryRepo) GetPurchase(ctx context.Context, ownerID, id uuid.UUID) (Purchase, error) {
	p, ok := r.state.purchases[id]
	if !ok {
		return Purchase{}, ErrPurchaseNotFound
	}
	return p, nil
}

func (r *memoryRepo) ListPurchases(ctx context.Context, ownerID uuid.UUID, limit int) ([]Purchase, error) {
	var out []Purchase
	for _, p := range r.state.purchases {
		out = append(out, p)
	}
	return out, nil
}

func (t *memoryTx) GetProduct(ctx context.Context, id uuid.UUID) (ProductState, error) {
	p, ok := t.state.products[id]
	if !ok {
		return ProductState{}, ledger.ErrUnknownEntity
	}
	return *p, nil
}

func (t *memoryTx) AdjustStock(ctx context.Context, productID uuid.UUID, delta int64) error {
	p, ok := t.state.products[productID]
	if !ok || p.Stock+delta < 0 {
		return ErrAlreadySold
	}
	p.Stock += delta
	return nil
}

func (t *memoryTx) SetProductCost(ctx context.Context, productID uuid.UUID, cost int64) error {
	p, ok := t.state.products[productID]
	if !ok {
		return ledger.ErrUnknownEntity
	}
	p.Cost = cost
	return nil
}

func (t *memoryTx) ApplyDeltas(ctx context.Context, deltas []ledger.Delta) error {
	for _, d := range deltas {
		switch d.Kind {
		case ledger.KindCashAccount:
			t.state.accounts[d.EntityID] += d.Amount
		case ledger.KindSupplierDebt:
			t.state.supplierDebt[d.EntityID] += d.Amount
		default:
			return ledger.ErrUnknownEntity
		}
	}
	return nil
}

func (t *memoryTx) InsertPurchase(ctx context.Context, p Purchase) error {
	t.state.purchases[p.ID] = p
	return nil
}

func (t *memoryTx) UpdatePurchase(ctx context.Context, p Purchase) error {
	if _, ok := t.state.purchases[p.ID]; !ok {
		return ErrPurchaseNotFound
	}
	t.state.purchases[p.ID] = p
	return nil
}

func (t *memoryTx) GetPurchaseForUpdate(ctx context.Context, id uuid.UUID) (Purchase, error) {
	p, ok := t.state.purchases[id]
	if !ok {
		return Purchase{}, ErrPurchaseNotFound
	}
	return p, nil
}

func (t *memoryTx) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	delete(t.state.purchases, id)
	return nil
}

func seedPurchase(repo *memoryRepo) (ownerID, productID, supplierID, accountID uuid.UUID) {
	ownerID = uuid.New()
	productID = uuid.New()
	supplierID = uuid.New()
	accountID = uuid.New()
	repo.state.products[productID] = &ProductState{Stock: 5, Cost: 80}
	repo.state.accounts[accountID] = 1000
	return
}

func TestCreatePurchaseAppliesAllEffects(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, productID, supplierID, accountID := seedPurchase(repo)
	svc := NewService(repo, nil)

	p, err := svc.CreatePurchase(context.Background(), ownerID, CreatePurchaseRequest{
		SupplierID: supplierID,
		AccountID:  accountID,
		PaidAmount: 300,
		Items:      []PurchaseItemRequest{{ProductID: productID, Quantity: 10, CostPrice: 50}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 500, p.TotalCost)

	require.EqualValues(t, 15, repo.state.products[productID].Stock)
	require.EqualValues(t, 50, repo.state.products[productID].Cost, "receipt overwrites the unit cost")
	require.EqualValues(t, 200, repo.state.supplierDebt[supplierID])
	require.EqualValues(t, 700, repo.state.accounts[accountID])
}

func TestDeletePurchaseRestoresBalancesButNotCost(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, productID, supplierID, accountID := seedPurchase(repo)
	svc := NewService(repo, nil)

	p, err := svc.CreatePurchase(context.Background(), ownerID, CreatePurchaseRequest{
		SupplierID: supplierID,
		AccountID:  accountID,
		PaidAmount: 300,
		Items:      []PurchaseItemRequest{{ProductID: productID, Quantity: 10, CostPrice: 50}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePurchase(context.Background(), ownerID, p.ID))

	require.EqualValues(t, 5, repo.state.products[productID].Stock)
	require.EqualValues(t, 0, repo.state.supplierDebt[supplierID])
	require.EqualValues(t, 1000, repo.state.accounts[accountID])
	require.Empty(t, repo.state.purchases)
	// the cost overwrite is deliberate history loss: deleting the
	// receipt does not bring back the pre-purchase cost of 80
	require.EqualValues(t, 50, repo.state.products[productID].Cost)
}

func TestDeletePurchaseRefusedWhenUnitsAlreadySold(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, productID, supplierID, accountID := seedPurchase(repo)
	svc := NewService(repo, nil)

	p, err := svc.CreatePurchase(context.Background(), ownerID, CreatePurchaseRequest{
		SupplierID: supplierID,
		AccountID:  accountID,
		PaidAmount: 0,
		Items:      []PurchaseItemRequest{{ProductID: productID, Quantity: 10, CostPrice: 50}},
	})
	require.NoError(t, err)

	// sales ate into the received units: 15 on hand, 8 sold
	repo.state.products[productID].Stock = 7

	err = svc.DeletePurchase(context.Background(), ownerID, p.ID)
	require.ErrorIs(t, err, ErrAlreadySold)

	// refusal leaves everything untouched
	require.EqualValues(t, 7, repo.state.products[productID].Stock)
	require.EqualValues(t, 500, repo.state.supplierDebt[supplierID])
	require.Len(t, repo.state.purchases, 1)
}

func TestEditPurchaseRevertsThenReapplies(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, productID, supplierID, accountID := seedPurchase(repo)
	svc := NewService(repo, nil)

	p, err := svc.CreatePurchase(context.Background(), ownerID, CreatePurchaseRequest{
		SupplierID: supplierID,
		AccountID:  accountID,
		PaidAmount: 300,
		Items:      []PurchaseItemRequest{{ProductID: productID, Quantity: 10, CostPrice: 50}},
	})
	require.NoError(t, err)

	updated, err := svc.EditPurchase(context.Background(), ownerID, p.ID, CreatePurchaseRequest{
		SupplierID: supplierID,
		AccountID:  accountID,
		PaidAmount: 400,
		Items:      []PurchaseItemRequest{{ProductID: productID, Quantity: 4, CostPrice: 60}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 240, updated.TotalCost)

	// identical end state to delete followed by a fresh create
	require.EqualValues(t, 9, repo.state.products[productID].Stock)
	require.EqualValues(t, 60, repo.state.products[productID].Cost)
	require.EqualValues(t, -160, repo.state.supplierDebt[supplierID], "overpayment is kept as a negative balance")
	require.EqualValues(t, 600, repo.state.accounts[accountID])
}

func TestCreatePurchaseRequiresItems(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, _, supplierID, accountID := seedPurchase(repo)
	svc := NewService(repo, nil)

	_, err := svc.CreatePurchase(context.Background(), ownerID, CreatePurchaseRequest{
		SupplierID: supplierID,
		AccountID:  accountID,
	})
	require.ErrorIs(t, err, ErrNoItems)
}
