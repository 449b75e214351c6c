package manufacturing

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
}

func (s *memoryState) clone() *memoryState {
	out := &memoryState{
		products:     make(map[uuid.UUID]*ProductState, len(s.products)),
		supplierDebt: make(map[uuid.UUID]int64, len(s.supplierDebt)),
	}
	for id, p := range s.products {
		cp := *p
		out.products[id] = &cp
	}
	for id, v := range s.supplierDebt {
		out.supplierDebt[id] = v
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
	}}
}

type memoryTx struct {
	state *memoryState
}

func (r *memoryRepo) WithTx(ctx context.Context, ownerID uuid.UUID, fn func(context.Context, TxRepository) error) error {
	snapshot := r.state.clone()
	if err := fn(ctx, &memoryTx{state: snapshot}); err != nil {
		return err
	}
	r.state = snapshot
	return nil
}

func (t *memoryTx) GetProduct(ctx context.Context, id uuid.UUID) (ProductState, error) {
	p, ok := t.state.products[id]
	if !ok {
		return ProductState{}, ErrProductNotFound
	}
	return *p, nil
}

func (t *memoryTx) AdjustStock(ctx context.Context, productID uuid.UUID, delta int64) error {
	p, ok := t.state.products[productID]
	if !ok || p.Stock+delta < 0 {
		return ErrInsufficientRaw
	}
	p.Stock += delta
	return nil
}

func (t *memoryTx) SetStockAndCost(ctx context.Context, productID uuid.UUID, stock, cost int64) error {
	p, ok := t.state.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock = stock
	p.Cost = cost
	return nil
}

func (t *memoryTx) ApplyDeltas(ctx context.Context, deltas []ledger.Delta) error {
	for _, d := range deltas {
		if d.Kind != ledger.KindSupplierDebt {
			return ledger.ErrUnknownEntity
		}
		t.state.supplierDebt[d.EntityID] += d.Amount
	}
	return nil
}

func seedRun(repo *memoryRepo, rawStock, rawCost int64) (ownerID, rawID, targetID uuid.UUID) {
	ownerID = uuid.New()
	rawID = uuid.New()
	targetID = uuid.New()
	repo.state.products[rawID] = &ProductState{Stock: rawStock, Cost: rawCost}
	repo.state.products[targetID] = &ProductState{}
	return
}

func TestManufactureAppliesAllEffects(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, rawID, targetID := seedRun(repo, 20, 10)
	supplierID := uuid.New()
	svc := NewService(repo, nil)

	res, err := svc.Manufacture(context.Background(), ownerID, ManufactureRequest{
		RawProductID:    rawID,
		TargetProductID: targetID,
		Quantity:        5,
		RawPerUnit:      2,
		LaborTotal:      100,
		SupplierID:      &supplierID,
	})
	require.NoError(t, err)

	// 10 raw units at cost 10 plus 100 labor over 5 produced units
	require.EqualValues(t, 10, res.RawConsumed)
	require.EqualValues(t, 40, res.BatchUnitCost)
	require.EqualValues(t, 40, res.NewTargetCost)
	require.EqualValues(t, 5, res.NewTargetStock)

	require.EqualValues(t, 10, repo.state.products[rawID].Stock)
	require.EqualValues(t, 5, repo.state.products[targetID].Stock)
	require.EqualValues(t, 40, repo.state.products[targetID].Cost)
	require.EqualValues(t, 100, repo.state.supplierDebt[supplierID])
}

func TestManufactureWithoutSupplierBooksNoDebt(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, rawID, targetID := seedRun(repo, 20, 10)
	svc := NewService(repo, nil)

	_, err := svc.Manufacture(context.Background(), ownerID, ManufactureRequest{
		RawProductID:    rawID,
		TargetProductID: targetID,
		Quantity:        5,
		RawPerUnit:      2,
		LaborTotal:      100,
	})
	require.NoError(t, err)
	require.Empty(t, repo.state.supplierDebt)
}

func TestManufactureRefusedOnInsufficientRawWithoutMutation(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, rawID, targetID := seedRun(repo, 9, 10)
	svc := NewService(repo, nil)

	_, err := svc.Manufacture(context.Background(), ownerID, ManufactureRequest{
		RawProductID:    rawID,
		TargetProductID: targetID,
		Quantity:        5,
		RawPerUnit:      2,
	})
	require.ErrorIs(t, err, ErrInsufficientRaw)

	require.EqualValues(t, 9, repo.state.products[rawID].Stock)
	require.EqualValues(t, 0, repo.state.products[targetID].Stock)
}

func TestManufactureRejectsSameProduct(t *testing.T) {
	repo := newMemoryRepo()
	ownerID, rawID, _ := seedRun(repo, 20, 10)
	svc := NewService(repo, nil)

	_, err := svc.Manufacture(context.Background(), ownerID, ManufactureRequest{
		RawProductID:    rawID,
		TargetProductID: rawID,
		Quantity:        1,
		RawPerUnit:      1,
	})
	require.ErrorIs(t, err, ErrSameProduct)
}

// Two sequential runs into the same target must land on the same cost as a
// single run over the combined raw and labor spend.
func TestManufactureWeightedAverageIsAssociative(t *testing.T) {
	run := func(svc *Service, ownerID uuid.UUID, req ManufactureRequest) Result {
		t.Helper()
		res, err := svc.Manufacture(context.Background(), ownerID, req)
		require.NoError(t, err)
		return res
	}

	// sequential: two batches of 4 at labor 20 then 60
	seq := newMemoryRepo()
	ownerID, rawID, targetID := seedRun(seq, 100, 10)
	svcSeq := NewService(seq, nil)
	run(svcSeq, ownerID, ManufactureRequest{RawProductID: rawID, TargetProductID: targetID, Quantity: 4, RawPerUnit: 1, LaborTotal: 20})
	run(svcSeq, ownerID, ManufactureRequest{RawProductID: rawID, TargetProductID: targetID, Quantity: 4, RawPerUnit: 1, LaborTotal: 60})

	// combined: one batch of 8 at labor 80
	one := newMemoryRepo()
	ownerID2, rawID2, targetID2 := seedRun(one, 100, 10)
	svcOne := NewService(one, nil)
	run(svcOne, ownerID2, ManufactureRequest{RawProductID: rawID2, TargetProductID: targetID2, Quantity: 8, RawPerUnit: 1, LaborTotal: 80})

	require.Equal(t, one.state.products[targetID2].Cost, seq.state.products[targetID].Cost)
	require.EqualValues(t, 20, seq.state.products[targetID].Cost)
	require.EqualValues(t, 8, seq.state.products[targetID].Stock)
}
