package cashflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bousala/bousala/internal/ledger"
)

type memoryState struct {
	accounts     map[uuid.UUID]int64
	clientDebt   map[uuid.UUID]int64
	supplierDebt map[uuid.UUID]int64
	employeeLoan map[uuid.UUID]int64
	movements    map[uuid.UUID]Movement
	expenses     map[uuid.UUID]Expense
	categories   map[uuid.UUID]ExpenseCategory
}

func newMemoryState() *memoryState {
	return &memoryState{
		accounts:     make(map[uuid.UUID]int64),
		clientDebt:   make(map[uuid.UUID]int64),
		supplierDebt: make(map[uuid.UUID]int64),
		employeeLoan: make(map[uuid.UUID]int64),
		movements:    make(map[uuid.UUID]Movement),
		expenses:     make(map[uuid.UUID]Expense),
		categories:   make(map[uuid.UUID]ExpenseCategory),
	}
}

func (s *memoryState) clone() *memoryState {
	out := newMemoryState()
	for id, v := range s.accounts {
		out.accounts[id] = v
	}
	for id, v := range s.clientDebt {
		out.clientDebt[id] = v
	}
	for id, v := range s.supplierDebt {
		out.supplierDebt[id] = v
	}
	for id, v := range s.employeeLoan {
		out.employeeLoan[id] = v
	}
	for id, v := range s.movements {
		out.movements[id] = v
	}
	for id, v := range s.expenses {
		out.expenses[id] = v
	}
	for id, v := range s.categories {
		out.categories[id] = v
	}
	return out
}

type memoryRepo struct {
	state *memoryState
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{state: newMemoryState()}
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

func (r *memoryRepo) GetMovement(ctx context.Context, ownerID, id uuid.UUID) (Movement, error) {
	m, ok := r.state.movements[id]
	if !ok {
		return Movement{}, ErrMovementNotFound
	}
	return m, nil
}

func (r *memoryRepo) ListMovements(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]Movement, error) {
	var out []Movement
	for _, m := range r.state.movements {
		out = append(out, m)
	}
	return out, nil
}

func (r *memoryRepo) ListExpenses(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]Expense, error) {
	var out []Expense
	for _, e := range r.state.expenses {
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryRepo) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]ExpenseCategory, error) {
	var out []ExpenseCategory
	for _, c := range r.state.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRepo) CreateCategory(ctx context.Context, c ExpenseCategory) error {
	r.state.categories[c.ID] = c
	return nil
}

func (r *memoryRepo) DeleteCategory(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, ok := r.state.categories[id]; !ok {
		return ErrCategoryNotFound
	}
	delete(r.state.categories, id)
	return nil
}

func (t *memoryTx) ApplyDeltas(ctx context.Context, deltas []ledger.Delta) error {
	for _, d := range deltas {
		switch d.Kind {
		case ledger.KindCashAccount:
			t.state.accounts[d.EntityID] += d.Amount
		case ledger.KindClientDebt:
			t.state.clientDebt[d.EntityID] += d.Amount
		case ledger.KindSupplierDebt:
			t.state.supplierDebt[d.EntityID] += d.Amount
		case ledger.KindEmployeeLoan:
			t.state.employeeLoan[d.EntityID] += d.Amount
		default:
			return ledger.ErrUnknownEntity
		}
	}
	return nil
}

func (t *memoryTx) InsertMovement(ctx context.Context, m Movement) error {
	t.state.movements[m.ID] = m
	return nil
}

func (t *memoryTx) UpdateMovement(ctx context.Context, m Movement) error {
	if _, ok := t.state.movements[m.ID]; !ok {
		return ErrMovementNotFound
	}
	t.state.movements[m.ID] = m
	return nil
}

func (t *memoryTx) GetMovementForUpdate(ctx context.Context, id uuid.UUID) (Movement, error) {
	m, ok := t.state.movements[id]
	if !ok {
		return Movement{}, ErrMovementNotFound
	}
	return m, nil
}

func (t *memoryTx) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	delete(t.state.movements, id)
	return nil
}

func (t *memoryTx) InsertExpense(ctx context.Context, e Expense) error {
	t.state.expenses[e.ID] = e
	return nil
}

func (t *memoryTx) GetExpenseForUpdate(ctx context.Context, id uuid.UUID) (Expense, error) {
	e, ok := t.state.expenses[id]
	if !ok {
		return Expense{}, ErrExpenseNotFound
	}
	return e, nil
}

func (t *memoryTx) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	delete(t.state.expenses, id)
	return nil
}

func TestCreateMovementClientReceipt(t *testing.T) {
	repo := newMemoryRepo()
	ownerID := uuid.New()
	clientID := uuid.New()
	accountID := uuid.New()
	repo.state.accounts[accountID] = 500
	repo.state.clientDebt[clientID] = 300
	svc := NewService(repo, nil)

	_, err := svc.CreateMovement(context.Background(), ownerID, CreateMovementRequest{
		Type:      ledger.DirectionIn,
		Amount:    200,
		Entity:    ledger.EntityClient,
		EntityID:  &clientID,
		AccountID: accountID,
	})
	require.NoError(t, err)

	require.EqualValues(t, 700, repo.state.accounts[accountID])
	require.EqualValues(t, 100, repo.state.clientDebt[clientID], "receipt reduces what the client owes")
}

func TestCreateMovementEmployeeAdvance(t *testing.T) {
	repo := newMemoryRepo()
	ownerID := uuid.New()
	employeeID := uuid.New()
	accountID := uuid.New()
	repo.state.accounts[accountID] = 500
	svc := NewService(repo, nil)

	_, err := svc.CreateMovement(context.Background(), ownerID, CreateMovementRequest{
		Type:      ledger.DirectionOut,
		Amount:    150,
		Entity:    ledger.EntityEmployee,
		EntityID:  &employeeID,
		AccountID: accountID,
	})
	require.NoError(t, err)

	require.EqualValues(t, 350, repo.state.accounts[accountID])
	require.EqualValues(t, 150, repo.state.employeeLoan[employeeID])
}

func TestCreateMovementRequiresEntitySelection(t *testing.T) {
	repo := newMemoryRepo()
	ownerID := uuid.New()
	accountID := uuid.New()
	repo.state.accounts[accountID] = 500
	svc := NewService(repo, nil)

	_, err := svc.CreateMovement(context.Background(), ownerID, CreateMovementRequest{
		Type:      ledger.DirectionOut,
		Amount:    100,
		Entity:    ledger.EntitySupplier,
		AccountID: accountID,
	})
	require.ErrorIs(t, err, ledger.ErrEntityRequired)

	// rejected before any write
	require.EqualValues(t, 500, repo.state.accounts[accountID])
	require.Empty(t, repo.state.movements)
}

func TestDeleteMovementReversesEffects(t *testing.T) {
	repo := newMemoryRepo()
	ownerID := uuid.New()
	supplierID := uuid.New()
	accountID := uuid.New()
	repo.state.accounts[accountID] = 500
	repo.state.supplierDebt[supplierID] = 400
	svc := NewService(repo, nil)

	m, err := svc.CreateMovement(context.Background(), ownerID, CreateMovementRequest{
		Type:      ledger.DirectionOut,
		Amount:    250,
		Entity:    ledger.EntitySupplier,
		EntityID:  &supplierID,
		AccountID: accountID,
	})
	require.NoError(t, err)
	require.EqualValues(t, 250, repo.state.accounts[accountID])
	require.EqualValues(t, 150, repo.state.supplierDebt[supplierID])

	require.NoError(t, svc.DeleteMovement(context.Background(), ownerID, m.ID))
	require.EqualValues(t, 500, repo.state.accounts[accountID])
	require.EqualValues(t, 400, repo.state.supplierDebt[supplierID])
	require.Empty(t, repo.state.movements)
}

// Editing a movement must land on the same balances as deleting it and
// creating a fresh movement with the new values.
func TestEditMovementEquivalentToDeleteThenCreate(t *testing.T) {
	ownerID := uuid.New()
	clientID := uuid.New()
	supplierID := uuid.New()
	accountID := uuid.New()
	seed := func() *memoryRepo {
		repo := newMemoryRepo()
		repo.state.accounts[accountID] = 1000
		repo.state.clientDebt[clientID] = 500
		repo.state.supplierDebt[supplierID] = 500
		return repo
	}
	original := CreateMovementRequest{
		Type:      ledger.DirectionIn,
		Amount:    200,
		Entity:    ledger.EntityClient,
		EntityID:  &clientID,
		AccountID: accountID,
	}
	replacement := CreateMovementRequest{
		Type:      ledger.DirectionOut,
		Amount:    300,
		Entity:    ledger.EntitySupplier,
		EntityID:  &supplierID,
		AccountID: accountID,
	}

	edited := seed()
	svcEdited := NewService(edited, nil)
	m, err := svcEdited.CreateMovement(context.Background(), ownerID, original)
	require.NoError(t, err)
	_, err = svcEdited.EditMovement(context.Background(), ownerID, m.ID, replacement)
	require.NoError(t, err)

	recreated := seed()
	svcRecreated := NewService(recreated, nil)
	m2, err := svcRecreated.CreateMovement(context.Background(), ownerID, original)
	require.NoError(t, err)
	require.NoError(t, svcRecreated.DeleteMovement(context.Background(), ownerID, m2.ID))
	_, err = svcRecreated.CreateMovement(context.Background(), ownerID, replacement)
	require.NoError(t, err)

	require.Equal(t, recreated.state.accounts[accountID], edited.state.accounts[accountID])
	require.Equal(t, recreated.state.clientDebt[clientID], edited.state.clientDebt[clientID])
	require.Equal(t, recreated.state.supplierDebt[supplierID], edited.state.supplierDebt[supplierID])
	require.EqualValues(t, 700, edited.state.accounts[accountID])
	require.EqualValues(t, 500, edited.state.clientDebt[clientID])
	require.EqualValues(t, 200, edited.state.supplierDebt[supplierID])
}

func TestExpenseRoundTrip(t *testing.T) {
	repo := newMemoryRepo()
	ownerID := uuid.New()
	accountID := uuid.New()
	categoryID := uuid.New()
	repo.state.accounts[accountID] = 800
	svc := NewService(repo, nil)

	e, err := svc.CreateExpense(context.Background(), ownerID, CreateExpenseRequest{
		CategoryID: categoryID,
		AccountID:  accountID,
		Amount:     300,
	})
	require.NoError(t, err)
	require.EqualValues(t, 500, repo.state.accounts[accountID])

	require.NoError(t, svc.DeleteExpense(context.Background(), ownerID, e.ID))
	require.EqualValues(t, 800, repo.state.accounts[accountID])
	require.Empty(t, repo.state.expenses)
}

func TestCreateMovementRejectsNonPositiveAmount(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateMovement(context.Background(), uuid.New(), CreateMovementRequest{
		Type:      ledger.DirectionIn,
		Amount:    0,
		Entity:    ledger.EntityOther,
		AccountID: uuid.New(),
	})
	require.ErrorIs(t, err, ErrInvalidAmount)
}
