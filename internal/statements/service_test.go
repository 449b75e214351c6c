package statements

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	client         EntityBalance
	clientEvents   []Event
	supplier       EntityBalance
	supplierEvents []Event
}

func (s *stubRepo) GetClient(ctx context.Context, ownerID, clientID uuid.UUID) (EntityBalance, error) {
	if s.client.ID != clientID {
		return EntityBalance{}, ErrEntityNotFound
	}
	return s.client, nil
}

func (s *stubRepo) ClientEvents(ctx context.Context, ownerID, clientID uuid.UUID) ([]Event, error) {
	return s.clientEvents, nil
}

func (s *stubRepo) GetSupplier(ctx context.Context, ownerID, supplierID uuid.UUID) (EntityBalance, error) {
	if s.supplier.ID != supplierID {
		return EntityBalance{}, ErrEntityNotFound
	}
	return s.supplier, nil
}

func (s *stubRepo) SupplierEvents(ctx context.Context, ownerID, supplierID uuid.UUID) ([]Event, error) {
	return s.supplierEvents, nil
}

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestClientStatementRunningBalanceEndsAtStoredDebt(t *testing.T) {
	clientID := uuid.New()
	repo := &stubRepo{
		client: EntityBalance{ID: clientID, Name: "Ahmed", Debt: 250},
		clientEvents: []Event{
			{Date: day(3), Description: "receipt", Credit: 150},
			{Date: day(1), Description: "invoice", Debit: 400, Credit: 100},
			{Date: day(5), Description: "invoice", Debit: 200, Credit: 0},
		},
	}
	svc := NewService(repo)

	st, err := svc.ClientStatement(context.Background(), uuid.New(), clientID)
	require.NoError(t, err)

	// Σdebits = 600, Σcredits = 250, stored = 250 → opening = −100
	require.EqualValues(t, -100, st.OpeningBalance)
	require.Len(t, st.Rows, 3)
	// sorted chronologically
	require.Equal(t, day(1), st.Rows[0].Date)
	require.EqualValues(t, 200, st.Rows[0].Balance)
	require.EqualValues(t, 50, st.Rows[1].Balance)
	require.EqualValues(t, 250, st.Rows[2].Balance)
	require.Equal(t, repo.client.Debt, st.ClosingBalance, "fold must land on the stored debt")
}

func TestClientStatementAbsorbsDriftIntoOpeningRow(t *testing.T) {
	clientID := uuid.New()
	// stored debt does not match replayable history at all
	repo := &stubRepo{
		client: EntityBalance{ID: clientID, Name: "Ahmed", Debt: 9999},
		clientEvents: []Event{
			{Date: day(1), Description: "invoice", Debit: 100},
		},
	}
	svc := NewService(repo)

	st, err := svc.ClientStatement(context.Background(), uuid.New(), clientID)
	require.NoError(t, err)
	require.EqualValues(t, 9899, st.OpeningBalance)
	require.EqualValues(t, 9999, st.ClosingBalance)
}

func TestClientStatementEmptyHistory(t *testing.T) {
	clientID := uuid.New()
	repo := &stubRepo{client: EntityBalance{ID: clientID, Name: "Ahmed", Debt: 300}}
	svc := NewService(repo)

	st, err := svc.ClientStatement(context.Background(), uuid.New(), clientID)
	require.NoError(t, err)
	require.EqualValues(t, 300, st.OpeningBalance)
	require.EqualValues(t, 300, st.ClosingBalance)
	require.Empty(t, st.Rows)
}

func TestSupplierStatement(t *testing.T) {
	supplierID := uuid.New()
	repo := &stubRepo{
		supplier: EntityBalance{ID: supplierID, Name: "Textile Co", Debt: 500},
		supplierEvents: []Event{
			{Date: day(2), Description: "purchase", Debit: 800, Credit: 200},
			{Date: day(4), Description: "payment", Credit: 100},
		},
	}
	svc := NewService(repo)

	st, err := svc.SupplierStatement(context.Background(), uuid.New(), supplierID)
	require.NoError(t, err)
	require.EqualValues(t, 0, st.OpeningBalance)
	require.EqualValues(t, 600, st.Rows[0].Balance)
	require.EqualValues(t, 500, st.ClosingBalance)
}

func TestStatementUnknownEntity(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	_, err := svc.ClientStatement(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrEntityNotFound)
}
