package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func sum(deltas []Delta, kind Kind) int64 {
	var total int64
	for _, d := range deltas {
		if d.Kind == kind {
			total += d.Amount
		}
	}
	return total
}

func TestSaleEffects(t *testing.T) {
	clientID := uuid.New()
	accountID := uuid.New()

	deltas := SaleEffects(&clientID, accountID, 300, 200)
	require.Len(t, deltas, 2)
	require.EqualValues(t, 200, sum(deltas, KindCashAccount))
	require.EqualValues(t, 100, sum(deltas, KindClientDebt))

	// fully paid sale leaves no debt
	deltas = SaleEffects(&clientID, accountID, 300, 300)
	require.Len(t, deltas, 1)
	require.EqualValues(t, 300, sum(deltas, KindCashAccount))

	// walk-in customer without a client record
	deltas = SaleEffects(nil, accountID, 300, 100)
	require.Len(t, deltas, 1)
	require.EqualValues(t, 100, sum(deltas, KindCashAccount))
}

func TestSaleReversalFloorsClientDebt(t *testing.T) {
	clientID := uuid.New()
	accountID := uuid.New()

	deltas := SaleReversal(&clientID, accountID, 300, 200)
	require.EqualValues(t, -200, sum(deltas, KindCashAccount))
	require.EqualValues(t, -100, sum(deltas, KindClientDebt))
	for _, d := range deltas {
		if d.Kind == KindClientDebt {
			require.True(t, d.FloorZero)
		}
		if d.Kind == KindCashAccount {
			require.False(t, d.FloorZero)
		}
	}
}

func TestPurchaseEffects(t *testing.T) {
	supplierID := uuid.New()
	accountID := uuid.New()

	deltas := PurchaseEffects(supplierID, accountID, 1000, 400)
	require.EqualValues(t, 600, sum(deltas, KindSupplierDebt))
	require.EqualValues(t, -400, sum(deltas, KindCashAccount))

	// paying in full books no supplier debt
	deltas = PurchaseEffects(supplierID, accountID, 1000, 1000)
	require.Len(t, deltas, 1)
	require.EqualValues(t, -1000, sum(deltas, KindCashAccount))
}

func TestManufactureEffects(t *testing.T) {
	supplierID := uuid.New()

	deltas := ManufactureEffects(&supplierID, 250)
	require.Len(t, deltas, 1)
	require.EqualValues(t, 250, sum(deltas, KindSupplierDebt))

	require.Empty(t, ManufactureEffects(nil, 250))
	require.Empty(t, ManufactureEffects(&supplierID, 0))
}

func TestMovementEffectsSignTable(t *testing.T) {
	entityID := uuid.New()
	accountID := uuid.New()

	cases := []struct {
		name   string
		dir    Direction
		entity EntityKind
		kind   Kind
		want   int64
	}{
		{"receipt from client reduces their debt", DirectionIn, EntityClient, KindClientDebt, -50},
		{"loan to client increases their debt", DirectionOut, EntityClient, KindClientDebt, 50},
		{"money from supplier increases what we owe", DirectionIn, EntitySupplier, KindSupplierDebt, 50},
		{"payment to supplier reduces what we owe", DirectionOut, EntitySupplier, KindSupplierDebt, -50},
		{"employee repayment reduces loan", DirectionIn, EntityEmployee, KindEmployeeLoan, -50},
		{"employee advance increases loan", DirectionOut, EntityEmployee, KindEmployeeLoan, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deltas, err := MovementEffects(tc.dir, tc.entity, &entityID, accountID, 50)
			require.NoError(t, err)
			require.EqualValues(t, tc.want, sum(deltas, tc.kind))

			wantCash := int64(50)
			if tc.dir == DirectionOut {
				wantCash = -50
			}
			require.EqualValues(t, wantCash, sum(deltas, KindCashAccount))
		})
	}
}

func TestMovementEffectsOther(t *testing.T) {
	accountID := uuid.New()

	deltas, err := MovementEffects(DirectionOut, EntityOther, nil, accountID, 75)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	require.EqualValues(t, -75, sum(deltas, KindCashAccount))
}

func TestMovementEffectsRequiresEntity(t *testing.T) {
	accountID := uuid.New()

	_, err := MovementEffects(DirectionIn, EntityClient, nil, accountID, 75)
	require.ErrorIs(t, err, ErrEntityRequired)
}

func TestInvertRoundTrips(t *testing.T) {
	clientID := uuid.New()
	accountID := uuid.New()

	deltas, err := MovementEffects(DirectionOut, EntityClient, &clientID, accountID, 50)
	require.NoError(t, err)
	inverted := Invert(deltas)
	require.EqualValues(t, 0, sum(append(deltas, inverted...), KindClientDebt))
	require.EqualValues(t, 0, sum(append(deltas, inverted...), KindCashAccount))
}
