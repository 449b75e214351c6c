package ledger

import "github.com/google/uuid"

// SaleEffects returns the balance deltas of a completed sale: the paid
// amount lands on the cash account and any unpaid remainder becomes client
// debt. Stock changes are not deltas; they run through the guarded product
// updates in the sales repository.
func SaleEffects(clientID *uuid.UUID, accountID uuid.UUID, total, paid int64) []Delta {
	var deltas []Delta
	if paid != 0 {
		deltas = append(deltas, Delta{Kind: KindCashAccount, EntityID: accountID, Amount: paid})
	}
	if remainder := total - paid; remainder > 0 && clientID != nil {
		deltas = append(deltas, Delta{Kind: KindClientDebt, EntityID: *clientID, Amount: remainder})
	}
	return deltas
}

// SaleReversal inverts SaleEffects for invoice deletion. The client-debt
// reversal is floored at zero, matching the delete path of the source system.
func SaleReversal(clientID *uuid.UUID, accountID uuid.UUID, total, paid int64) []Delta {
	deltas := Invert(SaleEffects(clientID, accountID, total, paid))
	for i := range deltas {
		if deltas[i].Kind == KindClientDebt {
			deltas[i].FloorZero = true
		}
	}
	return deltas
}

// PurchaseEffects returns the balance deltas of a purchase: any paid amount
// leaves the cash account, any unpaid remainder becomes debt owed to the
// supplier.
func PurchaseEffects(supplierID, accountID uuid.UUID, totalCost, paid int64) []Delta {
	var deltas []Delta
	if remainder := totalCost - paid; remainder > 0 {
		deltas = append(deltas, Delta{Kind: KindSupplierDebt, EntityID: supplierID, Amount: remainder})
	}
	if paid != 0 {
		deltas = append(deltas, Delta{Kind: KindCashAccount, EntityID: accountID, Amount: -paid})
	}
	return deltas
}

// ManufactureEffects books the labor fee of a production run as supplier
// debt. A run without a supplier or without a fee has no balance effect.
func ManufactureEffects(supplierID *uuid.UUID, laborTotal int64) []Delta {
	if supplierID == nil || laborTotal <= 0 {
		return nil
	}
	return []Delta{{Kind: KindSupplierDebt, EntityID: *supplierID, Amount: laborTotal}}
}

// MovementEffects returns the deltas of a cash movement. The cash account
// always moves with the direction; the counterparty balance moves by the
// entity sign rules:
//
//	in,  client:   debt down   (receipt reduces what they owe)
//	out, client:   debt up     (loan/disbursement)
//	in,  supplier: debt up     (money received from them is owed back)
//	out, supplier: debt down   (payment on what we owe)
//	in,  employee: loan down   (repayment)
//	out, employee: loan up     (advance)
func MovementEffects(dir Direction, entity EntityKind, entityID *uuid.UUID, accountID uuid.UUID, amount int64) ([]Delta, error) {
	var deltas []Delta
	if entity != EntityOther {
		if entityID == nil {
			return nil, ErrEntityRequired
		}
		kind, sign := movementEntityRule(dir, entity)
		deltas = append(deltas, Delta{Kind: kind, EntityID: *entityID, Amount: sign * amount})
	}
	cash := amount
	if dir == DirectionOut {
		cash = -amount
	}
	deltas = append(deltas, Delta{Kind: KindCashAccount, EntityID: accountID, Amount: cash})
	return deltas, nil
}

func movementEntityRule(dir Direction, entity EntityKind) (Kind, int64) {
	in := dir == DirectionIn
	switch entity {
	case EntityClient:
		if in {
			return KindClientDebt, -1
		}
		return KindClientDebt, 1
	case EntitySupplier:
		if in {
			return KindSupplierDebt, 1
		}
		return KindSupplierDebt, -1
	case EntityEmployee:
		if in {
			return KindEmployeeLoan, -1
		}
		return KindEmployeeLoan, 1
	}
	return "", 0
}
