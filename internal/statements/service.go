package statements

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

// EntityBalance is the stored aggregate the fold must reconcile with.
type EntityBalance struct {
	ID   uuid.UUID
	Name string
	Debt int64
}

// RepositoryPort fetches raw history for statements.
type RepositoryPort interface {
	GetClient(ctx context.Context, ownerID, clientID uuid.UUID) (EntityBalance, error)
	ClientEvents(ctx context.Context, ownerID, clientID uuid.UUID) ([]Event, error)
	GetSupplier(ctx context.Context, ownerID, supplierID uuid.UUID) (EntityBalance, error)
	SupplierEvents(ctx context.Context, ownerID, supplierID uuid.UUID) ([]Event, error)
}

// Service assembles statements.
type Service struct {
	repo RepositoryPort
}

// NewService constructs statements service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ClientStatement folds the client's invoices and movements into a running
// balance ending at the stored debt.
func (s *Service) ClientStatement(ctx context.Context, ownerID, clientID uuid.UUID) (Statement, error) {
	entity, err := s.repo.GetClient(ctx, ownerID, clientID)
	if err != nil {
		return Statement{}, err
	}
	events, err := s.repo.ClientEvents(ctx, ownerID, clientID)
	if err != nil {
		return Statement{}, err
	}
	return fold(entity, events), nil
}

// SupplierStatement folds the supplier's purchases and movements into a
// running balance ending at the stored debt.
func (s *Service) SupplierStatement(ctx context.Context, ownerID, supplierID uuid.UUID) (Statement, error) {
	entity, err := s.repo.GetSupplier(ctx, ownerID, supplierID)
	if err != nil {
		return Statement{}, err
	}
	events, err := s.repo.SupplierEvents(ctx, ownerID, supplierID)
	if err != nil {
		return Statement{}, err
	}
	return fold(entity, events), nil
}

// fold sorts events chronologically and replays debits and credits into a
// running balance. The opening balance is back-computed as
// current − Σdebits + Σcredits, so any drift between stored aggregate and
// replayable history is absorbed into the opening row rather than flagged.
func fold(entity EntityBalance, events []Event) Statement {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})

	var debits, credits int64
	for _, ev := range events {
		debits += ev.Debit
		credits += ev.Credit
	}
	opening := entity.Debt - debits + credits

	st := Statement{
		EntityID:       entity.ID,
		EntityName:     entity.Name,
		OpeningBalance: opening,
		Rows:           make([]Row, 0, len(events)),
	}
	balance := opening
	for _, ev := range events {
		balance += ev.Debit - ev.Credit
		st.Rows = append(st.Rows, Row{
			Date:        ev.Date,
			Reference:   ev.Reference,
			Description: ev.Description,
			Debit:       ev.Debit,
			Credit:      ev.Credit,
			Balance:     balance,
		})
	}
	st.ClosingBalance = balance
	return st
}
