package products

import (
	"fmt"
	"strings"

	"github.com/bousala/bousala/internal/masterdata/shared"
)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", shared.ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: product price must not be negative", shared.ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: product stock must not be negative", shared.ErrValidation)
	}
	return nil
}
