package vendas

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Service provides high-level venda management operations on a Storage
// backend. It owns the amount invariants and the filter-field whitelist; the
// storage layer owns the derived-field computation.
type Service struct {
	storage Storage
	logger  *zap.Logger
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// ListVendas returns the vendas matching the given filters, newest sale
// date first. An empty result is valid.
func (s *Service) ListVendas(ctx context.Context, f Filtros) ([]Venda, error) {
	vendas, err := s.storage.List(ctx, f)
	if err != nil {
		s.logger.Error("failed to list vendas", zap.Error(err))
		return nil, fmt.Errorf("failed to list vendas: %w", err)
	}
	return vendas, nil
}

// CreateVenda validates the amounts and delegates creation to the storage,
// which assigns id/created_at and computes desagio_percentual and lucro.
func (s *Service) CreateVenda(ctx context.Context, in VendaInput) (*Venda, error) {
	if err := validateAmounts(in); err != nil {
		return nil, err
	}

	v, err := s.storage.Create(ctx, in)
	if err != nil {
		s.logger.Error("failed to create venda",
			zap.String("localizador", in.Localizador),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("venda created",
		zap.String("venda_id", v.ID),
		zap.String("titular", v.Titular),
		zap.Float64("lucro", v.Lucro),
	)
	return v, nil
}

// UpdateVenda validates the amounts and replaces every mutable field of the
// venda; id and created_at are immutable and the derived fields are
// recomputed by the storage.
func (s *Service) UpdateVenda(ctx context.Context, id string, in VendaInput) (*Venda, error) {
	if err := validateAmounts(in); err != nil {
		return nil, err
	}

	v, err := s.storage.Update(ctx, id, in)
	if err != nil {
		s.logger.Error("failed to update venda", zap.String("venda_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("venda updated", zap.String("venda_id", id))
	return v, nil
}

// DeleteVenda removes the venda by ID.
func (s *Service) DeleteVenda(ctx context.Context, id string) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete venda", zap.String("venda_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("venda deleted", zap.String("venda_id", id))
	return nil
}

// Opcoes returns the distinct values stored for a whitelisted filter field.
func (s *Service) Opcoes(ctx context.Context, campo string) ([]string, error) {
	if !CampoValido(campo) {
		s.logger.Warn("invalid campo for opcoes", zap.String("campo", campo))
		return nil, fmt.Errorf("%w: campo %q", ErrInvalidInput, campo)
	}

	values, err := s.storage.DistinctValues(ctx, campo)
	if err != nil {
		s.logger.Error("failed to fetch opcoes", zap.String("campo", campo), zap.Error(err))
		return nil, err
	}
	return values, nil
}

// Indicadores returns the dashboard aggregate over the whole table. It never
// returns nil on success: a missing row becomes the all-zero aggregate.
func (s *Service) Indicadores(ctx context.Context) (*Indicadores, error) {
	ind, err := s.storage.Indicators(ctx)
	if err != nil {
		s.logger.Error("failed to fetch indicadores", zap.Error(err))
		return nil, err
	}
	if ind == nil {
		ind = &Indicadores{}
	}
	return ind, nil
}

// Saldos returns the cumulative lucro per titular.
func (s *Service) Saldos(ctx context.Context) ([]SaldoTitular, error) {
	saldos, err := s.storage.BalancesByTitular(ctx)
	if err != nil {
		s.logger.Error("failed to fetch saldos", zap.Error(err))
		return nil, err
	}
	return saldos, nil
}

func validateAmounts(in VendaInput) error {
	if in.ValorWallet <= 0 {
		return fmt.Errorf("%w: valor_wallet must be greater than zero", ErrInvalidInput)
	}
	if in.ValorVenda <= 0 {
		return fmt.Errorf("%w: valor_venda must be greater than zero", ErrInvalidInput)
	}
	if in.CustoWallet < 0 {
		return fmt.Errorf("%w: custo_wallet must not be negative", ErrInvalidInput)
	}
	return nil
}
