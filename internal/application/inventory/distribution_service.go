package inventory

import (
	"context"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DistributionService runs the two-phase warehouse to branch transfer.
// Distribute debits the warehouse immediately; Confirm credits the branch.
type DistributionService struct {
	scope            TransactionScope
	distributionRepo inventory.StockDistributionRepository
	logger           *zap.Logger
	businessMetrics  *telemetry.BusinessMetrics
}

// NewDistributionService creates a new DistributionService
func NewDistributionService(
	scope TransactionScope,
	distributionRepo inventory.StockDistributionRepository,
	logger *zap.Logger,
) *DistributionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DistributionService{
		scope:            scope,
		distributionRepo: distributionRepo,
		logger:           logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *DistributionService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Distribute sends stock from the warehouse to a branch. The warehouse row
// is locked and debited, the distribution is created PENDING and a
// DISTRIBUTION history entry referencing it is appended, all in one transaction.
func (s *DistributionService) Distribute(ctx context.Context, actor shared.Actor, req DistributeRequest) (out *DistributionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "distribution", "distribute",
		telemetry.SpanAttrBranchID, req.BranchID,
		telemetry.SpanAttrProductID, req.ProductID,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := actor.RequireOwner("distribute stock"); err != nil {
		return nil, err
	}
	distribution, err := inventory.NewStockDistribution(
		req.BranchID, req.ProductID, req.UnitQuantity, req.UnitVolumeMl, req.Note, actor.ID,
	)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, req.ProductID)
		if err != nil {
			return err
		}
		stock, err := repos.GlobalStockRepo().GetOrCreateForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}
		entry, err := stock.Distribute(distribution.Quantity, product.Name, inventory.MovementInput{
			Reason:      req.Note,
			ReferenceID: &distribution.ID,
			CreatedBy:   &actor.ID,
		})
		if err != nil {
			return err
		}
		if err := repos.GlobalStockRepo().Save(ctx, stock); err != nil {
			return err
		}
		if err := repos.DistributionRepo().Save(ctx, distribution); err != nil {
			return err
		}
		return repos.HistoryRepo().Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock distributed",
		zap.String("distribution_id", distribution.ID.String()),
		zap.String("branch_id", distribution.BranchID.String()),
		zap.String("product_id", distribution.ProductID.String()),
		zap.Int64("amount_ml", distribution.Quantity),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordStockMovement(ctx, inventory.MovementTypeDistribution.String(), -distribution.Quantity)
	}

	response := ToDistributionResponse(distribution)
	return &response, nil
}

// Confirm marks a distribution RECEIVED and credits the branch. Only staff
// of the destination branch may confirm; a second confirm fails with
// ALREADY_CONFIRMED so that the branch is credited exactly once.
func (s *DistributionService) Confirm(ctx context.Context, actor shared.Actor, distributionID uuid.UUID) (out *DistributionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "distribution", "confirm",
		telemetry.SpanAttrDistributionID, distributionID,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	var distribution *inventory.StockDistribution
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		locked, err := repos.DistributionRepo().FindByIDForUpdate(ctx, distributionID)
		if err != nil {
			return err
		}
		if err := locked.Confirm(actor); err != nil {
			return err
		}
		if _, err := inventory.NewBranchLedger(repos.BranchStockRepo()).Credit(ctx, locked.BranchID, locked.ProductID, locked.Quantity); err != nil {
			return err
		}
		if err := repos.DistributionRepo().Save(ctx, locked); err != nil {
			return err
		}
		distribution = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Distribution received",
		zap.String("distribution_id", distribution.ID.String()),
		zap.String("branch_id", distribution.BranchID.String()),
		zap.Int64("amount_ml", distribution.Quantity),
	)

	response := ToDistributionResponse(distribution)
	return &response, nil
}

// GetByID returns a distribution visible to the actor
func (s *DistributionService) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*DistributionResponse, error) {
	if err := actor.RequireStaff("view distributions"); err != nil {
		return nil, err
	}
	distribution, err := s.distributionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManageBranch(distribution.BranchID) {
		return nil, shared.NewNotFoundError("distribution", id)
	}
	response := ToDistributionResponse(distribution)
	return &response, nil
}

// List returns distributions newest first, filtered by status and branch.
// Branch staff only see their own branch.
func (s *DistributionService) List(ctx context.Context, actor shared.Actor, filter DistributionListFilter) ([]DistributionResponse, error) {
	if err := actor.RequireStaff("view distributions"); err != nil {
		return nil, err
	}
	branchID, err := actor.ScopeBranch(filter.BranchID)
	if err != nil {
		return nil, err
	}

	domainFilter := inventory.DistributionFilter{BranchID: branchID}
	if filter.Status != "" {
		status := inventory.DistributionStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewInvalidInputError("invalid distribution status %q", filter.Status)
		}
		domainFilter.Status = &status
	}

	rows, err := s.distributionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	out := make([]DistributionResponse, len(rows))
	for i := range rows {
		out[i] = ToDistributionResponse(&rows[i])
	}
	return out, nil
}
