package trade

import (
	"context"
	"errors"
	"sort"
	"time"

	appinv "github.com/fathiyyah28/proyek-sub000/internal/application/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/trade"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService runs the online order state machine.
// Checkout only checks availability; stock is deducted on Approve.
type OrderService struct {
	scope           appinv.TransactionScope
	productRepo     catalog.ProductRepository
	branchRepo      inventory.BranchStockRepository
	orderRepo       trade.OrderRepository
	deriver         catalog.PriceDeriver
	healer          PriceHealer
	proofs          ProofVerifier
	idempotency     shared.IdempotencyStore
	idempotencyTTL  time.Duration
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewOrderService creates a new OrderService
func NewOrderService(
	scope appinv.TransactionScope,
	productRepo catalog.ProductRepository,
	branchRepo inventory.BranchStockRepository,
	orderRepo trade.OrderRepository,
	deriver catalog.PriceDeriver,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		scope:          scope,
		productRepo:    productRepo,
		branchRepo:     branchRepo,
		orderRepo:      orderRepo,
		deriver:        deriver,
		idempotencyTTL: shared.DefaultIdempotencyConfig().TTL,
		logger:         logger,
	}
}

// SetPriceHealer sets the legacy price normalizer
func (s *OrderService) SetPriceHealer(healer PriceHealer) {
	s.healer = healer
}

// ProofVerifier checks that a proof-of-payment reference was uploaded
type ProofVerifier interface {
	Verify(ctx context.Context, ref string) (bool, error)
}

// SetProofVerifier makes checkout reject proof references that were never uploaded
func (s *OrderService) SetProofVerifier(verifier ProofVerifier) {
	s.proofs = verifier
}

// SetIdempotencyStore enables Idempotency-Key handling for checkout
func (s *OrderService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *OrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Checkout prices the items, checks the branch holds enough stock without
// reserving it, and stores a PENDING_PAYMENT order with the locked-in prices.
// A non-empty idempotencyKey makes retries of the same checkout return the
// order created by the first attempt.
func (s *OrderService) Checkout(ctx context.Context, actor shared.Actor, req CheckoutRequest, idempotencyKey string) (*OrderResponse, error) {
	if idempotencyKey == "" || s.idempotency == nil {
		return s.checkout(ctx, actor, req)
	}

	key := "checkout:" + actor.ID.String() + ":" + idempotencyKey
	claimed, err := s.idempotency.Reserve(ctx, key, s.idempotencyTTL)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return s.replayCheckout(ctx, actor, key)
	}

	response, err := s.checkout(ctx, actor, req)
	if err != nil {
		if releaseErr := s.idempotency.Release(ctx, key); releaseErr != nil {
			s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(releaseErr))
		}
		return nil, err
	}
	if err := s.idempotency.Complete(ctx, key, response.ID.String(), s.idempotencyTTL); err != nil {
		s.logger.Warn("Failed to store idempotency result", zap.String("key", key), zap.Error(err))
	}
	return response, nil
}

func (s *OrderService) replayCheckout(ctx context.Context, actor shared.Actor, key string) (*OrderResponse, error) {
	result, found, err := s.idempotency.Result(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found || result == "" {
		return nil, shared.NewDomainError(shared.CodeConcurrencyConflict, "A checkout with this idempotency key is still in progress")
	}
	orderID, err := uuid.Parse(result)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, orderID)
}

func (s *OrderService) checkout(ctx context.Context, actor shared.Actor, req CheckoutRequest) (out *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "checkout",
		telemetry.SpanAttrBranchID, req.BranchID,
		telemetry.SpanAttrItemCount, len(req.Items),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if len(req.Items) == 0 {
		return nil, shared.NewInvalidInputError("order must contain at least one item")
	}
	order, err := trade.NewOrder(actor.ID, req.BranchID, trade.DeliveryInfo{
		RecipientName: req.Delivery.RecipientName,
		Phone:         req.Delivery.Phone,
		Address:       req.Delivery.Address,
		Note:          req.Delivery.Note,
	}, req.ProofFileRef)
	if err != nil {
		return nil, err
	}
	if s.proofs != nil {
		ok, err := s.proofs.Verify(ctx, order.ProofOfPayment)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, shared.NewInvalidInputError("proof of payment %q was not uploaded", order.ProofOfPayment)
		}
	}

	products, err := s.loadProducts(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	heals := pendingHeals{}
	for _, in := range req.Items {
		product := products[in.ProductID]
		purchaseType, err := parsePurchaseType(in.PurchaseType)
		if err != nil {
			return nil, err
		}
		quote, err := s.deriver.Price(product, in.VolumeMl, purchaseType)
		if err != nil {
			return nil, err
		}
		heals.note(product, quote)
		if _, err := order.AddItem(product, in.Quantity, in.VolumeMl, purchaseType, quote.UnitPrice); err != nil {
			return nil, err
		}
	}

	// Availability is read without locks. It is re-checked under lock on approval.
	required, err := order.RequiredByProduct()
	if err != nil {
		return nil, err
	}
	ledger := inventory.NewBranchLedger(s.branchRepo)
	for productID, requiredMl := range required {
		available, err := ledger.Get(ctx, order.BranchID, productID)
		if err != nil {
			return nil, err
		}
		if requiredMl > available {
			return nil, shared.NewInsufficientStockError(products[productID].Name, requiredMl, available)
		}
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	heals.flush(ctx, s.healer)

	s.logger.Info("Order checked out",
		zap.String("order_id", order.ID.String()),
		zap.String("branch_id", order.BranchID.String()),
		zap.String("total_amount", order.TotalAmount.String()),
		zap.Int("items", len(order.Items)),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderOutcome(ctx, order.BranchID, telemetry.OrderOutcomeCreated)
	}

	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) loadProducts(ctx context.Context, items []CheckoutItemInput) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	found, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	products := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, shared.NewNotFoundError("product", id)
		}
	}
	return products, nil
}

// Approve verifies the payment of a pending order. In one transaction it
// locks the order, then each branch stock row in product order, debits the
// required volume and writes one ONLINE sale per item. Any failure leaves
// stock, sales and the order untouched.
func (s *OrderService) Approve(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "approve",
		telemetry.SpanAttrOrderID, orderID,
		telemetry.SpanAttrActorRole, actor.Role,
	)
	defer span.End()

	response, err := s.approve(ctx, actor, orderID)
	telemetry.RecordError(span, err)
	return response, err
}

func (s *OrderService) approve(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	var (
		order *trade.Order
		sales []*trade.SalesRecord
	)
	err := s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		locked, err := repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := locked.AuthorizeDecision(actor); err != nil {
			return err
		}
		if err := locked.ValidatePrices(); err != nil {
			return err
		}

		names := make(map[uuid.UUID]string, len(locked.Items))
		for _, item := range locked.Items {
			names[item.ProductID] = item.ProductName
		}
		required, err := locked.RequiredByProduct()
		if err != nil {
			return err
		}
		productIDs := make([]uuid.UUID, 0, len(required))
		for id := range required {
			productIDs = append(productIDs, id)
		}
		sort.Slice(productIDs, func(i, j int) bool { return productIDs[i].String() < productIDs[j].String() })

		ledger := inventory.NewBranchLedger(repos.BranchStockRepo())
		for _, productID := range productIDs {
			if _, err := ledger.Debit(ctx, locked.BranchID, productID, required[productID], names[productID]); err != nil {
				return err
			}
		}

		created := make([]*trade.SalesRecord, 0, len(locked.Items))
		for _, item := range locked.ItemsInLockOrder() {
			sale, err := trade.NewOnlineSale(locked, item, actor.ID)
			if err != nil {
				return err
			}
			if err := repos.SalesRepo().Create(ctx, sale); err != nil {
				return err
			}
			created = append(created, sale)
		}

		if err := locked.Approve(actor); err != nil {
			return err
		}
		if err := repos.OrderRepo().UpdateStatus(ctx, locked); err != nil {
			return err
		}
		order = locked
		sales = created
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrInsufficientStock) {
			s.logger.Warn("Order approval rejected by stock check",
				zap.String("order_id", orderID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("Order approved",
		zap.String("order_id", order.ID.String()),
		zap.String("approved_by", actor.ID.String()),
		zap.Int("sales", len(sales)),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderOutcome(ctx, order.BranchID, telemetry.OrderOutcomeApproved)
		for _, sale := range sales {
			s.businessMetrics.RecordSale(ctx, sale.BranchID, sale.Source.String(), sale.TotalPrice)
		}
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// Reject declines a pending order. No stock is touched.
func (s *OrderService) Reject(ctx context.Context, actor shared.Actor, orderID uuid.UUID, reason string) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "reject", telemetry.SpanAttrOrderID, orderID)
	defer span.End()

	var order *trade.Order
	err := s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		locked, err := repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := locked.Reject(actor, reason); err != nil {
			return err
		}
		if err := repos.OrderRepo().UpdateStatus(ctx, locked); err != nil {
			return err
		}
		order = locked
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Order rejected",
		zap.String("order_id", order.ID.String()),
		zap.String("rejected_by", actor.ID.String()),
		zap.String("reason", reason),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderOutcome(ctx, order.BranchID, telemetry.OrderOutcomeRejected)
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// Get returns an order visible to the actor. Orders of other customers or
// branches are reported as not found.
func (s *OrderService) Get(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsVisibleTo(actor) {
		return nil, shared.NewNotFoundError("order", orderID)
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List returns orders newest first. Customers only see their own orders and
// branch staff only their branch.
func (s *OrderService) List(ctx context.Context, actor shared.Actor, filter OrderListFilter) ([]OrderResponse, error) {
	domainFilter := trade.OrderFilter{BranchID: filter.BranchID, CustomerID: filter.CustomerID}
	switch {
	case actor.IsCustomer():
		own := actor.ID
		domainFilter.CustomerID = &own
	default:
		branchID, err := actor.ScopeBranch(filter.BranchID)
		if err != nil {
			return nil, err
		}
		domainFilter.BranchID = branchID
	}
	if filter.Status != "" {
		status := trade.OrderStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewInvalidInputError("invalid order status %q", filter.Status)
		}
		domainFilter.Status = &status
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// ListMine returns the orders of the calling customer
func (s *OrderService) ListMine(ctx context.Context, actor shared.Actor) ([]OrderResponse, error) {
	own := actor.ID
	orders, err := s.orderRepo.FindAll(ctx, trade.OrderFilter{CustomerID: &own})
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}
