package trade

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/catalog"
	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an online order
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	OrderStatusApproved       OrderStatus = "APPROVED"
	OrderStatusRejected       OrderStatus = "REJECTED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPendingPayment, OrderStatusApproved, OrderStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusApproved || s == OrderStatusRejected
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPendingPayment:
		return target == OrderStatusApproved || target == OrderStatusRejected
	case OrderStatusApproved, OrderStatusRejected:
		return false // Terminal states
	}
	return false
}

// DeliveryInfo is where and to whom an online order is shipped
type DeliveryInfo struct {
	RecipientName string
	Phone         string
	Address       string
	Note          string
}

// Validate checks the mandatory delivery fields
func (d DeliveryInfo) Validate() error {
	if strings.TrimSpace(d.RecipientName) == "" {
		return shared.NewInvalidInputError("recipient name is required")
	}
	if strings.TrimSpace(d.Phone) == "" {
		return shared.NewInvalidInputError("recipient phone is required")
	}
	if strings.TrimSpace(d.Address) == "" {
		return shared.NewInvalidInputError("delivery address is required")
	}
	return nil
}

// OrderItem is one line of an online order. PriceAtPurchase is the unit
// price locked in at checkout and never recomputed.
type OrderItem struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int
	VolumeMl        int64
	PurchaseType    catalog.PurchaseType
	PriceAtPurchase decimal.Decimal
	CreatedAt       time.Time
}

// RequiredMl returns the stock consumed by the line
func (i OrderItem) RequiredMl() int64 {
	return int64(i.Quantity) * i.VolumeMl
}

// LineTotal returns the price of the line
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is an online checkout awaiting payment verification.
// Stock is not reserved at checkout; it is deducted on approval.
type Order struct {
	shared.BaseAggregateRoot
	CustomerID      uuid.UUID
	BranchID        uuid.UUID
	Status          OrderStatus
	TotalAmount     decimal.Decimal
	ProofOfPayment  string
	Delivery        DeliveryInfo
	Items           []OrderItem
	DecidedBy       *uuid.UUID
	DecidedAt       *time.Time
	RejectionReason string
}

// NewOrder creates an empty pending order
func NewOrder(customerID, branchID uuid.UUID, delivery DeliveryInfo, proofOfPayment string) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewInvalidInputError("customer is required")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewInvalidInputError("branch is required")
	}
	if err := delivery.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(proofOfPayment) == "" {
		return nil, shared.NewInvalidInputError("proof of payment is required")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		BranchID:          branchID,
		Status:            OrderStatusPendingPayment,
		TotalAmount:       decimal.Zero,
		ProofOfPayment:    proofOfPayment,
		Delivery:          delivery,
		Items:             make([]OrderItem, 0),
	}, nil
}

// AddItem appends a priced line and updates the total
func (o *Order) AddItem(product *catalog.Product, quantity int, volumeMl int64, purchaseType catalog.PurchaseType, unitPrice decimal.Decimal) (*OrderItem, error) {
	if o.Status != OrderStatusPendingPayment {
		return nil, shared.NewInvalidStateError("cannot add items to order in %s status", o.Status)
	}
	if quantity <= 0 {
		return nil, shared.NewInvalidInputError("quantity must be positive, got %d", quantity)
	}
	if volumeMl <= 0 {
		return nil, shared.NewInvalidInputError("volume must be positive, got %d ml", volumeMl)
	}
	if !unitPrice.IsPositive() {
		return nil, shared.NewInvalidPriceError(product.Name, unitPrice)
	}
	ml, err := lineMl(quantity, volumeMl)
	if err != nil {
		return nil, err
	}
	required, err := o.RequiredByProduct()
	if err != nil {
		return nil, err
	}
	if _, err := addMl(required[product.ID], ml); err != nil {
		return nil, err
	}

	item := OrderItem{
		ID:              uuid.New(),
		OrderID:         o.ID,
		ProductID:       product.ID,
		ProductName:     product.Name,
		Quantity:        quantity,
		VolumeMl:        volumeMl,
		PurchaseType:    purchaseType,
		PriceAtPurchase: unitPrice,
		CreatedAt:       time.Now(),
	}
	o.Items = append(o.Items, item)
	o.TotalAmount = o.TotalAmount.Add(item.LineTotal())
	return &o.Items[len(o.Items)-1], nil
}

// RequiredByProduct sums the stock needed per product
func (o *Order) RequiredByProduct() (map[uuid.UUID]int64, error) {
	required := make(map[uuid.UUID]int64, len(o.Items))
	for _, item := range o.Items {
		ml, err := lineMl(item.Quantity, item.VolumeMl)
		if err != nil {
			return nil, err
		}
		sum, err := addMl(required[item.ProductID], ml)
		if err != nil {
			return nil, err
		}
		required[item.ProductID] = sum
	}
	return required, nil
}

// ItemsInLockOrder returns the items sorted by product so that branch stock
// rows are always locked in the same order.
func (o *Order) ItemsInLockOrder() []OrderItem {
	items := make([]OrderItem, len(o.Items))
	copy(items, o.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ProductID.String() < items[j].ProductID.String()
	})
	return items
}

// AuthorizeDecision checks the order is pending and the actor may decide it.
func (o *Order) AuthorizeDecision(actor shared.Actor) error {
	if o.Status != OrderStatusPendingPayment {
		return shared.NewInvalidStateError("order is already %s", o.Status)
	}
	if !actor.CanManageBranch(o.BranchID) {
		return shared.NewForbiddenError("decide an order")
	}
	return nil
}

// ValidatePrices checks every locked-in price is still positive
func (o *Order) ValidatePrices() error {
	if len(o.Items) == 0 {
		return shared.NewInvalidStateError("order has no items")
	}
	for _, item := range o.Items {
		if !item.PriceAtPurchase.IsPositive() {
			return shared.NewInvalidPriceError(item.ProductName, item.PriceAtPurchase)
		}
	}
	return nil
}

// Approve moves the order to APPROVED. Stock deduction is done by the
// caller inside the same transaction before calling this.
func (o *Order) Approve(actor shared.Actor) error {
	if err := o.AuthorizeDecision(actor); err != nil {
		return err
	}
	if err := o.ValidatePrices(); err != nil {
		return err
	}
	o.decide(OrderStatusApproved, actor)
	return nil
}

// Reject moves the order to REJECTED. No stock is touched.
func (o *Order) Reject(actor shared.Actor, reason string) error {
	if err := o.AuthorizeDecision(actor); err != nil {
		return err
	}
	o.RejectionReason = reason
	o.decide(OrderStatusRejected, actor)
	return nil
}

// IsVisibleTo reports whether the actor may read the order
func (o *Order) IsVisibleTo(actor shared.Actor) bool {
	switch actor.Role {
	case shared.RoleOwner:
		return true
	case shared.RoleEmployee:
		return actor.BelongsTo(o.BranchID)
	case shared.RoleCustomer:
		return o.CustomerID == actor.ID
	}
	return false
}

func (o *Order) decide(status OrderStatus, actor shared.Actor) {
	now := time.Now()
	by := actor.ID
	o.Status = status
	o.DecidedBy = &by
	o.DecidedAt = &now
	o.IncrementVersion()
}

// String returns a short description used in logs
func (o *Order) String() string {
	return fmt.Sprintf("order %s (%s, %d items)", o.ID, o.Status, len(o.Items))
}
