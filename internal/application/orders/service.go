package orders

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/orders"
	"github.com/stockflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Notifier delivers outbound notifications about order activity.
// Implementations must be safe for concurrent use.
type Notifier interface {
	OrderCreated(ctx context.Context, order *orders.Order) error
}

// Service handles order business operations. Every stock mutation runs
// inside a single transaction with the status change it belongs to, so an
// order can never be observed holding a half-reserved set of lines.
type Service struct {
	tx            shared.TransactionManager
	orderRepo     orders.OrderRepository
	productRepo   catalog.ProductRepository
	notifier      Notifier
	logger        *zap.Logger
	retention     time.Duration
	notifyTimeout time.Duration
}

// NewService creates a new order Service
func NewService(
	tx shared.TransactionManager,
	orderRepo orders.OrderRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
	retention time.Duration,
) *Service {
	return &Service{
		tx:            tx,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		logger:        logger,
		retention:     retention,
		notifyTimeout: 10 * time.Second,
	}
}

// SetNotifier attaches an outbound notifier. Notifications are best-effort
// and never affect the outcome of an operation.
func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// Create creates a new order and immediately tries to reserve stock for it.
// When every line can be covered the order commits as READY_TO_SHIP;
// otherwise it commits as AWAITING_STOCK with no stock touched.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	lines := make([]orders.LineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, orders.LineInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := orders.NewOrder(req.CustomerName, orders.OrderSource(req.Source), lines)
	if err != nil {
		return nil, err
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		reserved, err := s.tryReserve(ctx, order)
		if err != nil {
			return err
		}
		if reserved {
			if err := order.TransitionTo(orders.StatusReadyToShip); err != nil {
				return err
			}
		}
		return s.orderRepo.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	// Reload so the notification and the response carry product info on
	// every line item
	persisted, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		// The order committed; fall back to the in-memory entity
		s.notifyCreated(order)
		response := ToOrderResponse(order)
		return &response, nil
	}

	s.notifyCreated(persisted)
	response := ToOrderResponse(persisted)
	return &response, nil
}

// Complete marks a READY_TO_SHIP order as COMPLETED. The reservation is
// consumed; stock stays deducted.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, id, func(ctx context.Context, order *orders.Order) error {
		return order.TransitionTo(orders.StatusCompleted)
	})
}

// Cancel cancels an order. A reservation held at cancellation time is
// released, so a cancelled order always nets out to zero stock effect.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, id, func(ctx context.Context, order *orders.Order) error {
		holdsStock := order.Status.HoldsReservation()
		if err := order.TransitionTo(orders.StatusCancelled); err != nil {
			return err
		}
		if holdsStock {
			return s.releaseLines(ctx, order)
		}
		return nil
	})
}

// Hold parks a READY_TO_SHIP order as ON_HOLD and releases its reservation
// back to the available pool. Holding an order that is already ON_HOLD is a
// no-op.
func (s *Service) Hold(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, id, func(ctx context.Context, order *orders.Order) error {
		if order.Status == orders.StatusOnHold {
			return nil
		}
		if err := order.TransitionTo(orders.StatusOnHold); err != nil {
			return err
		}
		return s.releaseLines(ctx, order)
	})
}

// Resume moves an ON_HOLD order back to READY_TO_SHIP, re-reserving its
// lines. Fails with INSUFFICIENT_STOCK when the pool no longer covers them;
// the order stays ON_HOLD in that case.
func (s *Service) Resume(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, id, func(ctx context.Context, order *orders.Order) error {
		if order.Status != orders.StatusOnHold {
			return shared.ErrInvalidTransition
		}
		reserved, err := s.tryReserve(ctx, order)
		if err != nil {
			return err
		}
		if !reserved {
			return shared.ErrInsufficientStock
		}
		return order.TransitionTo(orders.StatusReadyToShip)
	})
}

// Allocate retries the stock reservation for an AWAITING_STOCK order.
// Fails with INSUFFICIENT_STOCK when the pool still cannot cover every line.
func (s *Service) Allocate(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, id, func(ctx context.Context, order *orders.Order) error {
		if order.Status != orders.StatusAwaitingStock {
			return shared.ErrInvalidState
		}
		reserved, err := s.tryReserve(ctx, order)
		if err != nil {
			return err
		}
		if !reserved {
			return shared.ErrInsufficientStock
		}
		return order.TransitionTo(orders.StatusReadyToShip)
	})
}

// Get retrieves an order by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves orders newest first, optionally filtered by status
func (s *Service) List(ctx context.Context, status string) ([]OrderResponse, error) {
	var filter *orders.OrderStatus
	if status != "" {
		parsed := orders.OrderStatus(status)
		if !parsed.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status")
		}
		filter = &parsed
	}
	list, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(list), nil
}

// PurgeCancelled deletes CANCELLED orders older than the retention window.
// Called by the maintenance scheduler and exposed for manual runs.
func (s *Service) PurgeCancelled(ctx context.Context) (*PurgeResult, error) {
	cutoff := time.Now().Add(-s.retention)
	purged, err := s.orderRepo.DeleteCancelledBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if purged > 0 {
		s.logger.Info("purged cancelled orders",
			zap.Int64("count", purged),
			zap.Time("cutoff", cutoff))
	}
	return &PurgeResult{Purged: purged, Cutoff: cutoff}, nil
}

// transition runs fn against a locked order inside a transaction and saves
// the result
func (s *Service) transition(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, order *orders.Order) error) (*OrderResponse, error) {
	var order *orders.Order
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, order); err != nil {
			return err
		}
		return s.orderRepo.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// tryReserve locks every product on the order and reserves all lines if the
// pool covers them. Returns false without touching stock when any line falls
// short. Products are locked in ID order to avoid deadlocks between
// concurrent reservations.
func (s *Service) tryReserve(ctx context.Context, order *orders.Order) (bool, error) {
	products, err := s.lockLineProducts(ctx, order)
	if err != nil {
		return false, err
	}

	// Lines referencing the same product are checked against their combined
	// quantity
	needed := make(map[uuid.UUID]int, len(products))
	for i := range order.Items {
		needed[order.Items[i].ProductID] += order.Items[i].Quantity
	}
	for id, quantity := range needed {
		if !products[id].CanFulfill(quantity) {
			return false, nil
		}
	}

	for id, quantity := range needed {
		product := products[id]
		if err := product.Reserve(quantity); err != nil {
			return false, err
		}
		if err := s.productRepo.Save(ctx, product); err != nil {
			return false, err
		}
	}
	return true, nil
}

// releaseLines returns every line's quantity to the available pool
func (s *Service) releaseLines(ctx context.Context, order *orders.Order) error {
	products, err := s.lockLineProducts(ctx, order)
	if err != nil {
		return err
	}
	for i := range order.Items {
		item := &order.Items[i]
		product := products[item.ProductID]
		if err := product.Release(item.Quantity); err != nil {
			return err
		}
		if err := s.productRepo.Save(ctx, product); err != nil {
			return err
		}
	}
	return nil
}

// lockLineProducts loads the distinct products referenced by the order under
// row locks, in ascending ID order
func (s *Service) lockLineProducts(ctx context.Context, order *orders.Order) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(order.Items))
	seen := make(map[uuid.UUID]bool, len(order.Items))
	for i := range order.Items {
		id := order.Items[i].ProductID
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	products := make(map[uuid.UUID]*catalog.Product, len(ids))
	for _, id := range ids {
		product, err := s.productRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		products[id] = product
	}
	return products, nil
}

// notifyCreated fires the order notification without blocking the caller.
// Delivery failures are logged and otherwise ignored.
func (s *Service) notifyCreated(order *orders.Order) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.OrderCreated(ctx, order); err != nil {
			s.logger.Warn("order notification failed",
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
		}
	}()
}
