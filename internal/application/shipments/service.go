package shipments

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/orders"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shipments"
	"go.uber.org/zap"
)

// Service handles shipment business operations. Marking a shipment ORDERED
// or RECEIVED runs as one transaction covering the shipment, the pre-order
// sales orders it spawns or promotes, and every stock mutation.
type Service struct {
	tx           shared.TransactionManager
	shipmentRepo shipments.ShipmentRepository
	productRepo  catalog.ProductRepository
	orderRepo    orders.OrderRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates a new shipment Service
func NewService(
	tx shared.TransactionManager,
	shipmentRepo shipments.ShipmentRepository,
	productRepo catalog.ProductRepository,
	orderRepo orders.OrderRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		tx:           tx,
		shipmentRepo: shipmentRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Create creates a new shipment in PLANNING. When no name is given one is
// generated from the current date, with a numeric suffix on collision.
func (s *Service) Create(ctx context.Context, req CreateShipmentRequest) (*ShipmentResponse, error) {
	name := req.Name
	if name == "" {
		generated, err := s.generateName(ctx)
		if err != nil {
			return nil, err
		}
		name = generated
	} else {
		exists, err := s.shipmentRepo.ExistsByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.ErrAlreadyExists
		}
	}

	shipment, err := shipments.NewShipment(name)
	if err != nil {
		return nil, err
	}
	if err := s.shipmentRepo.Create(ctx, shipment); err != nil {
		return nil, err
	}

	response := ToShipmentResponse(shipment)
	return &response, nil
}

// AddRequest adds one product line to a PLANNING shipment, merging into an
// existing line with the same product and customer.
func (s *Service) AddRequest(ctx context.Context, shipmentID uuid.UUID, req AddRequestRequest) (*ShipmentResponse, error) {
	return s.mutate(ctx, shipmentID, func(ctx context.Context, shipment *shipments.Shipment) error {
		if _, err := s.productRepo.FindByID(ctx, req.ProductID); err != nil {
			return err
		}
		_, err := shipment.AddRequest(req.ProductID, req.Quantity, req.CustomerName)
		return err
	})
}

// BatchAdd adds multiple product lines in one transaction
func (s *Service) BatchAdd(ctx context.Context, shipmentID uuid.UUID, req BatchAddRequest) (*ShipmentResponse, error) {
	return s.mutate(ctx, shipmentID, func(ctx context.Context, shipment *shipments.Shipment) error {
		for _, line := range req.Requests {
			if _, err := s.productRepo.FindByID(ctx, line.ProductID); err != nil {
				return err
			}
			if _, err := shipment.AddRequest(line.ProductID, line.Quantity, line.CustomerName); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateRequestQuantity changes the quantity of a shipment request
func (s *Service) UpdateRequestQuantity(ctx context.Context, requestID uuid.UUID, req UpdateQuantityRequest) (*ShipmentResponse, error) {
	return s.mutateRequest(ctx, requestID, func(shipment *shipments.Shipment) error {
		_, err := shipment.UpdateRequestQuantity(requestID, req.Quantity)
		return err
	})
}

// DeleteRequest removes a request from its shipment
func (s *Service) DeleteRequest(ctx context.Context, requestID uuid.UUID) (*ShipmentResponse, error) {
	return s.mutateRequest(ctx, requestID, func(shipment *shipments.Shipment) error {
		return shipment.RemoveRequest(requestID)
	})
}

// Delete removes a shipment. Only allowed while PLANNING.
func (s *Service) Delete(ctx context.Context, shipmentID uuid.UUID) error {
	return s.tx.InTransaction(ctx, func(ctx context.Context) error {
		shipment, err := s.shipmentRepo.FindByIDForUpdate(ctx, shipmentID)
		if err != nil {
			return err
		}
		if !shipment.IsPlanning() {
			return shared.ErrInvalidState
		}
		return s.shipmentRepo.Delete(ctx, shipmentID)
	})
}

// UpdateStatus drives the shipment lifecycle. PLANNING to ORDERED spawns the
// pre-order sales orders; ORDERED to RECEIVED books the stock in. Any other
// requested transition leaves the shipment unchanged.
func (s *Service) UpdateStatus(ctx context.Context, shipmentID uuid.UUID, req UpdateStatusRequest) (*ShipmentResponse, error) {
	target := shipments.ShipmentStatus(req.Status)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown shipment status")
	}

	var shipment *shipments.Shipment
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		shipment, err = s.shipmentRepo.FindByIDForUpdate(ctx, shipmentID)
		if err != nil {
			return err
		}
		if !shipment.Status.CanTransitionTo(target) {
			// Not an error; the shipment is simply left as it is
			return nil
		}
		switch target {
		case shipments.StatusOrdered:
			return s.markOrdered(ctx, shipment)
		case shipments.StatusReceived:
			return s.markReceived(ctx, shipment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	response := ToShipmentResponse(shipment)
	return &response, nil
}

// Get retrieves a shipment with its requests
func (s *Service) Get(ctx context.Context, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	response := ToShipmentResponse(shipment)
	return &response, nil
}

// List retrieves shipments newest first
func (s *Service) List(ctx context.Context) ([]ShipmentResponse, error) {
	list, err := s.shipmentRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToShipmentResponses(list), nil
}

// Invoice builds the aggregated order sheet for a shipment
func (s *Service) Invoice(ctx context.Context, shipmentID uuid.UUID) (*shipments.Invoice, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	invoice := shipments.BuildInvoice(shipment)
	return &invoice, nil
}

// markOrdered moves the shipment to ORDERED and spawns one PRE_ORDER sales
// order per customer, linking every request to the order that will fulfill it
func (s *Service) markOrdered(ctx context.Context, shipment *shipments.Shipment) error {
	names, groups := shipment.CustomerGroups()
	for _, name := range names {
		group := groups[name]
		lines := make([]orders.LineInput, 0, len(group))
		for _, request := range group {
			lines = append(lines, orders.LineInput{ProductID: request.ProductID, Quantity: request.Quantity})
		}

		order, err := orders.NewOrder(name, orders.SourcePreOrder, lines)
		if err != nil {
			return err
		}
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return err
		}
		for _, request := range group {
			if err := request.LinkOrder(order.ID); err != nil {
				return err
			}
		}
	}

	if err := shipment.MarkOrdered(); err != nil {
		return err
	}
	return s.shipmentRepo.Save(ctx, shipment)
}

// markReceived books the shipment's stock in and promotes the linked
// pre-order sales orders to READY_TO_SHIP. Linked orders no longer awaiting
// stock keep their state and their share stays in the available pool.
func (s *Service) markReceived(ctx context.Context, shipment *shipments.Shipment) error {
	promotable, err := s.lockPromotableOrders(ctx, shipment)
	if err != nil {
		return err
	}

	products, err := s.lockRequestProducts(ctx, shipment)
	if err != nil {
		return err
	}

	for i := range shipment.Requests {
		request := &shipment.Requests[i]
		product := products[request.ProductID]
		if err := product.Release(request.Quantity); err != nil {
			return err
		}
		if request.FulfillingOrderID != nil {
			if _, ok := promotable[*request.FulfillingOrderID]; ok {
				if err := product.Reserve(request.Quantity); err != nil {
					return err
				}
			}
		}
	}
	for _, product := range products {
		if err := s.productRepo.Save(ctx, product); err != nil {
			return err
		}
	}

	for _, order := range promotable {
		if err := order.TransitionTo(orders.StatusReadyToShip); err != nil {
			return err
		}
		if err := s.orderRepo.Save(ctx, order); err != nil {
			return err
		}
	}

	if err := shipment.MarkReceived(); err != nil {
		return err
	}
	return s.shipmentRepo.Save(ctx, shipment)
}

// lockPromotableOrders loads the distinct linked orders under row locks and
// keeps the ones still awaiting stock. Orders cancelled or otherwise moved on
// since the shipment was placed are logged and skipped.
func (s *Service) lockPromotableOrders(ctx context.Context, shipment *shipments.Shipment) (map[uuid.UUID]*orders.Order, error) {
	ids := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]bool)
	for i := range shipment.Requests {
		linked := shipment.Requests[i].FulfillingOrderID
		if linked == nil || seen[*linked] {
			continue
		}
		seen[*linked] = true
		ids = append(ids, *linked)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	promotable := make(map[uuid.UUID]*orders.Order, len(ids))
	for _, id := range ids {
		order, err := s.orderRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if order.Status != orders.StatusAwaitingStock {
			s.logger.Info("linked order not awaiting stock, skipping promotion",
				zap.String("order_id", id.String()),
				zap.String("status", order.Status.String()),
				zap.String("shipment_id", shipment.ID.String()))
			continue
		}
		promotable[id] = order
	}
	return promotable, nil
}

// lockRequestProducts loads the distinct products referenced by the
// shipment's requests under row locks, in ascending ID order
func (s *Service) lockRequestProducts(ctx context.Context, shipment *shipments.Shipment) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(shipment.Requests))
	seen := make(map[uuid.UUID]bool, len(shipment.Requests))
	for i := range shipment.Requests {
		id := shipment.Requests[i].ProductID
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

// mutate runs fn against a locked PLANNING shipment and saves the result
func (s *Service) mutate(ctx context.Context, shipmentID uuid.UUID, fn func(ctx context.Context, shipment *shipments.Shipment) error) (*ShipmentResponse, error) {
	var shipment *shipments.Shipment
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		shipment, err = s.shipmentRepo.FindByIDForUpdate(ctx, shipmentID)
		if err != nil {
			return err
		}
		if err := fn(ctx, shipment); err != nil {
			return err
		}
		return s.shipmentRepo.Save(ctx, shipment)
	})
	if err != nil {
		return nil, err
	}
	response := ToShipmentResponse(shipment)
	return &response, nil
}

// mutateRequest resolves a request to its parent shipment and applies fn to
// the locked aggregate
func (s *Service) mutateRequest(ctx context.Context, requestID uuid.UUID, fn func(shipment *shipments.Shipment) error) (*ShipmentResponse, error) {
	var shipment *shipments.Shipment
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		request, _, err := s.shipmentRepo.FindRequestByID(ctx, requestID)
		if err != nil {
			return err
		}
		shipment, err = s.shipmentRepo.FindByIDForUpdate(ctx, request.ShipmentID)
		if err != nil {
			return err
		}
		if err := fn(shipment); err != nil {
			return err
		}
		return s.shipmentRepo.Save(ctx, shipment)
	})
	if err != nil {
		return nil, err
	}
	response := ToShipmentResponse(shipment)
	return &response, nil
}

// generateName produces "Shipment - <Month D, YYYY>" with a numeric suffix
// when a shipment of that name already exists
func (s *Service) generateName(ctx context.Context) (string, error) {
	base := "Shipment - " + s.now().Format("January 2, 2006")
	name := base
	for n := 1; ; n++ {
		exists, err := s.shipmentRepo.ExistsByName(ctx, name)
		if err != nil {
			return "", err
		}
		if !exists {
			return name, nil
		}
		name = fmt.Sprintf("%s (#%d)", base, n)
	}
}
