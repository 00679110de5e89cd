package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"grocery/internal/events"
	"grocery/internal/models"
	"grocery/internal/repositories"
)

const invoiceNumberAttempts = 3

// InvoiceView is an invoice together with its order.
type InvoiceView struct {
	Invoice *models.Invoice `json:"invoice"`
	Order   *models.Order   `json:"order"`
}

// InvoiceService issues invoices for finished orders.
type InvoiceService struct {
	invoiceRepo repositories.InvoiceRepository
	orderRepo   repositories.OrderRepository
	now         func() time.Time
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(invoiceRepo repositories.InvoiceRepository, orderRepo repositories.OrderRepository) *InvoiceService {
	return &InvoiceService{invoiceRepo: invoiceRepo, orderRepo: orderRepo, now: time.Now}
}

// InvoiceNumber formats INV-<unix-millis>-<0..999>.
func InvoiceNumber(at time.Time) string {
	return fmt.Sprintf("INV-%d-%d", at.UnixMilli(), rand.Intn(1000))
}

// HandleOrderEvent issues the invoice once an order is completed or delivered.
func (s *InvoiceService) HandleOrderEvent(_ context.Context, evt events.Event) error {
	if !evt.Status.Finished() {
		return nil
	}
	inv, err := s.Issue(evt.OrderID)
	if err != nil {
		return err
	}
	log.Info().Str("order_id", evt.OrderID).Str("invoice_number", inv.InvoiceNumber).Msg("invoice issued")
	return nil
}

// Issue returns the order's invoice, creating it on first call.
func (s *InvoiceService) Issue(orderID string) (*models.Invoice, error) {
	if inv, err := s.invoiceRepo.GetByOrderID(orderID); err == nil {
		return inv, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < invoiceNumberAttempts; attempt++ {
		now := s.now()
		inv := &models.Invoice{OrderID: orderID, InvoiceNumber: InvoiceNumber(now), IssuedAt: now}
		err := s.invoiceRepo.Create(inv)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return nil, err
		}
		// Either another consumer issued it first or the number collided.
		if existing, getErr := s.invoiceRepo.GetByOrderID(orderID); getErr == nil {
			return existing, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to issue invoice for order %s: %w", orderID, lastErr)
}

// GetInvoice returns the invoice of an order the caller may see.
func (s *InvoiceService) GetInvoice(user *models.User, orderID string) (*InvoiceView, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !canViewOrder(user, order) {
		return nil, fmt.Errorf("%w: you cannot view this invoice", ErrForbidden)
	}
	inv, err := s.invoiceRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	return &InvoiceView{Invoice: inv, Order: order}, nil
}
