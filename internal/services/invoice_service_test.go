package services_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grocery/internal/events"
	"grocery/internal/models"
	"grocery/internal/repositories"
	"grocery/internal/services"
)

func TestInvoiceNumber(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Regexp(t, regexp.MustCompile(`^INV-1700000000123-\d{1,3}$`), services.InvoiceNumber(at))
}

func TestHandleOrderEvent_IgnoresUnfinishedOrders(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	svc := services.NewInvoiceService(invoices, new(MockOrderRepository))

	err := svc.HandleOrderEvent(context.Background(), events.Event{Type: events.OrderStatusChanged, OrderID: "o1", Status: models.StatusReady})
	require.NoError(t, err)
	invoices.AssertNotCalled(t, "GetByOrderID", mock.Anything)
}

func TestHandleOrderEvent_IssuesOnce(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	svc := services.NewInvoiceService(invoices, new(MockOrderRepository))

	invoices.On("GetByOrderID", "o1").Return(nil, notFound()).Once()
	invoices.On("Create", mock.MatchedBy(func(inv *models.Invoice) bool {
		return inv.OrderID == "o1" && inv.InvoiceNumber != ""
	})).Return(nil).Once()

	err := svc.HandleOrderEvent(context.Background(), events.Event{OrderID: "o1", Status: models.StatusDelivered})
	require.NoError(t, err)

	existing := &models.Invoice{ID: "inv-1", OrderID: "o1", InvoiceNumber: "INV-1-1"}
	invoices.On("GetByOrderID", "o1").Return(existing, nil).Once()
	err = svc.HandleOrderEvent(context.Background(), events.Event{OrderID: "o1", Status: models.StatusCompleted})
	require.NoError(t, err)

	invoices.AssertNumberOfCalls(t, "Create", 1)
}

func TestIssue_ConcurrentIssuerWins(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	svc := services.NewInvoiceService(invoices, new(MockOrderRepository))

	winner := &models.Invoice{ID: "inv-1", OrderID: "o1", InvoiceNumber: "INV-1-1"}
	invoices.On("GetByOrderID", "o1").Return(nil, notFound()).Once()
	invoices.On("Create", mock.Anything).Return(repositories.ErrDuplicate).Once()
	invoices.On("GetByOrderID", "o1").Return(winner, nil).Once()

	inv, err := svc.Issue("o1")
	require.NoError(t, err)
	assert.Equal(t, winner, inv)
}

func TestIssue_GivesUpAfterRepeatedCollisions(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	svc := services.NewInvoiceService(invoices, new(MockOrderRepository))

	invoices.On("GetByOrderID", "o1").Return(nil, notFound())
	invoices.On("Create", mock.Anything).Return(repositories.ErrDuplicate)

	_, err := svc.Issue("o1")
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
	invoices.AssertNumberOfCalls(t, "Create", 3)
}

func TestGetInvoice(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	orders := new(MockOrderRepository)
	svc := services.NewInvoiceService(invoices, orders)

	consumerID := "consumer-1"
	order := &models.Order{ID: "o1", ConsumerID: &consumerID, Shop: &models.Shop{OwnerID: "owner-1"}, Status: models.StatusCompleted}
	orders.On("GetByID", "o1").Return(order, nil)
	invoices.On("GetByOrderID", "o1").Return(&models.Invoice{OrderID: "o1", InvoiceNumber: "INV-1-1"}, nil)

	view, err := svc.GetInvoice(&models.User{ID: "owner-1", Role: models.RoleShopOwner}, "o1")
	require.NoError(t, err)
	assert.Equal(t, "INV-1-1", view.Invoice.InvoiceNumber)
	assert.Equal(t, order, view.Order)

	_, err = svc.GetInvoice(&models.User{ID: "owner-2", Role: models.RoleShopOwner}, "o1")
	assert.ErrorIs(t, err, services.ErrForbidden)
}
