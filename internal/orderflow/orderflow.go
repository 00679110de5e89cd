// Package orderflow holds the order status progression table.
package orderflow

import "grocery/internal/models"

var forward = map[models.OrderStatus]models.OrderStatus{
	models.StatusPending:   models.StatusConfirmed,
	models.StatusConfirmed: models.StatusPreparing,
	models.StatusPreparing: models.StatusReady,
}

// Next returns the status that follows current for an order of type t.
// Terminal statuses have no next status.
func Next(current models.OrderStatus, t models.OrderType) (models.OrderStatus, bool) {
	if next, ok := forward[current]; ok {
		return next, true
	}
	switch current {
	case models.StatusReady:
		if t == models.OrderDelivery {
			return models.StatusOutForDelivery, true
		}
		return models.StatusCompleted, true
	case models.StatusOutForDelivery:
		return models.StatusDelivered, true
	}
	return "", false
}

// CanCancel reports whether an order in status s may still be cancelled.
func CanCancel(s models.OrderStatus) bool {
	return s == models.StatusPending
}

// CanTransition reports whether a shop owner may move an order of type t
// from one status to another. Delivery orders leave "ready" only through
// delivery partner assignment, and only the partner marks them delivered.
func CanTransition(from, to models.OrderStatus, t models.OrderType) bool {
	if to == models.StatusCancelled {
		return CanCancel(from)
	}
	if t == models.OrderDelivery && (from == models.StatusReady || from == models.StatusOutForDelivery) {
		return false
	}
	next, ok := Next(from, t)
	return ok && next == to
}

// Valid reports whether s is a known order status.
func Valid(s models.OrderStatus) bool {
	switch s {
	case models.StatusPending, models.StatusConfirmed, models.StatusPreparing, models.StatusReady,
		models.StatusOutForDelivery, models.StatusDelivered, models.StatusCompleted, models.StatusCancelled:
		return true
	}
	return false
}
