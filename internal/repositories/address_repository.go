package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"grocery/internal/models"
)

// AddressRepository defines the interface for consumer address data access.
// Every method is scoped to the owning consumer.
type AddressRepository interface {
	Create(addr *models.Address) error
	ListByConsumer(consumerID string) ([]models.Address, error)
	Delete(id, consumerID string) error
	SetDefault(id, consumerID string) error
}

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{db: db}
}

// Create stores addr. A default address clears the flag on the consumer's
// other addresses in the same transaction.
func (r *GORMAddressRepository) Create(addr *models.Address) error {
	if addr.ID == "" {
		addr.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if addr.IsDefault {
			if err := clearDefault(tx, addr.ConsumerID); err != nil {
				return err
			}
		}
		if err := tx.Create(addr).Error; err != nil {
			return createErr(err, "address")
		}
		return nil
	})
}

// ListByConsumer returns the default address first, then newest first.
func (r *GORMAddressRepository) ListByConsumer(consumerID string) ([]models.Address, error) {
	var addrs []models.Address
	err := r.db.Where("consumer_id = ?", consumerID).
		Order("is_default DESC").Order("created_at DESC").
		Find(&addrs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addrs, nil
}

// Delete removes an address of the consumer.
func (r *GORMAddressRepository) Delete(id, consumerID string) error {
	res := r.db.Where("id = ? AND consumer_id = ?", id, consumerID).Delete(&models.Address{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("address with ID %s %w", id, ErrNotFound)
	}
	return nil
}

// SetDefault makes id the consumer's only default address.
func (r *GORMAddressRepository) SetDefault(id, consumerID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var addr models.Address
		if err := tx.First(&addr, "id = ? AND consumer_id = ?", id, consumerID).Error; err != nil {
			return notFound(err, "address", id)
		}
		if err := clearDefault(tx, consumerID); err != nil {
			return err
		}
		if err := tx.Model(&addr).Update("is_default", true).Error; err != nil {
			return fmt.Errorf("failed to set default address: %w", err)
		}
		return nil
	})
}

func clearDefault(tx *gorm.DB, consumerID string) error {
	err := tx.Model(&models.Address{}).
		Where("consumer_id = ? AND is_default = ?", consumerID, true).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}
