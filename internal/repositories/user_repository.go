package repositories

import "grocery/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	UpdateProfile(user *models.User) error
	List(role models.Role) ([]models.User, error)
	SetActive(id string, active bool) error
	Count() (int64, error)
}
