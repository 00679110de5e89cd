package services

import (
	"fmt"
	"strings"

	"grocery/internal/models"
	"grocery/internal/repositories"
)

// UserService covers the caller's own profile and addresses, and the
// administrator's user management.
type UserService struct {
	userRepo    repositories.UserRepository
	addressRepo repositories.AddressRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, addressRepo repositories.AddressRepository) *UserService {
	return &UserService{userRepo: userRepo, addressRepo: addressRepo}
}

// GetProfile returns the user with the given ID.
func (s *UserService) GetProfile(userID string) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile changes the name and phone number of a user.
func (s *UserService) UpdateProfile(userID, fullName, phone string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	user.FullName = strings.TrimSpace(fullName)
	user.Phone = strings.TrimSpace(phone)
	if err := s.userRepo.UpdateProfile(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListAddresses returns the consumer's addresses, default first.
func (s *UserService) ListAddresses(consumerID string) ([]models.Address, error) {
	return s.addressRepo.ListByConsumer(consumerID)
}

// AddAddress saves a new address for the consumer.
func (s *UserService) AddAddress(consumerID string, addr *models.Address) error {
	if strings.TrimSpace(addr.Address) == "" {
		return fmt.Errorf("%w: address is required", ErrValidation)
	}
	addr.ID = ""
	addr.ConsumerID = consumerID
	return s.addressRepo.Create(addr)
}

// DeleteAddress removes one of the consumer's addresses.
func (s *UserService) DeleteAddress(consumerID, addressID string) error {
	return s.addressRepo.Delete(addressID, consumerID)
}

// SetDefaultAddress marks one of the consumer's addresses as default.
func (s *UserService) SetDefaultAddress(consumerID, addressID string) error {
	return s.addressRepo.SetDefault(addressID, consumerID)
}

// ListUsers returns every user, or only those of role when set.
func (s *UserService) ListUsers(role models.Role) ([]models.User, error) {
	if role != "" && !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	return s.userRepo.List(role)
}

// ToggleActive flips a user's active flag. Administrators cannot change
// their own account.
func (s *UserService) ToggleActive(adminID, userID string) (*models.User, error) {
	if adminID == userID {
		return nil, fmt.Errorf("%w: you cannot deactivate your own account", ErrValidation)
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	user.IsActive = !user.IsActive
	if err := s.userRepo.SetActive(user.ID, user.IsActive); err != nil {
		return nil, err
	}
	return user, nil
}

// ListDeliveryPartners returns the active delivery partners.
func (s *UserService) ListDeliveryPartners() ([]models.User, error) {
	users, err := s.userRepo.List(models.RoleDeliveryPartner)
	if err != nil {
		return nil, err
	}
	active := users[:0]
	for _, u := range users {
		if u.IsActive {
			active = append(active, u)
		}
	}
	return active, nil
}
