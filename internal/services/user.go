package services

import (
	"context"
	"time"

	"github.com/curriculo/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context, offset, limit int) ([]types.User, int, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateProfile(ctx context.Context, user types.User) error
	SetAddress(ctx context.Context, userID, addressID int) error
	SetPhotoKey(ctx context.Context, userID int, key string) error
	UpdateLastLogin(ctx context.Context, userID int, at time.Time) error
	SetHiddenFields(ctx context.Context, userID int, fields []string) error
	SoftDelete(ctx context.Context, userID int) error
}

// AddressRepository defines persistence operations for addresses.
type AddressRepository interface {
	GetByID(ctx context.Context, id int) (types.Address, error)
	Create(ctx context.Context, address types.Address) (types.Address, error)
	Update(ctx context.Context, address types.Address) error
	SoftDelete(ctx context.Context, id int) error
}

// UserService encapsulates user and address use-cases.
type UserService struct {
	users     UserRepository
	addresses AddressRepository
}

func NewUserService(users UserRepository, addresses AddressRepository) *UserService {
	return &UserService{users: users, addresses: addresses}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	return s.loadAddress(ctx, user)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return types.User{}, err
	}
	return s.loadAddress(ctx, user)
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	users, total, err := s.users.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i], err = s.loadAddress(ctx, users[i])
		if err != nil {
			return nil, 0, err
		}
	}
	return users, total, nil
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.users.Create(ctx, user)
}

func (s *UserService) UpdateProfile(ctx context.Context, user types.User) error {
	return s.users.UpdateProfile(ctx, user)
}

// UpsertAddress creates the user's address on first registration and
// updates it afterwards.
func (s *UserService) UpsertAddress(ctx context.Context, user types.User, address types.Address) (types.Address, error) {
	if user.AddressID == nil {
		created, err := s.addresses.Create(ctx, address)
		if err != nil {
			return types.Address{}, err
		}
		if err := s.users.SetAddress(ctx, user.ID, created.ID); err != nil {
			return types.Address{}, err
		}
		return created, nil
	}

	address.ID = *user.AddressID
	if err := s.addresses.Update(ctx, address); err != nil {
		return types.Address{}, err
	}
	return address, nil
}

func (s *UserService) SetPhotoKey(ctx context.Context, userID int, key string) error {
	return s.users.SetPhotoKey(ctx, userID, key)
}

func (s *UserService) UpdateLastLogin(ctx context.Context, userID int, at time.Time) error {
	return s.users.UpdateLastLogin(ctx, userID, at)
}

// ToggleHiddenFields flips each named field in the user's hidden set and
// returns the resulting set.
func (s *UserService) ToggleHiddenFields(ctx context.Context, user types.User, fields []string) ([]string, error) {
	hidden := append([]string(nil), user.HiddenFields...)
	for _, field := range fields {
		index := -1
		for i, existing := range hidden {
			if existing == field {
				index = i
				break
			}
		}
		if index >= 0 {
			hidden = append(hidden[:index], hidden[index+1:]...)
		} else {
			hidden = append(hidden, field)
		}
	}
	if err := s.users.SetHiddenFields(ctx, user.ID, hidden); err != nil {
		return nil, err
	}
	return hidden, nil
}

// Delete soft-deletes the user and their address.
func (s *UserService) Delete(ctx context.Context, user types.User) error {
	if err := s.users.SoftDelete(ctx, user.ID); err != nil {
		return err
	}
	if user.AddressID != nil {
		return s.addresses.SoftDelete(ctx, *user.AddressID)
	}
	return nil
}

func (s *UserService) loadAddress(ctx context.Context, user types.User) (types.User, error) {
	if user.AddressID == nil {
		return user, nil
	}
	address, err := s.addresses.GetByID(ctx, *user.AddressID)
	if err != nil {
		// A soft-deleted address leaves the profile address-less.
		return user, nil
	}
	user.Address = &address
	return user, nil
}
