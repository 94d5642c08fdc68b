package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "dolfin/internal/errors"
	"dolfin/internal/models"
	"dolfin/internal/provider"
)

// userService handles user-related store operations.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser registers a new local user. The provider account id starts
// null; linking happens later through the LinkServicer.
func (s *userService) CreateUser(email, mobile, firstName, middleName, lastName, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:        strings.ToLower(email),
		Mobile:       mobile,
		FirstName:    firstName,
		MiddleName:   middleName,
		LastName:     lastName,
		PasswordHash: string(hashedPassword),
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

// GetUserProfile returns the attribute subset needed for provider
// registration.
func (s *userService) GetUserProfile(id uint) (*provider.Profile, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	return &provider.Profile{
		Email:      user.Email,
		Mobile:     user.Mobile,
		FirstName:  user.FirstName,
		MiddleName: user.MiddleName,
		LastName:   user.LastName,
	}, nil
}

// SetProviderAccountID records the provider-assigned account id for a user.
// Zero rows affected means the user does not exist, which is distinct from
// a write failure.
func (s *userService) SetProviderAccountID(id uint, providerAccountID string) error {
	result := s.db.Model(&models.User{}).Where("id = ?", id).
		Update("provider_account_id", providerAccountID)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetProviderAccountID returns the linked provider account id. A user with
// a null field yields NOT_FOUND, never a storage error; callers requiring a
// link translate that to NOT_LINKED.
func (s *userService) GetProviderAccountID(id uint) (string, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return "", err
	}
	if user.ProviderAccountID == nil || *user.ProviderAccountID == "" {
		return "", apperrors.ErrNotFound
	}
	return *user.ProviderAccountID, nil
}

// DeleteUser removes a user. Owned transactions go with it through the
// foreign-key cascade.
func (s *userService) DeleteUser(id uint) error {
	result := s.db.Delete(&models.User{}, id)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
