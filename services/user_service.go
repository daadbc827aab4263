package services

import (
	"errors"

	"gorm.io/gorm"

	"agrisense-http-service/config"
	"agrisense-http-service/models"
	"agrisense-http-service/utils"
)

// ErrInvalidCredentials is returned on a failed login
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserServiceInterface handles accounts and authentication
type UserServiceInterface interface {
	Authenticate(username, password string) (*models.User, error)
	Register(user *models.User, password string) error
	GetUserByID(id uint) (*models.User, error)
	EnsureDefaultAdmin() error
}

// UserService implements UserServiceInterface
type UserService struct {
	db     *gorm.DB
	config *config.Config
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, cfg *config.Config) *UserService {
	return &UserService{db: db, config: cfg}
}

// Authenticate checks a username/password pair
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Register creates a new account with a hashed password
func (s *UserService) Register(user *models.User, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	user.Password = hash
	if user.Role == "" {
		user.Role = "farmer"
	}
	return s.db.Create(user).Error
}

// GetUserByID fetches one account
func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureDefaultAdmin seeds the admin account on first boot
func (s *UserService) EnsureDefaultAdmin() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(s.config.DefaultAdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Password: hash,
		Role:     "admin",
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}
	config.Info("Seeded default admin account")
	return nil
}
