package services

import (
	"errors"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/app/repositories"
	"github.com/allinbuy/api/pkg/auth"
	"github.com/allinbuy/api/pkg/database"
	"gorm.io/gorm"
)

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Name     string
	LastName string
	Email    string
	Password string
	Phone    string
	Address  string
}

// AuthService handles registration, login, and profile access.
type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates a new customer account with a bcrypt-hashed password.
func (s *AuthService) Register(in RegisterInput) (models.User, error) {
	taken, err := s.users.EmailExists(in.Email)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, ErrEmailTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Name:     in.Name,
		LastName: in.LastName,
		Email:    in.Email,
		Password: hash,
		Phone:    in.Phone,
		Address:  in.Address,
		Role:     "cliente",
		Active:   true,
	}
	if err := s.users.Create(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Login verifies credentials and issues a token pair.
// Unknown email and wrong password both map to ErrInvalidCredentials so
// the response does not reveal which accounts exist.
func (s *AuthService) Login(email, password string) (models.User, TokenPair, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return models.User{}, TokenPair{}, err
	}

	if !user.Active || !auth.CheckPassword(user.Password, password) {
		return models.User{}, TokenPair{}, ErrInvalidCredentials
	}

	access, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}

	return user, TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Profile returns the user together with basic order statistics.
func (s *AuthService) Profile(userID uint, orders *repositories.OrderRepository) (models.User, map[string]interface{}, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, nil, ErrUserNotFound
		}
		return models.User{}, nil, err
	}

	recent, pg, err := orders.List(repositories.OrderFilter{UserID: userID, Limit: 5})
	if err != nil {
		return models.User{}, nil, err
	}

	stats := map[string]interface{}{
		"pedidos":           pg.Total,
		"pedidos_recientes": recent,
	}
	return user, stats, nil
}

// List returns users for the admin panel.
func (s *AuthService) List(page, limit int) ([]models.User, database.Pagination, error) {
	return s.users.List(page, limit)
}

// Deactivate disables an account. Login is refused afterwards; existing
// orders are untouched.
func (s *AuthService) Deactivate(id uint) error {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	user.Active = false
	return s.users.Update(&user)
}
