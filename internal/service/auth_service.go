package service

import (
	"errors"

	"campuspay/config"
	"campuspay/internal/auth"
	"campuspay/internal/domain"
	"campuspay/internal/models"
	"campuspay/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidCreds = errors.New("invalid email or password")
	ErrInvalidRole  = errors.New("invalid role")
)

type AuthService struct {
	cfg        *config.Config
	userRepo   *repository.UserRepository
	walletRepo *repository.WalletRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository, walletRepo *repository.WalletRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, walletRepo: walletRepo}
}

// RegisterInput carries the signup form.
type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Role       string
	StaffID    string
	Department string
}

// Register creates the user plus their empty wallet and returns a token pair.
// Admin accounts are seeded, never self-registered.
func (s *AuthService) Register(in RegisterInput) (*models.User, string, string, error) {
	switch in.Role {
	case domain.RoleStudent, domain.RoleLecturer, domain.RolePartner:
	default:
		return nil, "", "", ErrInvalidRole
	}
	_, err := s.userRepo.GetByEmail(in.Email)
	if err == nil {
		return nil, "", "", ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		Role:         in.Role,
		StaffID:      in.StaffID,
		Department:   in.Department,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	if _, err := s.walletRepo.GetOrCreate(u.ID); err != nil {
		return u, "", "", err
	}
	return s.issueTokens(u)
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCreds
	}
	return s.issueTokens(u)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(refreshToken string) (*models.User, string, string, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	return s.issueTokens(u)
}

func (s *AuthService) issueTokens(u *models.User) (*models.User, string, string, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return u, access, "", err
	}
	return u, access, refresh, nil
}
