package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fintrack/internal/auth"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/model"
	"fintrack/internal/repository"
)

const bcryptCost = 10

// TokenPair is the session material returned on successful authentication.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles registration, login and delegated-login provisioning.
type AuthService interface {
	Register(ctx context.Context, username, email, password, name string) (*model.User, error)
	Login(ctx context.Context, usernameOrEmail, password string, remember bool) (*TokenPair, *model.User, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	// LoginWithIdentity signs in a delegated identity, provisioning a local
	// user on first contact exactly as registration would.
	LoginWithIdentity(ctx context.Context, identity *auth.ExternalIdentity) (*TokenPair, *model.User, error)
}

type authService struct {
	userRepo     repository.UserRepository
	profiles     ProfileService
	jwtService   *auth.JWTService
	sessionStore auth.SessionStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, profiles ProfileService, jwtService *auth.JWTService, sessionStore auth.SessionStoreInterface) AuthService {
	return &authService{
		userRepo:     userRepo,
		profiles:     profiles,
		jwtService:   jwtService,
		sessionStore: sessionStore,
	}
}

// Register creates a new local user with a hashed password and provisions the
// profile synchronously.
func (s *authService) Register(ctx context.Context, username, email, password, name string) (*model.User, error) {
	ve := &apperrors.ValidationError{}
	if taken, err := s.usernameTaken(ctx, username); err != nil {
		return nil, err
	} else if taken {
		ve.Add("username", "username is already taken")
	}
	if taken, err := s.emailTaken(ctx, email); err != nil {
		return nil, err
	} else if taken {
		ve.Add("email", "email is already registered")
	}
	if ve.HasErrors() {
		return nil, ve
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Every user gets exactly one profile, created here and now.
	if err := s.profiles.OnUserCreated(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates by username or email and opens a session. With remember
// set the session lives 30 days instead of one.
func (s *authService) Login(ctx context.Context, usernameOrEmail, password string, remember bool) (*TokenPair, *model.User, error) {
	user, err := s.findByLogin(ctx, usernameOrEmail)
	if err != nil {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.openSession(ctx, user, remember)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh validates a refresh token against the live session and returns a new
// access token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return "", apperrors.ErrInvalidSession
	}

	storedUserID, storedUsername, err := s.sessionStore.GetSession(ctx, claims.ID)
	if err != nil {
		return "", apperrors.ErrInvalidSession
	}
	if storedUserID != claims.UserID || storedUsername != claims.Username {
		return "", apperrors.ErrInvalidSession
	}

	accessToken, err := s.jwtService.GenerateAccessToken(claims.UserID, claims.Username, claims.Role)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout closes the session and blacklists the presented access token for the
// rest of its lifetime.
func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	refreshID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidSession
	}
	if err := s.sessionStore.DeleteSession(ctx, refreshID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if claims, err := s.jwtService.ValidateToken(accessToken); err == nil && claims.ID != "" {
		if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
			_ = s.sessionStore.BlacklistAccessToken(ctx, claims.ID, ttl)
		}
	}
	return nil
}

// LoginWithIdentity resolves a delegated identity to a local user, creating
// one on first contact, then opens a session like Login does.
func (s *authService) LoginWithIdentity(ctx context.Context, identity *auth.ExternalIdentity) (*TokenPair, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, identity.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("find user: %w", err)
		}
		user, err = s.provision(ctx, identity)
		if err != nil {
			return nil, nil, err
		}
	}

	pair, err := s.openSession(ctx, user, false)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// provision creates a local user for a previously-unseen external identity,
// mirroring Register: random credential, profile created synchronously.
func (s *authService) provision(ctx context.Context, identity *auth.ExternalIdentity) (*model.User, error) {
	username := identity.Username
	if taken, err := s.usernameTaken(ctx, username); err != nil {
		return nil, err
	} else if taken {
		username = fmt.Sprintf("%s-%s", username, uuid.New().String()[:8])
	}

	// Delegated accounts never log in with a password; store an unguessable one.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        identity.Email,
		PasswordHash: string(hashedPassword),
		Name:         identity.Name,
		Role:         model.RoleUser,
		Provider:     identity.Provider,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}

	if err := s.profiles.OnUserCreated(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) openSession(ctx context.Context, user *model.User, remember bool) (*TokenPair, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	ttl := auth.SessionExpiry
	if remember {
		ttl = auth.RememberMeExpiry
	}
	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Username, user.Role, ttl)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.sessionStore.StoreSession(ctx, tokenID, user.ID, user.Username, ttl); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *authService) findByLogin(ctx context.Context, usernameOrEmail string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, usernameOrEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.userRepo.FindByEmail(ctx, usernameOrEmail)
}

func (s *authService) usernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("check username: %w", err)
}

func (s *authService) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("check email: %w", err)
}
