package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/CodeCraftStudio/auth_service/internal/auth"
	"github.com/CodeCraftStudio/auth_service/internal/domain"
	"github.com/CodeCraftStudio/auth_service/internal/dto"
	"github.com/CodeCraftStudio/auth_service/internal/helper"
	"github.com/CodeCraftStudio/auth_service/internal/helper/utils"
	"github.com/CodeCraftStudio/auth_service/internal/interfaces"
	"github.com/CodeCraftStudio/auth_service/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterRequest) (string, error)
	Login(ctx context.Context, kind domain.IdentifierKind, identifier, password string) (*domain.User, error)
	ResolveGoogleIdentity(ctx context.Context, identity auth.Identity) (*domain.User, domain.LinkOutcome, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, userID string, imageURL string) error
}

type authService struct {
	repo     repository.UserRepository
	auth     helper.Auth
	producer interfaces.ProducerHandler
}

func NewAuthService(
	repo repository.UserRepository,
	producer interfaces.ProducerHandler,
	authHelper helper.Auth,
) AuthService {
	return &authService{
		repo:     repo,
		auth:     authHelper,
		producer: producer,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterRequest) (string, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	phone := strings.TrimSpace(input.Phone)
	password := input.Password

	provider := domain.Provider(strings.TrimSpace(strings.ToLower(input.Provider)))
	if provider == "" {
		provider = domain.ProviderEmail
	}

	if name == "" || password == "" {
		return "", fmt.Errorf("%w: name and password are required", domain.ErrValidation)
	}
	if len(password) < 8 {
		return "", fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}

	switch provider {
	case domain.ProviderEmail:
		if email == "" {
			return "", fmt.Errorf("%w: email is required", domain.ErrValidation)
		}
	case domain.ProviderPhone:
		if phone == "" {
			return "", fmt.Errorf("%w: phone is required", domain.ErrValidation)
		}
	default:
		return "", fmt.Errorf("%w: invalid provider", domain.ErrValidation)
	}

	if email != "" && !utils.IsValidEmail(email) {
		return "", fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if phone != "" && !utils.IsValidPhone(phone) {
		return "", fmt.Errorf("%w: phone must be 10 digits", domain.ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: hash password", domain.ErrUnavailable)
	}

	newUser := &domain.User{
		Name:         name,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleUser,
		Provider:     provider,
	}
	if email != "" {
		newUser.Email = &email
	}
	if phone != "" {
		newUser.Phone = &phone
	}

	// Uniqueness of email/phone is the DB's job. Two racing registrations
	// both reach CreateUser and exactly one wins; the loser sees ErrConflict
	// from the unique index, never a second account.
	usr, err := s.repo.CreateUser(ctx, newUser)
	if err != nil {
		return "", err
	}

	s.publishUserRegistered(usr)

	return usr.ID, nil
}

// Login resolves a credential attempt to exactly one account. Any failure
// short of a storage outage collapses to ErrInvalidCredentials so callers
// cannot probe which identifiers exist.
func (s *authService) Login(ctx context.Context, kind domain.IdentifierKind, identifier, password string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if kind == domain.IdentifierEmail {
		identifier = strings.ToLower(identifier)
	}

	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	var (
		user *domain.User
		err  error
	)
	switch kind {
	case domain.IdentifierEmail:
		user, err = s.repo.FindUserByEmail(ctx, identifier)
	case domain.IdentifierPhone:
		user, err = s.repo.FindUserByPhone(ctx, identifier)
	default:
		return nil, domain.ErrInvalidCredentials
	}

	if err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			return nil, err
		}
		log.Printf("login: no account for %s identifier", kind)
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.auth.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Printf("login: password mismatch for user %s", user.ID)
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

// ResolveGoogleIdentity reconciles a verified Google assertion with the
// local account space. Email is the unifying key across authentication
// methods: an account registered with a password and later signed in via
// Google with the same email is linked, never duplicated.
func (s *authService) ResolveGoogleIdentity(ctx context.Context, identity auth.Identity) (*domain.User, domain.LinkOutcome, error) {
	email := strings.TrimSpace(strings.ToLower(identity.Email))
	if email == "" || identity.Subject == "" {
		return nil, "", fmt.Errorf("%w: assertion missing email or subject", domain.ErrValidation)
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			return nil, "", err
		}

		created, createErr := s.createGoogleUser(ctx, email, identity)
		if createErr == nil {
			s.publishUserRegistered(created)
			return created, domain.OutcomeCreated, nil
		}
		if !errors.Is(createErr, domain.ErrConflict) {
			return nil, "", createErr
		}

		// Lost the creation race to a concurrent sign-in with the same
		// email: converge on the row that won.
		user, err = s.repo.FindUserByEmail(ctx, email)
		if err != nil {
			return nil, "", fmt.Errorf("%w: resolve after conflict", domain.ErrUnavailable)
		}
	}

	if user.ProviderID != nil && *user.ProviderID != "" {
		return user, domain.OutcomeAlreadyLinked, nil
	}

	// Backfill provider_id only. Role, password hash, and profile fields
	// stay exactly as registration left them.
	if err := s.repo.SetProviderID(ctx, user.ID, identity.Subject); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Same subject already linked elsewhere; treat the row we
			// resolved as authoritative without mutating it.
			return user, domain.OutcomeAlreadyLinked, nil
		}
		return nil, "", err
	}

	sub := identity.Subject
	user.ProviderID = &sub
	return user, domain.OutcomeLinked, nil
}

func (s *authService) createGoogleUser(ctx context.Context, email string, identity auth.Identity) (*domain.User, error) {
	// Accounts created here get a random hashed secret so the password
	// hash invariant holds uniformly. Credential login stays unusable for
	// them until a password reset flow exists out of band.
	secret, err := utils.RandomSecret(32)
	if err != nil {
		return nil, fmt.Errorf("%w: generate secret", domain.ErrUnavailable)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash secret", domain.ErrUnavailable)
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = email
	}
	sub := identity.Subject

	newUser := &domain.User{
		Name:         name,
		Email:        &email,
		PasswordHash: string(hashed),
		Role:         domain.RoleUser,
		Provider:     domain.ProviderGoogle,
		ProviderID:   &sub,
		Image:        identity.Image,
	}

	return s.repo.CreateUser(ctx, newUser)
}

func (s *authService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.FindUserByID(ctx, userID)
}

func (s *authService) UpdateAvatar(ctx context.Context, userID string, imageURL string) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	if strings.TrimSpace(imageURL) == "" {
		return fmt.Errorf("%w: image url is required", domain.ErrValidation)
	}
	return s.repo.UpdateImage(ctx, userID, imageURL)
}

// publish event (optional)
func (s *authService) publishUserRegistered(usr *domain.User) {
	if s.producer == nil {
		return
	}

	email := ""
	if usr.Email != nil {
		email = *usr.Email
	}
	payload := fmt.Sprintf(
		`{"user_id":"%s","name":"%s","email":"%s","provider":"%s","registered_at":"%s"}`,
		usr.ID, usr.Name, email, usr.Provider, time.Now().Format(time.RFC3339),
	)
	if err := s.producer.PublishMessage([]byte("user.registered"), []byte(payload)); err != nil {
		log.Printf("publish user.registered failed: %v", err)
	}
}
