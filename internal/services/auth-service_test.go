package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/CodeCraftStudio/auth_service/internal/auth"
	"github.com/CodeCraftStudio/auth_service/internal/domain"
	"github.com/CodeCraftStudio/auth_service/internal/dto"
	"github.com/CodeCraftStudio/auth_service/internal/helper"
	"github.com/CodeCraftStudio/auth_service/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepo is an in-memory stand-in for the gorm repository. It
// enforces the same uniqueness rules the Postgres indexes do, returning
// domain.ErrConflict the way the real repository maps SQLSTATE 23505.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if user.Email != nil && u.Email != nil && *u.Email == *user.Email {
			return nil, domain.ErrConflict
		}
		if user.Phone != nil && u.Phone != nil && *u.Phone == *user.Phone {
			return nil, domain.ErrConflict
		}
		if user.ProviderID != nil && u.ProviderID != nil && *u.ProviderID == *user.ProviderID {
			return nil, domain.ErrConflict
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	f.users[user.ID] = &cp
	return user, nil
}

func (f *fakeUserRepo) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) FindUserByPhone(_ context.Context, phone string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Phone != nil && *u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) SetProviderID(_ context.Context, userID string, providerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if u.ProviderID != nil && *u.ProviderID != "" {
		return nil // column guard: only writes when still empty
	}
	for _, other := range f.users {
		if other.ProviderID != nil && *other.ProviderID == providerID {
			return domain.ErrConflict
		}
	}
	u.ProviderID = &providerID
	return nil
}

func (f *fakeUserRepo) UpdateImage(_ context.Context, userID string, imageURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Image = imageURL
	return nil
}

type fakeProducer struct {
	mu     sync.Mutex
	events []string
}

func (p *fakeProducer) PublishMessage(key, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, string(key))
	return nil
}

func newAuthService(repo *fakeUserRepo, producer *fakeProducer) services.AuthService {
	if producer == nil {
		return services.NewAuthService(repo, nil, helper.SetupAuth("test-secret"))
	}
	return services.NewAuthService(repo, producer, helper.SetupAuth("test-secret"))
}

func TestRegisterThenLogin(t *testing.T) {
	repo := newFakeUserRepo()
	producer := &fakeProducer{}
	svc := newAuthService(repo, producer)
	ctx := context.Background()

	userID, err := svc.Register(ctx, dto.RegisterRequest{
		Name:     "Ann",
		Email:    "ann@x.com",
		Password: "secret123",
		Provider: "email",
	})
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	user, err := svc.Login(ctx, domain.IdentifierEmail, "ann@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	assert.Contains(t, producer.events, "user.registered")
}

func TestRegisterPhoneThenLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, nil)
	ctx := context.Background()

	userID, err := svc.Register(ctx, dto.RegisterRequest{
		Name:     "Bee",
		Phone:    "0812345678",
		Password: "secret123",
		Provider: "phone",
	})
	require.NoError(t, err)

	user, err := svc.Login(ctx, domain.IdentifierPhone, "0812345678", "secret123")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, domain.ProviderPhone, user.Provider)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{
		Name: "Ann", Email: "ann@x.com", Password: "secret123", Provider: "email",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, dto.RegisterRequest{
		Name: "Ann Again", Email: "ann@x.com", Password: "different1", Provider: "email",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input dto.RegisterRequest
	}{
		{"missing name", dto.RegisterRequest{Email: "a@x.com", Password: "secret123", Provider: "email"}},
		{"missing password", dto.RegisterRequest{Name: "A", Email: "a@x.com", Provider: "email"}},
		{"short password", dto.RegisterRequest{Name: "A", Email: "a@x.com", Password: "short", Provider: "email"}},
		{"email provider without email", dto.RegisterRequest{Name: "A", Password: "secret123", Provider: "email"}},
		{"phone provider without phone", dto.RegisterRequest{Name: "A", Password: "secret123", Provider: "phone"}},
		{"malformed email", dto.RegisterRequest{Name: "A", Email: "not-an-email", Password: "secret123", Provider: "email"}},
		{"phone too short", dto.RegisterRequest{Name: "A", Phone: "12345", Password: "secret123", Provider: "phone"}},
		{"phone with letters", dto.RegisterRequest{Name: "A", Phone: "08123abc78", Password: "secret123", Provider: "phone"}},
		{"unknown provider", dto.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret123", Provider: "github"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, nil)
	ctx := context.Background()

	userID, err := svc.Register(ctx, dto.RegisterRequest{
		Name: "Ann", Email: "  Ann@X.COM ", Password: "secret123", Provider: "email",
	})
	require.NoError(t, err)

	user, err := svc.Login(ctx, domain.IdentifierEmail, "ann@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{
		Name: "Ann", Email: "ann@x.com", Password: "secret123", Provider: "email",
	})
	require.NoError(t, err)

	_, wrongSecret := svc.Login(ctx, domain.IdentifierEmail, "ann@x.com", "wrong")
	_, noSuchUser := svc.Login(ctx, domain.IdentifierEmail, "ghost@x.com", "secret123")
	_, emptySecret := svc.Login(ctx, domain.IdentifierEmail, "ann@x.com", "")

	assert.ErrorIs(t, wrongSecret, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, noSuchUser, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, emptySecret, domain.ErrInvalidCredentials)
	// identical error, so no identifier enumeration oracle
	assert.Equal(t, wrongSecret.Error(), noSuchUser.Error())
}

func TestResolveGoogleIdentityCreates(t *testing.T) {
	repo := newFakeUserRepo()
	producer := &fakeProducer{}
	svc := newAuthService(repo, producer)
	ctx := context.Background()

	identity := auth.Identity{
		Provider: "google",
		Subject:  "google-sub-1",
		Email:    "New@X.com",
		Name:     "New User",
		Image:    "https://example.com/p.jpg",
	}

	user, outcome, err := svc.ResolveGoogleIdentity(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCreated, outcome)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, domain.ProviderGoogle, user.Provider)
	require.NotNil(t, user.Email)
	assert.Equal(t, "new@x.com", *user.Email)
	require.NotNil(t, user.ProviderID)
	assert.Equal(t, "google-sub-1", *user.ProviderID)
	assert.NotEmpty(t, user.PasswordHash, "google accounts still carry a hash")
	assert.Contains(t, producer.events, "user.registered")
}

func TestResolveGoogleIdentityIsIdempotent(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, nil)
	ctx := context.Background()

	identity := auth.Identity{Provider: "google", Subject: "sub-7", Email: "repeat@x.com", Name: "R"}

	first, outcome1, err := svc.ResolveGoogleIdentity(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCreated, outcome1)

	second, outcome2, err := svc.ResolveGoogleIdentity(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAlreadyLinked, outcome2)
	assert.Equal(t, first.ID, second.ID)

	assert.Len(t, repo.users, 1, "repeat sign-ins must not create duplicates")
}

func TestResolveGoogleIdentityLinksExistingAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, nil)
	ctx := context.Background()

	userID, err := svc.Register(ctx, dto.RegisterRequest{
		Name: "Ann", Email: "ann@x.com", Password: "secret123", Provider: "email",
	})
	require.NoError(t, err)

	before, err := repo.FindUserByID(ctx, userID)
	require.NoError(t, err)

	user, outcome, err := svc.ResolveGoogleIdentity(ctx, auth.Identity{
		Provider: "google", Subject: "sub-ann", Email: "ann@x.com", Name: "Ann From Google",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeLinked, outcome)
	assert.Equal(t, userID, user.ID, "same email merges into one account")

	after, err := repo.FindUserByID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, after.ProviderID)
	assert.Equal(t, "sub-ann", *after.ProviderID)

	// linking backfills provider_id only
	assert.Equal(t, before.Role, after.Role)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.Provider, after.Provider)

	// and the account still logs in with its original password
	logged, err := svc.Login(ctx, domain.IdentifierEmail, "ann@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, userID, logged.ID)
}

func TestResolveGoogleIdentityRequiresEmailAndSubject(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), nil)
	ctx := context.Background()

	_, _, err := svc.ResolveGoogleIdentity(ctx, auth.Identity{Subject: "sub"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = svc.ResolveGoogleIdentity(ctx, auth.Identity{Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// racingRepo simulates losing the creation race: the first lookup misses,
// the create hits the unique index, the second lookup sees the winner.
type racingRepo struct {
	*fakeUserRepo
	missedOnce bool
}

func (r *racingRepo) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if !r.missedOnce {
		r.missedOnce = true
		return nil, domain.ErrNotFound
	}
	return r.fakeUserRepo.FindUserByEmail(ctx, email)
}

func TestResolveGoogleIdentityConvergesAfterLostRace(t *testing.T) {
	base := newFakeUserRepo()
	ctx := context.Background()

	email := "race@x.com"
	hash, err := bcrypt.GenerateFromPassword([]byte("whatever1"), bcrypt.MinCost)
	require.NoError(t, err)
	winner, err := base.CreateUser(ctx, &domain.User{
		Name: "Winner", Email: &email, PasswordHash: string(hash),
		Role: domain.RoleUser, Provider: domain.ProviderGoogle,
	})
	require.NoError(t, err)

	repo := &racingRepo{fakeUserRepo: base}
	svc := services.NewAuthService(repo, nil, helper.SetupAuth("test-secret"))

	user, outcome, err := svc.ResolveGoogleIdentity(ctx, auth.Identity{
		Provider: "google", Subject: "race-sub", Email: email, Name: "Loser",
	})
	require.NoError(t, err)
	assert.Equal(t, winner.ID, user.ID, "loser must converge on the winning row")
	assert.Equal(t, domain.OutcomeLinked, outcome)
	assert.Len(t, base.users, 1)
}

func TestGetProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, nil)
	ctx := context.Background()

	userID, err := svc.Register(ctx, dto.RegisterRequest{
		Name: "Ann", Email: "ann@x.com", Password: "secret123", Provider: "email",
	})
	require.NoError(t, err)

	user, err := svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)

	_, err = svc.GetProfile(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetProfile(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestUpdateAvatar(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, nil)
	ctx := context.Background()

	userID, err := svc.Register(ctx, dto.RegisterRequest{
		Name: "Ann", Email: "ann@x.com", Password: "secret123", Provider: "email",
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateAvatar(ctx, userID, "https://cdn.example.com/a.jpg"))

	user, err := svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.jpg", user.Image)

	assert.ErrorIs(t, svc.UpdateAvatar(ctx, userID, "  "), domain.ErrValidation)
}
