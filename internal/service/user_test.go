package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/RandilG/Construction-Management/internal/config"
	"github.com/RandilG/Construction-Management/internal/domain"
	"github.com/RandilG/Construction-Management/pkg/auth"
	"github.com/RandilG/Construction-Management/pkg/hash"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email || existing.NIC == user.NIC {
			return domain.ErrDuplicateEntry
		}
	}
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetOneByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmailOrNIC(_ context.Context, email string, nic string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email || user.NIC == nic {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, email string, name string, contactNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return domain.ErrNotFound
	}
	user.Name = name
	user.ContactNumber = contactNumber
	return nil
}

type fakeChallengeRepo struct {
	mu         sync.Mutex
	challenges map[string]*domain.Challenge
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{challenges: make(map[string]*domain.Challenge)}
}

func (r *fakeChallengeRepo) Upsert(_ context.Context, challenge *domain.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *challenge
	r.challenges[challenge.Email] = &clone
	return nil
}

func (r *fakeChallengeRepo) Get(_ context.Context, email string) (*domain.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	challenge, ok := r.challenges[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *challenge
	return &clone, nil
}

func (r *fakeChallengeRepo) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.challenges, email)
	return nil
}

// capturingEmails records the last verification mail instead of sending it.
type capturingEmails struct {
	mu   sync.Mutex
	last *VerificationEmailInput
	fail bool
}

func (e *capturingEmails) SendUserVerificationEmail(input VerificationEmailInput) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.fail {
		return errors.New("smtp unavailable")
	}
	e.last = &input
	return nil
}

func (e *capturingEmails) lastCode() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.last == nil {
		return ""
	}
	return e.last.Code
}

type fixedOTPGenerator struct {
	code string
}

func (g fixedOTPGenerator) RandomCode(string, int) string {
	return g.code
}

type userServiceFixture struct {
	service    *userService
	users      *fakeUserRepo
	challenges *fakeChallengeRepo
	emails     *capturingEmails
}

func newUserServiceFixture(t *testing.T) *userServiceFixture {
	t.Helper()

	tokenManager, err := auth.NewManager(config.JWTConfig{
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 720 * time.Hour,
		SigningKey:      "test-signing-key",
	})
	require.NoError(t, err)

	users := newFakeUserRepo()
	challenges := newFakeChallengeRepo()
	emails := &capturingEmails{}

	svc := newUserService(
		users,
		challenges,
		hash.NewBcryptHasher(4),
		tokenManager,
		fixedOTPGenerator{code: "482913"},
		emails,
		config.OTPConfig{CodeLength: 6, TTL: 10 * time.Minute, Retention: 24 * time.Hour},
	)

	return &userServiceFixture{
		service:    svc,
		users:      users,
		challenges: challenges,
		emails:     emails,
	}
}

func testSignUpInput() SignUpInput {
	return SignUpInput{
		Name:          "Alice",
		Email:         "a@x.com",
		NIC:           "123456789012",
		ContactNumber: "0771234567",
		Password:      "Abcd123!",
	}
}

func TestSignUp_StagesChallengeAndSendsCode(t *testing.T) {
	f := newUserServiceFixture(t)
	ctx := context.Background()

	email, err := f.service.SignUp(ctx, testSignUpInput())
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)

	// No user row yet: creation is deferred until the code is verified.
	_, err = f.users.GetByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	challenge, err := f.challenges.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "482913", challenge.Code)
	assert.Equal(t, "Alice", challenge.Registration.Name)
	assert.NotEqual(t, "Abcd123!", challenge.Registration.PasswordHash)

	assert.Equal(t, "482913", f.emails.lastCode())
}

func TestSignUp_DuplicateUser(t *testing.T) {
	f := newUserServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.Create(ctx, &domain.User{
		ID:    uuid.New(),
		Email: "a@x.com",
		NIC:   "987654321098",
	}))

	_, err := f.service.SignUp(ctx, testSignUpInput())
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestSignUp_DuplicateNIC(t *testing.T) {
	f := newUserServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.Create(ctx, &domain.User{
		ID:    uuid.New(),
		Email: "other@x.com",
		NIC:   "123456789012",
	}))

	_, err := f.service.SignUp(ctx, testSignUpInput())
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestSignUp_EmailFailureRollsBackChallenge(t *testing.T) {
	f := newUserServiceFixture(t)
	f.emails.fail = true
	ctx := context.Background()

	_, err := f.service.SignUp(ctx, testSignUpInput())
	assert.ErrorIs(t, err, ErrEmailDelivery)

	_, err = f.challenges.Get(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSignUp_OverwritesPreviousChallenge(t *testing.T) {
	f := newUserServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.SignUp(ctx, testSignUpInput())
	require.NoError(t, err)

	first, err := f.challenges.Get(ctx, "a@x.com")
	require.NoError(t, err)

	input := testSignUpInput()
	input.Name = "Alice Updated"
	_, err = f.service.SignUp(ctx, input)
	require.NoError(t, err)

	second, err := f.challenges.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice Updated", second.Registration.Name)
	assert.True(t, !second.CreatedAt.Before(first.CreatedAt))
}

func TestVerifyOTP_NoChallenge(t *testing.T) {
	f := newUserServiceFixture(t)

	_, err := f.service.VerifyOTP(context.Background(), "a@x.com", "482913")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestVerifyOTP_Expired(t *testing.T) {
	f := newUserServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.challenges.Upsert(ctx, &domain.Challenge{
		Email:     "a@x.com",
		Code:      "482913",
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-11 * time.Minute),
	}))

	_, err := f.service.VerifyOTP(ctx, "a@x.com", "482913")
	assert.ErrorIs(t, err, ErrChallengeExpired)

	// Expiry consumes the challenge: the next attempt reports not found.
	_, err = f.service.VerifyOTP(ctx, "a@x.com", "482913")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestVerifyOTP_WrongCodeKeepsChallenge(t *testing.T) {
	f := newUserServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.SignUp(ctx, testSignUpInput())
	require.NoError(t, err)

	_, err = f.service.VerifyOTP(ctx, "a@x.com", "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)

	// A retry with the delivered code still succeeds.
	result, err := f.service.VerifyOTP(ctx, "a@x.com", f.emails.lastCode())
	require.NoError(t, err)
	assert.Equal(t, "Alice", result.Username)
}

func TestVerifyOTP_RoundTrip(t *testing.T) {
	f := newUserServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.SignUp(ctx, testSignUpInput())
	require.NoError(t, err)

	result, err := f.service.VerifyOTP(ctx, "a@x.com", f.emails.lastCode())
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "Alice", result.Username)
	assert.Equal(t, "a@x.com", result.Email)

	user, err := f.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, user.Verified)
}

func TestVerifyOTP_SingleUse(t *testing.T) {
	f := newUserServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.SignUp(ctx, testSignUpInput())
	require.NoError(t, err)

	code := f.emails.lastCode()
	_, err = f.service.VerifyOTP(ctx, "a@x.com", code)
	require.NoError(t, err)

	_, err = f.service.VerifyOTP(ctx, "a@x.com", code)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestVerifyOTP_TrimsWhitespace(t *testing.T) {
	f := newUserServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.SignUp(ctx, testSignUpInput())
	require.NoError(t, err)

	_, err = f.service.VerifyOTP(ctx, " a@x.com ", fmt.Sprintf("  %s  ", f.emails.lastCode()))
	require.NoError(t, err)
}

func TestVerifyOTP_RaceLoserGetsConflict(t *testing.T) {
	f := newUserServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.SignUp(ctx, testSignUpInput())
	require.NoError(t, err)

	// Another materialization won the unique key first.
	require.NoError(t, f.users.Create(ctx, &domain.User{
		ID:    uuid.New(),
		Email: "a@x.com",
		NIC:   "123456789012",
	}))

	_, err = f.service.VerifyOTP(ctx, "a@x.com", f.emails.lastCode())
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	// The losing challenge is gone.
	_, err = f.challenges.Get(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSignIn(t *testing.T) {
	f := newUserServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.SignUp(ctx, testSignUpInput())
	require.NoError(t, err)
	_, err = f.service.VerifyOTP(ctx, "a@x.com", f.emails.lastCode())
	require.NoError(t, err)

	result, err := f.service.SignIn(ctx, "a@x.com", "Abcd123!")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)

	_, err = f.service.SignIn(ctx, "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = f.service.SignIn(ctx, "nobody@x.com", "Abcd123!")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSignIn_UnverifiedUser(t *testing.T) {
	f := newUserServiceFixture(t)
	ctx := context.Background()

	passwordHash, err := hash.NewBcryptHasher(4).Hash("Abcd123!")
	require.NoError(t, err)

	require.NoError(t, f.users.Create(ctx, &domain.User{
		ID:           uuid.New(),
		Email:        "a@x.com",
		NIC:          "123456789012",
		PasswordHash: passwordHash,
		Verified:     false,
	}))

	_, err = f.service.SignIn(ctx, "a@x.com", "Abcd123!")
	assert.ErrorIs(t, err, ErrUserNotVerified)
}
