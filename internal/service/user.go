package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RandilG/Construction-Management/internal/config"
	"github.com/RandilG/Construction-Management/internal/domain"
	"github.com/RandilG/Construction-Management/internal/repository"
	"github.com/RandilG/Construction-Management/pkg/auth"
	"github.com/RandilG/Construction-Management/pkg/hash"
	"github.com/RandilG/Construction-Management/pkg/logger"
	"github.com/RandilG/Construction-Management/pkg/otp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type userService struct {
	userRepository      repository.Users
	challengeRepository repository.Challenges
	hasher              hash.PasswordHasher
	tokenManager        auth.TokenManager
	otpGenerator        otp.Generator
	emails              Emails
	otpConfig           config.OTPConfig
}

func newUserService(userRepository repository.Users,
	challengeRepository repository.Challenges,
	hasher hash.PasswordHasher,
	tokenManager auth.TokenManager,
	otpGenerator otp.Generator,
	emails Emails,
	otpConfig config.OTPConfig,
) *userService {
	return &userService{
		userRepository:      userRepository,
		challengeRepository: challengeRepository,
		hasher:              hasher,
		tokenManager:        tokenManager,
		otpGenerator:        otpGenerator,
		emails:              emails,
		otpConfig:           otpConfig,
	}
}

// SignUp stages a registration behind an emailed one-time code. The user
// row is not created here; the challenge carries the whole payload until
// VerifyOTP materializes it. Returns the email the code was sent to.
func (s *userService) SignUp(ctx context.Context, input SignUpInput) (string, error) {
	exists, err := s.userRepository.ExistsByEmailOrNIC(ctx, input.Email, input.NIC)
	if err != nil {
		return "", fmt.Errorf("check existing user failed: %w", err)
	}
	if exists {
		return "", ErrUserAlreadyExists
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return "", fmt.Errorf("hash password failed: %w", err)
	}

	code := s.otpGenerator.RandomCode(input.Email, s.otpConfig.CodeLength)

	now := time.Now()
	challenge := &domain.Challenge{
		Email:     input.Email,
		Code:      code,
		ExpiresAt: now.Add(s.otpConfig.TTL),
		CreatedAt: now,
		Registration: domain.StagedRegistration{
			Name:          input.Name,
			NIC:           input.NIC,
			ContactNumber: input.ContactNumber,
			PasswordHash:  passwordHash,
		},
	}

	// Replaces any unconsumed challenge for this email.
	if err := s.challengeRepository.Upsert(ctx, challenge); err != nil {
		return "", fmt.Errorf("store challenge failed: %w", err)
	}

	if err := s.emails.SendUserVerificationEmail(VerificationEmailInput{
		Email: input.Email,
		Name:  input.Name,
		Code:  code,
	}); err != nil {
		// All or nothing: an unsendable code must not leave a live challenge.
		if delErr := s.challengeRepository.Delete(ctx, input.Email); delErr != nil {
			logger.Error("rollback challenge after email failure", zap.Error(delErr))
		}
		logger.Error("verification email dispatch failed", zap.Error(err))
		return "", ErrEmailDelivery
	}

	return input.Email, nil
}

// VerifyOTP walks the challenge state machine: no challenge, expired,
// mismatch, or match. Only a match consumes the challenge.
func (s *userService) VerifyOTP(ctx context.Context, email string, code string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)

	challenge, err := s.challengeRepository.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("get challenge failed: %w", err)
	}

	if challenge.Expired(time.Now()) {
		if err := s.challengeRepository.Delete(ctx, email); err != nil {
			return nil, fmt.Errorf("delete expired challenge failed: %w", err)
		}
		return nil, ErrChallengeExpired
	}

	if strings.TrimSpace(challenge.Code) != code {
		// The challenge stays; the caller may retry until expiry.
		return nil, ErrInvalidCode
	}

	userID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate user id failed: %w", err)
	}

	user := &domain.User{
		ID:            userID,
		Name:          challenge.Registration.Name,
		Email:         challenge.Email,
		NIC:           challenge.Registration.NIC,
		ContactNumber: challenge.Registration.ContactNumber,
		PasswordHash:  challenge.Registration.PasswordHash,
		Verified:      true,
	}

	// The unique keys on email and nic close the signup race: a concurrent
	// materialization loses here instead of creating a second account.
	if err := s.userRepository.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			if delErr := s.challengeRepository.Delete(ctx, email); delErr != nil {
				logger.Error("delete challenge after duplicate user", zap.Error(delErr))
			}
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("materialize user failed: %w", err)
	}

	// Single use. A failed delete is not fatal: the insert above means any
	// replay fails as a duplicate, and the key ages out by TTL.
	if err := s.challengeRepository.Delete(ctx, email); err != nil {
		logger.Error("delete consumed challenge failed", zap.Error(err))
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Tokens:   *tokens,
		UserID:   user.ID,
		Username: user.Name,
		Email:    user.Email,
	}, nil
}

func (s *userService) SignIn(ctx context.Context, email string, password string) (*AuthResult, error) {
	user, err := s.userRepository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email failed: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, hash.ErrMismatchedPassword) {
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("compare password failed: %w", err)
	}

	if !user.Verified {
		return nil, ErrUserNotVerified
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Tokens:   *tokens,
		UserID:   user.ID,
		Username: user.Name,
		Email:    user.Email,
	}, nil
}

func (s *userService) issueTokens(user *domain.User) (*Tokens, error) {
	var (
		res Tokens
		err error
	)

	res.AccessToken, res.AccessTTL, err = s.tokenManager.NewAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token failed: %w", err)
	}

	res.RefreshToken, res.RefreshTTL, err = s.tokenManager.NewRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token failed: %w", err)
	}

	return &res, nil
}

func (s *userService) GetProfile(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email failed: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, email string, name string, contactNumber string) error {
	if err := s.userRepository.UpdateProfile(ctx, email, name, contactNumber); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update profile failed: %w", err)
	}
	return nil
}
