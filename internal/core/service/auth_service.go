package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tesloshop/shop-auth/internal/core/domain"
	"github.com/tesloshop/shop-auth/internal/core/ports"
)

// PasswordCost is the bcrypt cost factor for stored password hashes.
const PasswordCost = 10

// dummyHash is compared against when an email is unknown so that both login
// failures cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword(passwordDigest("dummy-password-Never-Matches-1"), PasswordCost)

// passwordDigest is what bcrypt actually sees: base64 of the SHA-256 of the
// raw password, 44 bytes for any input. bcrypt rejects inputs over 72 bytes,
// which a 50-rune multibyte password can exceed.
func passwordDigest(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// AuthService implements registration, login and token reissue.
type AuthService struct {
	repo     ports.IdentityRepository
	tokens   *TokenCodec
	throttle ports.LoginThrottle
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthService wires the credential service. throttle may be nil.
func NewAuthService(repo ports.IdentityRepository, tokens *TokenCodec, throttle ports.LoginThrottle, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		tokens:   tokens,
		throttle: throttle,
		log:      log,
		now:      time.Now,
	}
}

// Register validates and persists a new identity and returns it with a
// fresh token. The returned identity never carries the password hash.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*domain.Identity, string, error) {
	email = domain.NormalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if email == "" || fullName == "" {
		return nil, "", fmt.Errorf("%w: email and fullName are required", domain.ErrInvalidInput)
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword(passwordDigest(password), PasswordCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	identity := &domain.Identity{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		IsActive:     true,
		Roles:        []domain.Role{domain.RoleUser},
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.repo.Create(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return nil, "", domain.ErrDuplicateIdentity
		}
		return nil, "", fmt.Errorf("register: %w: %w", domain.ErrStorageFailure, err)
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Str("identity_id", created.ID).Msg("identity registered")
	return created.Public(), token, nil
}

// Login checks credentials and issues a token. Unknown emails and wrong
// passwords both yield domain.ErrInvalidCredentials. Activity status is not
// checked here; the token validator enforces it on every use.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Identity, string, error) {
	email = domain.NormalizeEmail(email)

	if s.throttle != nil && email != "" {
		blocked, err := s.throttle.Blocked(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle check failed, continuing")
		} else if blocked {
			return nil, "", domain.ErrTooManyAttempts
		}
	}

	identity, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, "", fmt.Errorf("login: %w: %w", domain.ErrStorageFailure, err)
	}

	hash := dummyHash
	if identity != nil {
		hash = []byte(identity.PasswordHash)
	}
	match := bcrypt.CompareHashAndPassword(hash, passwordDigest(password)) == nil
	if identity == nil || !match {
		s.recordFailure(ctx, email)
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(identity.ID)
	if err != nil {
		return nil, "", err
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}

	return identity.Public(), token, nil
}

// Reissue returns a new token bound to the same subject.
func (s *AuthService) Reissue(identity *domain.Identity) (string, error) {
	if identity == nil || identity.ID == "" {
		return "", domain.ErrInvalidToken
	}
	return s.tokens.Issue(identity.ID)
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil || email == "" {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}
