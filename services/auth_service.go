package services

import (
	"context"
	"fmt"
	"log/slog"

	"chat-sync/auth"
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/observability"
	"chat-sync/repositories"
)

const (
	PolicyPassword        = "password"
	PolicyTrustOnFirstUse = "trust_on_first_use"
)

// CredentialPolicy turns a submitted handle (and optional secret) into a user.
// Exactly one policy is active per deployment.
type CredentialPolicy interface {
	Name() string
	Resolve(handle, secret string) (domain.User, error)
}

// NewCredentialPolicy selects the policy configured at start up.
func NewCredentialPolicy(name string, users repositories.IUserRepository, hasher auth.PasswordHasher) (CredentialPolicy, error) {
	switch name {
	case PolicyPassword:
		return PasswordChecked{users: users, hasher: hasher}, nil
	case PolicyTrustOnFirstUse:
		return TrustOnFirstUse{users: users}, nil
	default:
		return nil, fmt.Errorf("unknown credential policy %q", name)
	}
}

// PasswordChecked registers unknown handles with the submitted secret and
// verifies the secret of known ones against their argon2id hash.
type PasswordChecked struct {
	users  repositories.IUserRepository
	hasher auth.PasswordHasher
}

func (p PasswordChecked) Name() string { return PolicyPassword }

func (p PasswordChecked) Resolve(handle, secret string) (domain.User, error) {
	handle, err := auth.NormalizeHandle(handle)
	if err != nil {
		return domain.User{}, err
	}
	if err := auth.ValidatePassword(auth.PasswordRequest{Handle: handle, Password: secret}); err != nil {
		return domain.User{}, err
	}

	user, err := p.users.GetUserByHandle(handle)
	switch {
	case errors.Is(err, errors.ErrUserNotFound):
		return p.register(handle, secret)
	case err != nil:
		return domain.User{}, err
	}
	return p.verify(user, secret)
}

func (p PasswordChecked) register(handle, secret string) (domain.User, error) {
	hash, err := p.hasher.Hash(secret)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	user, err := p.users.CreateUser(handle, hash)
	if errors.Is(err, errors.ErrUserAlreadyExists) {
		// Registered concurrently: the secret must now match the winner's.
		existing, err := p.users.GetUserByHandle(handle)
		if err != nil {
			return domain.User{}, err
		}
		return p.verify(existing, secret)
	}
	return user, err
}

func (p PasswordChecked) verify(user domain.User, secret string) (domain.User, error) {
	if user.PasswordHash == "" {
		return domain.User{}, errors.ErrInvalidCredentials
	}
	match, err := p.hasher.Compare(secret, user.PasswordHash)
	if err != nil || !match {
		return domain.User{}, errors.ErrInvalidCredentials
	}
	return user, nil
}

// TrustOnFirstUse keys users by handle only: the first caller creates the
// user, every later caller gets the same id. The secret is ignored.
type TrustOnFirstUse struct {
	users repositories.IUserRepository
}

func (p TrustOnFirstUse) Name() string { return PolicyTrustOnFirstUse }

func (p TrustOnFirstUse) Resolve(handle, _ string) (domain.User, error) {
	handle, err := auth.NormalizeHandle(handle)
	if err != nil {
		return domain.User{}, err
	}

	user, err := p.users.GetUserByHandle(handle)
	if !errors.Is(err, errors.ErrUserNotFound) {
		return user, err
	}

	user, err = p.users.CreateUser(handle, "")
	if errors.Is(err, errors.ErrUserAlreadyExists) {
		return p.users.GetUserByHandle(handle)
	}
	return user, err
}

type Token string

func (t Token) String() string {
	return string(t)
}

type AuthResult struct {
	UserID domain.UserID
	Handle string
	Token  Token
}

type IAuthService interface {
	Authenticate(ctx context.Context, handle, secret string) (AuthResult, error)
}

type AuthService struct {
	policy CredentialPolicy
	tokens *TokenStore
	log    *slog.Logger
}

func NewAuthService(policy CredentialPolicy, tokens *TokenStore, log *slog.Logger) IAuthService {
	return &AuthService{policy: policy, tokens: tokens, log: log}
}

// Authenticate runs the credential policy then issues a new session.
func (s *AuthService) Authenticate(ctx context.Context, handle, secret string) (AuthResult, error) {
	user, err := s.policy.Resolve(handle, secret)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidCredentials) {
			observability.AuthenticationFailures.WithLabelValues("invalid_credentials").Inc()
		}
		if errors.Is(err, errors.ErrStoreUnavailable) {
			s.log.ErrorContext(ctx, "Unable to resolve credentials", "error", err)
		}
		return AuthResult{}, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	observability.SessionsIssued.WithLabelValues(s.policy.Name()).Inc()
	s.log.DebugContext(ctx, "Session issued", "user_id", user.ID, "policy", s.policy.Name())

	return AuthResult{UserID: user.ID, Handle: user.Handle, Token: Token(token)}, nil
}

// SessionAuthenticator is the single gate in front of every operation but
// credential submission.
type SessionAuthenticator struct {
	tokens *TokenStore
}

func NewSessionAuthenticator(tokens *TokenStore) *SessionAuthenticator {
	return &SessionAuthenticator{tokens: tokens}
}

var _ auth.Authenticator = (*SessionAuthenticator)(nil)

func (a *SessionAuthenticator) Authenticate(_ context.Context, authorization string) (domain.Identity, error) {
	raw, ok := auth.ParseBearer(authorization)
	if !ok {
		observability.AuthenticationFailures.WithLabelValues("missing_token").Inc()
		return domain.Identity{}, errors.ErrUnauthorized
	}

	identity, found, err := a.tokens.Resolve(raw)
	if err != nil {
		return domain.Identity{}, err
	}
	if !found {
		observability.AuthenticationFailures.WithLabelValues("invalid_token").Inc()
		return domain.Identity{}, errors.ErrUnauthorized
	}
	return identity, nil
}
