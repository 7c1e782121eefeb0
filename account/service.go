package account

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/feedback/auth/password"
	"github.com/kbukum/feedback/authz"
	apperrors "github.com/kbukum/feedback/errors"
	"github.com/kbukum/feedback/identity"
	"github.com/kbukum/feedback/logger"
	"github.com/kbukum/feedback/observability"
	"github.com/kbukum/feedback/validation"
)

// Login outcomes recorded on the auth.login.attempts counter.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

const resource = "account"

// TokenIssuer signs identity tokens. *identity.Codec implements it.
type TokenIssuer interface {
	Issue(accountID int64, username string, role identity.Role, ttl time.Duration) (string, error)
}

// RegisterInput is the registration request.
type RegisterInput struct {
	Username string `json:"username" validate:"required,max=64,handle"`
	Password string `json:"password" validate:"required,max=128"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Role     string `json:"role" validate:"required"`
}

// LoginInput is the login request.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Service implements the account operations.
type Service struct {
	repo    Repository
	hasher  password.Hasher
	issuer  TokenIssuer
	policy  authz.Checker
	metrics *observability.AuthMetrics
	log     *logger.Logger

	// decoy is verified against when the username is unknown so that both
	// login failures cost one hash verification.
	decoy string
}

// Option configures a Service.
type Option func(*Service)

// WithPolicy replaces the default role policy.
func WithPolicy(c authz.Checker) Option {
	return func(s *Service) { s.policy = c }
}

// WithMetrics records login outcomes on m.
func WithMetrics(m *observability.AuthMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService wires the account operations.
func NewService(repo Repository, hasher password.Hasher, issuer TokenIssuer, opts ...Option) (*Service, error) {
	s := &Service{
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
		policy: authz.DefaultPolicy(),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("account")

	decoy, err := hasher.Hash("decoy-" + strconv.FormatInt(time.Now().UnixNano(), 36))
	if err != nil {
		return nil, err
	}
	s.decoy = decoy
	return s, nil
}

// Register creates an account. It fails with 400 for invalid input or an
// unknown role and with 409 when the username is taken; an existing
// account is never modified.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	if err := validation.Validate(in); err != nil {
		return nil, err
	}
	role, err := identity.ParseRole(in.Role)
	if err != nil {
		return nil, apperrors.InvalidInput("role", "must be one of: admin, teacher, student")
	}

	existing, err := s.repo.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists(resource)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	a := &Account{
		Username:     in.Username,
		PasswordHash: digest,
		Email:        strings.TrimSpace(in.Email),
		Role:         role,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperrors.AlreadyExists(resource)
		}
		return nil, apperrors.DatabaseError(err)
	}

	s.log.WithContext(ctx).Info("account registered", map[string]any{
		logger.FieldUserID: a.ID,
		logger.FieldRole:   string(a.Role),
	})
	return a, nil
}

// Login verifies the credentials and returns a signed token. Unknown
// usernames and wrong passwords yield the same 401.
func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	if err := validation.Validate(in); err != nil {
		return "", err
	}

	a, err := s.repo.FindByUsername(ctx, in.Username)
	if err != nil {
		return "", apperrors.DatabaseError(err)
	}

	digest := s.decoy
	if a != nil {
		digest = a.PasswordHash
	}
	if !s.hasher.Verify(in.Password, digest) || a == nil {
		s.metrics.RecordLogin(ctx, OutcomeFailure)
		return "", apperrors.Unauthorized("Invalid username or password.")
	}

	token, err := s.issuer.Issue(a.ID, a.Username, a.Role, 0)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	s.metrics.RecordLogin(ctx, OutcomeSuccess)
	return token, nil
}

// Self returns the caller's own account.
func (s *Service) Self(ctx context.Context, caller identity.Identity) (*Account, error) {
	if err := authz.RequirePermission(s.policy, caller, authz.PermUserReadSelf); err != nil {
		return nil, err
	}
	return s.find(ctx, caller.ID)
}

// List returns every account. Only callers allowed to list users may.
func (s *Service) List(ctx context.Context, caller identity.Identity) ([]Account, error) {
	if err := authz.RequirePermission(s.policy, caller, authz.PermUserList); err != nil {
		return nil, err
	}
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return accounts, nil
}

// Get returns the account with id. Callers without the user:read
// permission may only read their own account; any other id is reported as
// not found.
func (s *Service) Get(ctx context.Context, caller identity.Identity, id int64) (*Account, error) {
	if !authz.Allowed(s.policy, caller, authz.PermUserRead) {
		if err := authz.RequireOwner(caller, id, resource); err != nil {
			return nil, err
		}
	}
	return s.find(ctx, id)
}

func (s *Service) find(ctx context.Context, id int64) (*Account, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if a == nil {
		return nil, apperrors.NotFound(resource, strconv.FormatInt(id, 10))
	}
	return a, nil
}
