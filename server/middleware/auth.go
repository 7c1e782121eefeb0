package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kbukum/feedback/auth"
	"github.com/kbukum/feedback/auth/authctx"
	"github.com/kbukum/feedback/auth/jwt"
	apperrors "github.com/kbukum/feedback/errors"
	"github.com/kbukum/feedback/identity"
	"github.com/kbukum/feedback/logger"
	"github.com/kbukum/feedback/observability"
)

// PrincipalKey is the gin context key holding the validated principal.
const PrincipalKey = "principal"

// Rejection reasons. They are logged and counted, never sent to clients.
const (
	ReasonMissingHeader = "missing_header"
	ReasonBadScheme     = "bad_scheme"
	ReasonEmptyToken    = "empty_token"
	ReasonMalformed     = "malformed"
	ReasonBadSignature  = "bad_signature"
	ReasonExpired       = "expired"
)

// AuthConfig configures the auth gate.
type AuthConfig struct {
	// Validator turns a bearer token into a principal. Required.
	Validator auth.TokenValidator
	// Public is the allow-list consulted before any credential check.
	Public *PublicRoutes
	// Logger receives rejection details at debug level. Optional.
	Logger *logger.Logger
	// Metrics counts rejections by reason. Optional.
	Metrics *observability.AuthMetrics
}

// Auth returns the gate that authenticates every non-public request.
//
// Public routes and unmatched paths pass straight through. Everything else
// needs an "Authorization: Bearer <token>" header whose token the validator
// accepts; on success the principal is attached to the request context
// (see authctx) and the chain continues, otherwise the request is aborted
// with a uniform 401 before any handler runs. The gate performs no
// persistence I/O.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("auth-gate")

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || cfg.Public.Allows(c.Request.Method, route) {
			c.Next()
			return
		}

		principal, ok := authenticate(c, cfg, log)
		if !ok {
			return
		}

		c.Set(PrincipalKey, principal)
		c.Request = c.Request.WithContext(authctx.Set(c.Request.Context(), principal))
		c.Next()
	}
}

// authenticate validates the request credential inside the gate span. On
// failure it aborts c and returns false.
func authenticate(c *gin.Context, cfg AuthConfig, log *logger.Logger) (any, bool) {
	ctx, span := observability.StartSpan(c.Request.Context(), "auth.gate")
	defer span.End()

	token, reason := bearerToken(c.GetHeader("Authorization"))
	if reason == "" {
		principal, err := cfg.Validator.ValidateToken(token)
		if err == nil {
			if id, ok := principal.(identity.Identity); ok {
				span.SetAttributes(
					attribute.Int64(observability.AttrUserID, id.ID),
					attribute.String(observability.AttrUserRole, string(id.Role)),
				)
			}
			return principal, true
		}
		reason = validationReason(err)
	}

	span.SetAttributes(attribute.String(observability.AttrReason, reason))
	span.SetStatus(codes.Error, "unauthenticated")
	cfg.Metrics.RecordRejection(ctx, reason)
	log.WithContext(ctx).Debug("request rejected", map[string]any{
		logger.FieldMethod: c.Request.Method,
		logger.FieldPath:   c.FullPath(),
		logger.FieldReason: reason,
	})

	abortWithError(c, apperrors.Unauthorized(""))
	return nil, false
}

// CurrentIdentity returns the identity the gate attached to the request.
// A request that reached the handler without one is unauthenticated.
func CurrentIdentity(c *gin.Context) (identity.Identity, error) {
	id, ok := identity.FromContext(c.Request.Context())
	if !ok {
		return identity.Identity{}, apperrors.Unauthorized("")
	}
	return id, nil
}

// bearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", ReasonMissingHeader
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ReasonBadScheme
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ReasonEmptyToken
	}
	return token, ""
}

func validationReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrInvalidSignature):
		return ReasonBadSignature
	default:
		return ReasonMalformed
	}
}
