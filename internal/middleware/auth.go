package middleware

import (
	"net/http"
	"strings"

	"anoa.com/communityforum/internal/model"
	"anoa.com/communityforum/internal/repository"
	"anoa.com/communityforum/pkg/apperror"
	"anoa.com/communityforum/pkg/response"
	"anoa.com/communityforum/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const identityKey = "identity"

// Identity is what the gate evaluates. Role comes from the token; Grants
// are only populated on permission-gated routes, where the user record is
// re-fetched so admin permission edits take effect immediately.
type Identity struct {
	UserID uuid.UUID
	Role   model.Role
	Grants model.Grants
}

// Evaluate is the pure authorization function. Empty requirement lists
// impose no constraint, so an empty-list guard admits any authenticated
// identity.
func Evaluate(id *Identity, roles []model.Role, perms []model.Permission) error {
	if id == nil {
		return apperror.ErrUnauthenticated
	}

	if len(roles) > 0 {
		ok := false
		for _, r := range roles {
			if id.Role == r {
				ok = true
				break
			}
		}
		if !ok {
			return apperror.ErrInsufficientRole
		}
	}

	// All listed permissions must be held.
	for _, p := range perms {
		if !id.Grants.Has(p) {
			return apperror.ErrInsufficientPermission
		}
	}

	return nil
}

type AuthMiddleware struct {
	tokens   *token.Manager
	userRepo repository.UserRepository
}

func NewAuthMiddleware(tokens *token.Manager, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, userRepo: userRepo}
}

// RequireAuth resolves the bearer token and attaches the identity to the
// request. No store access: the identity is the token's snapshot.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			response.Abort(c, apperror.ErrUnauthenticated)
			return
		}

		resolved, err := m.tokens.Resolve(tokenString)
		if err != nil {
			response.Abort(c, apperror.ErrUnauthenticated)
			return
		}

		c.Set(identityKey, &Identity{
			UserID: resolved.UserID,
			Role:   model.Role(resolved.Role),
		})
		c.Next()
	}
}

// RequireRoles gates on the token's embedded role.
func (m *AuthMiddleware) RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := CurrentIdentity(c)
		if err := Evaluate(id, roles, nil); err != nil {
			response.Abort(c, err)
			return
		}
		c.Next()
	}
}

// RequirePermissions re-fetches the user record for its current permission
// flags, then gates on them.
func (m *AuthMiddleware) RequirePermissions(perms ...model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := CurrentIdentity(c)
		if id == nil {
			response.Abort(c, apperror.ErrUnauthenticated)
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), id.UserID.String())
		if err != nil {
			response.Abort(c, apperror.New(http.StatusUnauthorized, "user not found", apperror.ErrUnauthenticated))
			return
		}
		id.Grants = user.Grants

		if err := Evaluate(id, nil, perms); err != nil {
			response.Abort(c, err)
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the request identity, or nil when unauthenticated.
func CurrentIdentity(c *gin.Context) *Identity {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	id, ok := v.(*Identity)
	if !ok {
		return nil
	}
	return id
}
