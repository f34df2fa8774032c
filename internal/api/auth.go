package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/slok/opsdesk/internal/model"
)

// Authenticator resolves the operator identity of an API token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Identity, error)
}

// OperatorRepository is the storage the token authenticator reads identities from.
type OperatorRepository interface {
	GetOperatorByUsername(ctx context.Context, username string) (*model.Operator, error)
	GetOperation(ctx context.Context, id int64) (*model.Operation, error)
	ListOperatorOperations(ctx context.Context, operatorID int64) ([]model.Operation, error)
}

type tokenFile struct {
	Tokens []struct {
		Token    string `yaml:"token"`
		Username string `yaml:"username"`
	} `yaml:"tokens"`
}

// TokenAuthenticator authenticates static tokens mapped to operator usernames.
type TokenAuthenticator struct {
	tokens map[string]string
	repo   OperatorRepository
}

// NewTokenAuthenticator returns an authenticator for a token to username table.
func NewTokenAuthenticator(tokens map[string]string, repo OperatorRepository) *TokenAuthenticator {
	return &TokenAuthenticator{tokens: tokens, repo: repo}
}

// LoadTokenFile reads a YAML auth file:
//
//	tokens:
//	  - token: s3cr3t
//	    username: alice
func LoadTokenFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read auth file: %w", err)
	}

	var f tokenFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("could not parse auth file: %w", err)
	}

	tokens := make(map[string]string, len(f.Tokens))
	for _, t := range f.Tokens {
		if t.Token == "" || t.Username == "" {
			return nil, fmt.Errorf("auth file entries need token and username: %w", model.ErrNotValid)
		}
		if _, ok := tokens[t.Token]; ok {
			return nil, fmt.Errorf("duplicated token for %q: %w", t.Username, model.ErrAlreadyExists)
		}
		tokens[t.Token] = t.Username
	}
	return tokens, nil
}

func (t *TokenAuthenticator) Authenticate(ctx context.Context, token string) (*model.Identity, error) {
	username, ok := t.tokens[token]
	if !ok {
		return nil, fmt.Errorf("unknown token: %w", model.ErrNotFound)
	}
	return IdentityFor(ctx, t.repo, username)
}

// IdentityFor resolves the identity of an active operator with its memberships and
// current operation.
func IdentityFor(ctx context.Context, repo OperatorRepository, username string) (*model.Identity, error) {
	op, err := repo.GetOperatorByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("could not get operator %q: %w", username, err)
	}
	if !op.Active {
		return nil, fmt.Errorf("operator %q is not active: %w", username, model.ErrPermissionDenied)
	}

	ops, err := repo.ListOperatorOperations(ctx, op.ID)
	if err != nil {
		return nil, fmt.Errorf("could not list operations: %w", err)
	}

	id := &model.Identity{OperatorID: op.ID, Username: op.Username, Admin: op.Admin}
	for _, o := range ops {
		id.Operations = append(id.Operations, o.Name)
	}
	if op.CurrentOperationID != nil {
		current, err := repo.GetOperation(ctx, *op.CurrentOperationID)
		if err != nil {
			return nil, fmt.Errorf("could not get current operation: %w", err)
		}
		id.CurrentOperation = current.Name
		id.CurrentOperationID = current.ID
	}

	return id, nil
}

const identityKey = "opsdesk-identity"

// authMiddleware authenticates the bearer token, the "token" query param is accepted
// for browsers opening websockets.
func (h *handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "missing token"})
			return
		}

		id, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			h.logger.Warningf("Authentication failed: %s", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "invalid token"})
			return
		}

		c.Set(identityKey, *id)
		c.Request = c.Request.WithContext(h.logger.SetValuesOnCtx(c.Request.Context(), map[string]any{"operator": id.Username}))
		c.Next()
	}
}

func identity(c *gin.Context) model.Identity {
	v, _ := c.Get(identityKey)
	id, _ := v.(model.Identity)
	return id
}
