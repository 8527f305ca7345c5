package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lysyi3m/quill/app/database"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Principal is the authenticated actor carried by a bearer token.
type Principal struct {
	ID    int64         `json:"id"`
	Email string        `json:"email"`
	Name  string        `json:"name"`
	Role  database.Role `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == database.RoleAdmin
}

func (p Principal) Requester() database.Requester {
	return database.Requester{ID: p.ID, Role: p.Role}
}

func PrincipalFromUser(user *database.User) Principal {
	return Principal{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
}

type claims struct {
	ID    int64         `json:"id"`
	Email string        `json:"email"`
	Name  string        `json:"name"`
	Role  database.Role `json:"role"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 token for the principal.
func (t *TokenIssuer) Issue(principal Principal) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		ID:    principal.ID,
		Email: principal.Email,
		Name:  principal.Name,
		Role:  principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(principal.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify returns ErrTokenExpired or ErrTokenInvalid for unusable tokens.
func (t *TokenIssuer) Verify(raw string) (*Principal, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if parsed.ID <= 0 || !parsed.Role.Valid() {
		return nil, fmt.Errorf("%w: missing principal claims", ErrTokenInvalid)
	}

	return &Principal{
		ID:    parsed.ID,
		Email: parsed.Email,
		Name:  parsed.Name,
		Role:  parsed.Role,
	}, nil
}
