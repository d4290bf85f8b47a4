package services

import (
	"context"
	"strings"
	"time"

	"circles/internal/domain/user"
	circles_errors "circles/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims are the claims the identity provider puts in its tokens.
// The subject is the provider's stable user id.
type IdentityClaims struct {
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Picture  string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// IdentityService verifies identity-provider tokens and maps them to local accounts.
type IdentityService struct {
	users  *UserService
	secret []byte
	issuer string
}

func NewIdentityService(users *UserService, secret, issuer string) *IdentityService {
	return &IdentityService{users: users, secret: []byte(secret), issuer: issuer}
}

func (s *IdentityService) ParseToken(tokenString string) (user.Identity, error) {
	if tokenString == "" {
		return user.Identity{}, circles_errors.ErrUnauthenticated
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, circles_errors.ErrUnauthenticated
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return user.Identity{}, circles_errors.ErrUnauthenticated
	}

	claims, ok := parsed.Claims.(*IdentityClaims)
	if !ok || !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return user.Identity{}, circles_errors.ErrUnauthenticated
	}
	return user.Identity{
		Subject:     claims.Subject,
		DisplayName: claims.Name,
		Username:    claims.Username,
		AvatarURL:   claims.Picture,
	}, nil
}

// Resolve verifies the token and returns the caller's account, creating it on
// first sign-in.
func (s *IdentityService) Resolve(ctx context.Context, tokenString string) (user.User, error) {
	id, err := s.ParseToken(tokenString)
	if err != nil {
		return user.User{}, err
	}
	return s.users.EnsureUser(ctx, id)
}

// IssueToken signs a token the way the identity provider does. Used by the
// migrate tool and tests to mint development credentials.
func (s *IdentityService) IssueToken(id user.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		Name:     id.DisplayName,
		Username: id.Username,
		Picture:  id.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
