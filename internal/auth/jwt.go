package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/BuzzLyutic/tareas-api/internal/model"
)

var ErrUnauthorized = errors.New("unauthorized")

// OwnerClaim - claim с идентификатором пользователя
const OwnerClaim = "user.id"

// OwnerResolver превращает bearer-токен в идентификатор владельца.
// Репозиторий от него не зависит: проверка происходит до любого обращения к данным
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, credential string) (model.OwnerID, error)
}

type claims struct {
	OwnerID int64 `json:"user.id"`
	jwt.RegisteredClaims
}

// JWT подписывает и проверяет токены HS256
type JWT struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWT(secret, issuer string) *JWT {
	return &JWT{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

func (j *JWT) ResolveOwner(_ context.Context, credential string) (model.OwnerID, error) {
	if credential == "" {
		return 0, ErrUnauthorized
	}

	var c claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(credential, &c, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if j.issuer != "" && !c.VerifyIssuer(j.issuer, true) {
		return 0, fmt.Errorf("%w: unexpected issuer %q", ErrUnauthorized, c.Issuer)
	}
	if c.ExpiresAt == nil {
		return 0, fmt.Errorf("%w: token has no expiry", ErrUnauthorized)
	}
	if c.OwnerID < 1 {
		return 0, fmt.Errorf("%w: missing %s claim", ErrUnauthorized, OwnerClaim)
	}
	return model.OwnerID(c.OwnerID), nil
}

// Issue выпускает токен для владельца со сроком жизни ttl
func (j *JWT) Issue(owner model.OwnerID, ttl time.Duration) (string, error) {
	if owner < 1 {
		return "", fmt.Errorf("owner must be positive, got %d", owner)
	}
	now := j.now()
	c := claims{
		OwnerID: int64(owner),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.issuer,
			Subject:   fmt.Sprintf("%d", owner),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.secret)
}
