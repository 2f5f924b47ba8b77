package auth

import (
	"context"

	"github.com/BuzzLyutic/tareas-api/internal/model"
)

type ctxKey struct{}

func WithOwner(ctx context.Context, owner model.OwnerID) context.Context {
	return context.WithValue(ctx, ctxKey{}, owner)
}

// OwnerFromContext возвращает владельца, положенного middleware аутентификации
func OwnerFromContext(ctx context.Context) (model.OwnerID, bool) {
	owner, ok := ctx.Value(ctxKey{}).(model.OwnerID)
	return owner, ok && owner > 0
}
