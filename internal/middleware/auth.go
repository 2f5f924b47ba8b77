package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/tareas-api/internal/auth"
	"github.com/BuzzLyutic/tareas-api/pkg/respond"
)

// Authenticate пропускает дальше только запросы с валидным bearer-токеном
// и кладет владельца в контекст. Невалидный запрос до данных не доходит
func Authenticate(resolver auth.OwnerResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := bearerToken(r)
			if credential == "" {
				respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
				return
			}

			owner, err := resolver.ResolveOwner(r.Context(), credential)
			if err != nil {
				logger.Warn("invalid bearer token", zap.Error(err))
				respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithOwner(r.Context(), owner)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
