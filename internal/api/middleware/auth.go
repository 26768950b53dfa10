package middleware

import (
	"net/http"
	"strings"

	"sentinel/pkg/crypto"
	"sentinel/pkg/utils"
)

// BearerAuth - middleware авторизации управляющих endpoints.
//
// Токен передаётся в заголовке Authorization: Bearer <token> и
// сверяется с bcrypt хешем из конфигурации (API_TOKEN_HASH). Хранить
// нужно только хеш - сам токен в окружении сервера не появляется.
//
// Пустой tokenHash отключает авторизацию; config.Load допускает это
// только в интерактивном режиме.
func BearerAuth(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !crypto.CheckTokenMatch(token, tokenHash) {
				utils.Warn("rejected api request with invalid token",
					utils.String("remote", r.RemoteAddr),
					utils.String("path", r.URL.Path),
				)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken извлекает токен из заголовка Authorization
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
