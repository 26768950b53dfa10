package middleware

import (
	"net/http"
	"runtime/debug"

	"sentinel/pkg/utils"
)

// Recovery - middleware восстановления после паники в handlers.
// Перехватывает panic, логирует stack trace и возвращает клиенту 500,
// не роняя сервер и движок сверки вместе с ним.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				utils.Error("panic in http handler",
					utils.Any("panic", err),
					utils.String("path", r.URL.Path),
					utils.String("stack", string(debug.Stack())),
				)

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
