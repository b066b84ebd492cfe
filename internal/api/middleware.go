// Файл: internal/api/middleware.go
package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"
)

// AuthMiddleware проверяет заголовок X-Api-Auth: HMAC-SHA256 от пути запроса
// на секретном ключе, hex-строкой. Служебный API предназначен для внутренних
// панелей, а не для пользователей бота.
func AuthMiddleware(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("X-Api-Auth")
			if authHeader == "" {
				http.Error(w, "Unauthorized: Missing X-Api-Auth header", http.StatusUnauthorized)
				return
			}

			mac := hmac.New(sha256.New, []byte(secretKey))
			mac.Write([]byte(r.URL.Path))
			expected := hex.EncodeToString(mac.Sum(nil))

			if !hmac.Equal([]byte(expected), []byte(authHeader)) {
				log.Printf("AuthMiddleware: неверная подпись для пути %s", r.URL.Path)
				http.Error(w, "Unauthorized: Invalid signature", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
