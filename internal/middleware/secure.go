package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecureHeaders aplica los headers de seguridad estándar a toda respuesta.
// En producción además exige HTTPS (detrás del proxy vía X-Forwarded-Proto).
func SecureHeaders(isProduction bool) func(http.Handler) http.Handler {
	sec := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        isProduction,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	})
	return sec.Handler
}
