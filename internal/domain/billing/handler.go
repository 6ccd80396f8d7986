// Package billing recibe los eventos del proveedor de pagos y entrega el
// entitlement de la cuenta. La mutación se espera de forma síncrona: la
// respuesta HTTP refleja el resultado real, no un fire-and-forget.
package billing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"petsoft/internal/domain/users"
	"petsoft/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

const maxEventBytes = 64 << 10 // 64KB alcanza de sobra para un evento

func RegisterRoutes(r chi.Router, svc *users.Service, webhookSecret string, log logger.Logger) {
	r.Post("/api/stripe", webhookHandler(svc, webhookSecret, log))
}

// providerEvent es el subset del evento que nos importa.
type providerEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			CustomerEmail string `json:"customer_email"`
		} `json:"object"`
	} `json:"data"`
}

func webhookHandler(svc *users.Service, secret string, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid payload.")
			return
		}

		// Autenticidad primero. Solo en dev (sin secret configurado) se salta.
		if secret != "" {
			if err := verifySignature(payload, r.Header.Get("Stripe-Signature"), secret, time.Now()); err != nil {
				log.Warn("webhook signature rejected", map[string]any{"reason": err.Error()})
				writeMessage(w, http.StatusBadRequest, "Invalid signature.")
				return
			}
		} else {
			log.Warn("webhook signature verification disabled (no secret configured)", nil)
		}

		var event providerEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid payload.")
			return
		}

		email := strings.TrimSpace(event.Data.Object.CustomerEmail)
		if email == "" {
			writeMessage(w, http.StatusBadRequest, "Invalid payload.")
			return
		}

		// fullfill: se espera el resultado antes de responder
		if err := svc.GrantAccess(r.Context(), email); err != nil {
			if errors.Is(err, users.ErrNotFound) {
				// email desconocido: explícito, no un 200 mentiroso
				writeMessage(w, http.StatusNotFound, "User not found.")
				return
			}
			log.Error("webhook fulfillment failed", map[string]any{"error": err.Error()})
			writeMessage(w, http.StatusInternalServerError, "Could not fulfill order.")
			return
		}

		log.Info("entitlement granted", map[string]any{"event_type": event.Type})
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
	}
}

// writeJSON/writeMessage duplicados a propósito por módulo (ver users/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
