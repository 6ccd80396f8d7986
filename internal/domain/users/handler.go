package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"petsoft/internal/middleware"
	"petsoft/internal/platform/logger"
	"petsoft/internal/platform/session"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, sessions *session.Manager, log logger.Logger) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/signup", signUpHandler(svc, sessions, log))
		ar.Post("/login", logInHandler(svc, sessions, log))
		ar.Post("/logout", logOutHandler(sessions, log))
		ar.Get("/me", meHandler(svc))
	})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	HasAccess bool   `json:"has_access"`
}

func signUpHandler(svc *Service, sessions *session.Manager, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid credentials.")
			return
		}

		u, err := svc.SignUp(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				writeMessage(w, http.StatusBadRequest, "Invalid credentials.")
			case errors.Is(err, ErrEmailTaken):
				writeMessage(w, http.StatusConflict, "Email already in use.")
			default:
				// fallo de hashing/storage: fatal para este request
				log.Error("sign-up failed", map[string]any{"error": err.Error()})
				writeMessage(w, http.StatusInternalServerError, "Something went wrong.")
			}
			return
		}

		// igual que la app original: sign-up deja la sesión establecida
		if _, err := sessions.Issue(r.Context(), w, u.ID); err != nil {
			log.Error("issue session failed", map[string]any{"error": err.Error()})
			writeMessage(w, http.StatusInternalServerError, "Something went wrong.")
			return
		}

		writeJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

func logInHandler(svc *Service, sessions *session.Manager, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid credentials.")
			return
		}

		u, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			// credenciales malas => no hay sesión; sin distinguir causa
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials.")
			return
		}

		if _, err := sessions.Issue(r.Context(), w, u.ID); err != nil {
			log.Error("issue session failed", map[string]any{"error": err.Error()})
			writeMessage(w, http.StatusInternalServerError, "Something went wrong.")
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func logOutHandler(sessions *session.Manager, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Destroy(r.Context(), w, r); err != nil {
			log.Warn("destroy session failed", map[string]any{"error": err.Error()})
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func meHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Not authenticated.")
			return
		}

		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Not authenticated.")
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		HasAccess: u.HasAccess,
	}
}

// writeJSON/writeMessage están duplicados a propósito en los handlers de cada
// módulo para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
