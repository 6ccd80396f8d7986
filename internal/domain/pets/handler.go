package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"petsoft/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", addPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))

		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}", editPetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))
	})
}

type petFormRequest struct {
	Name     string `json:"name"`
	Species  string `json:"species"`
	Age      int    `json:"age"`
	ImageURL string `json:"image_url"`
	Notes    string `json:"notes"`
}

type petResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Age         int       `json:"age"`
	ImageURL    string    `json:"image_url,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func addPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// La identidad se resuelve una sola vez acá, en el borde;
		// el coordinator decide si alcanza (claims vacíos => 401).
		claims, _ := middleware.GetClaims(r.Context())

		var req petFormRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// shape roto (json inválido o tipo de campo equivocado)
			writeMessage(w, http.StatusBadRequest, "Invalid pet data.")
			return
		}

		p, err := svc.Add(r.Context(), claims.UserID, toForm(req))
		if err != nil {
			writeActionError(w, err, "Could not add pet.")
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Not authenticated.")
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "Something went wrong.")
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			// sin sesión no revelamos si el recurso existe
			writeMessage(w, http.StatusUnauthorized, "Not authenticated.")
			return
		}

		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeMessage(w, http.StatusNotFound, "Pet not found.")
			return
		}
		if p.OwnerUserID != claims.UserID {
			writeMessage(w, http.StatusForbidden, "Not authorized.")
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func editPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req petFormRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid pet data.")
			return
		}

		p, err := svc.Edit(r.Context(), claims.UserID, chi.URLParam(r, "petID"), toForm(req))
		if err != nil {
			writeActionError(w, err, "Could not edit pet.")
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "petID")); err != nil {
			writeActionError(w, err, "Could not delete pet.")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// writeActionError mapea la taxonomía del coordinator al contrato
// {message} + status. mutationMsg es el texto opaco por acción.
func writeActionError(w http.ResponseWriter, err error, mutationMsg string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, "Invalid pet data.")
	case errors.Is(err, ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, "Not authenticated.")
	case errors.Is(err, ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Pet not found.")
	case errors.Is(err, ErrNotAuthorized):
		writeMessage(w, http.StatusForbidden, "Not authorized.")
	default:
		writeMessage(w, http.StatusInternalServerError, mutationMsg)
	}
}

func toForm(req petFormRequest) Form {
	return Form{
		Name:     req.Name,
		Species:  req.Species,
		Age:      req.Age,
		ImageURL: req.ImageURL,
		Notes:    req.Notes,
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Species:     p.Species,
		Age:         p.Age,
		ImageURL:    p.ImageURL,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
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
