// Package client es el cliente Go de la API, con una proyección optimista
// de la lista de pets (Store) encima.
package client

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"time"

	"petsoft/internal/platform/httpclient"
)

type Pet struct {
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

type PetForm struct {
	Name     string `json:"name"`
	Species  string `json:"species"`
	Age      int    `json:"age"`
	ImageURL string `json:"image_url,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Client llama a los endpoints del server llevando la cookie de sesión.
type Client struct {
	http *httpclient.Client
}

func New(baseURL string) (*Client, error) {
	hc, err := httpclient.NewWithBaseURL(baseURL, 15*time.Second)
	if err != nil {
		return nil, err
	}

	// jar propio: la sesión vive acá
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	hc.HTTP.Jar = jar

	return &Client{http: hc}, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) error {
	return c.http.DoJSON(ctx, http.MethodPost, "/auth/signup", credentials{Email: email, Password: password}, nil)
}

func (c *Client) LogIn(ctx context.Context, email, password string) error {
	return c.http.DoJSON(ctx, http.MethodPost, "/auth/login", credentials{Email: email, Password: password}, nil)
}

func (c *Client) LogOut(ctx context.Context) error {
	return c.http.DoJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) ListPets(ctx context.Context) ([]Pet, error) {
	var out []Pet
	if err := c.http.DoJSON(ctx, http.MethodGet, "/pets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddPet(ctx context.Context, f PetForm) (Pet, error) {
	var out Pet
	if err := c.http.DoJSON(ctx, http.MethodPost, "/pets", f, &out); err != nil {
		return Pet{}, err
	}
	return out, nil
}

func (c *Client) EditPet(ctx context.Context, petID string, f PetForm) (Pet, error) {
	var out Pet
	if err := c.http.DoJSON(ctx, http.MethodPatch, "/pets/"+petID, f, &out); err != nil {
		return Pet{}, err
	}
	return out, nil
}

func (c *Client) DeletePet(ctx context.Context, petID string) error {
	return c.http.DoJSON(ctx, http.MethodDelete, "/pets/"+petID, nil, nil)
}
