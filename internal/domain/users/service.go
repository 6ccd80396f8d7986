package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
)

// mismo costo que usaba la app original
const bcryptCost = 10

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type Service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// SignUp crea la cuenta con la credencial hasheada.
// Un fallo de hashing/storage se devuelve tal cual: el caller lo trata como fatal.
func (s *Service) SignUp(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if err := s.validate.Struct(credentials{Email: email, Password: password}); err != nil {
		return User{}, ErrInvalidInput
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	u := User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: string(hashed),
		HasAccess:      false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

// Authenticate valida email/password.
// Una sola señal de fallo (ErrInvalidCredentials) para no filtrar si el email existe.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	u, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

// GrantAccess prende el flag de entitlement del usuario con ese email.
// Lo invoca únicamente el webhook de pagos.
func (s *Service) GrantAccess(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrInvalidInput
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return ErrNotFound
	}

	if u.HasAccess {
		// idempotente: re-entregar un evento de pago no cambia nada
		return nil
	}

	u.HasAccess = true
	u.UpdatedAt = s.now()
	return s.repo.Update(ctx, u)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
