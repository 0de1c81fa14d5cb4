package support

import (
	"context"
	"errors"
	"html"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"purrr-love/internal/ports/storage"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("ticket not found")
)

const (
	minMessageLen = 10
	maxSubjectLen = 500
)

// ValidationError junta todos los problemas del formulario, como el banner original.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

type Service struct {
	repo     Repository
	now      func() time.Time
	sanitize *bluemonday.Policy
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		now:      time.Now,
		sanitize: bluemonday.StrictPolicy(),
	}
}

type CreateInput struct {
	Name     string
	Email    string
	Subject  string
	Message  string
	Priority Priority
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Ticket, error) {
	name := s.plainText(in.Name)
	email := strings.TrimSpace(in.Email)
	subject := s.plainText(in.Subject)
	message := s.plainText(in.Message)

	var problems []string
	if name == "" {
		problems = append(problems, "Name is required")
	}
	if email == "" {
		problems = append(problems, "Email is required")
	} else if !validEmail(email) {
		problems = append(problems, "Please enter a valid email address")
	}
	if subject == "" {
		problems = append(problems, "Subject is required")
	} else if utf8.RuneCountInString(subject) > maxSubjectLen {
		problems = append(problems, "Subject is too long")
	}
	if message == "" {
		problems = append(problems, "Message is required")
	} else if utf8.RuneCountInString(message) < minMessageLen {
		problems = append(problems, "Message must be at least 10 characters long")
	}

	priority := Priority(strings.ToLower(strings.TrimSpace(string(in.Priority))))
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		problems = append(problems, "Priority must be low, medium, high or urgent")
	}

	if len(problems) > 0 {
		return Ticket{}, &ValidationError{Problems: problems}
	}

	now := s.now().UTC()
	t := Ticket{
		ID:        uuid.NewString(),
		UserID:    strings.TrimSpace(userID),
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   message,
		Priority:  priority,
		Status:    StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

// plainText quita tags y devuelve el texto sin escapar; validamos y guardamos eso.
func (s *Service) plainText(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitize.Sanitize(v)))
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]Ticket, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

// ListAll es para admins; el handler valida el rol.
func (s *Service) ListAll(ctx context.Context, status Status) ([]Ticket, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidInput
	}
	return s.repo.ListAll(ctx, status)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Ticket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Ticket{}, ErrNotFound
	}
	if !status.Valid() {
		return Ticket{}, ErrInvalidInput
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Ticket{}, ErrNotFound
		}
		return Ticket{}, err
	}

	// Idempotente
	if t.Status == status {
		return t, nil
	}

	t.Status = status
	t.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

// validEmail acepta solo una dirección simple (sin nombre visible ni <>).
func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	if err != nil || a.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}
