package template

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
)

// EmailTemplate is an admin-managed email template. Rendering and delivery
// are handled by the notification service; this service only stores them.
type EmailTemplate struct {
	id        uuid.UUID
	slug      string
	subject   string
	bodyHTML  string
	enabled   bool
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewEmailTemplate creates a new enabled template with validated fields.
func NewEmailTemplate(slug, subject, bodyHTML string) (*EmailTemplate, error) {
	if slug == "" {
		return nil, domain.NewValidationError("template slug is required")
	}
	if subject == "" {
		return nil, domain.NewValidationError("template subject is required")
	}
	if bodyHTML == "" {
		return nil, domain.NewValidationError("template body is required")
	}

	now := time.Now().UTC()
	return &EmailTemplate{
		id:        uuid.New(),
		slug:      slug,
		subject:   subject,
		bodyHTML:  bodyHTML,
		enabled:   true,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds an EmailTemplate from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	slug, subject, bodyHTML string,
	enabled bool,
	version int64,
	createdAt, updatedAt time.Time,
) *EmailTemplate {
	return &EmailTemplate{
		id:        id,
		slug:      slug,
		subject:   subject,
		bodyHTML:  bodyHTML,
		enabled:   enabled,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (t *EmailTemplate) ID() uuid.UUID        { return t.id }
func (t *EmailTemplate) Slug() string         { return t.slug }
func (t *EmailTemplate) Subject() string      { return t.subject }
func (t *EmailTemplate) BodyHTML() string     { return t.bodyHTML }
func (t *EmailTemplate) Enabled() bool        { return t.enabled }
func (t *EmailTemplate) Version() int64       { return t.version }
func (t *EmailTemplate) CreatedAt() time.Time { return t.createdAt }
func (t *EmailTemplate) UpdatedAt() time.Time { return t.updatedAt }

// --- Behavior ---

// Update applies partial updates to the template.
func (t *EmailTemplate) Update(subject, bodyHTML string) {
	if subject != "" {
		t.subject = subject
	}
	if bodyHTML != "" {
		t.bodyHTML = bodyHTML
	}
	t.version++
	t.updatedAt = time.Now().UTC()
}

// SetEnabled toggles whether the template is active.
func (t *EmailTemplate) SetEnabled(enabled bool) {
	t.enabled = enabled
	t.version++
	t.updatedAt = time.Now().UTC()
}

// Repository defines persistence operations for email templates.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*EmailTemplate, error)
	FindBySlug(ctx context.Context, slug string) (*EmailTemplate, error)
	List(ctx context.Context, page, limit int) ([]*EmailTemplate, int64, error)
	Save(ctx context.Context, tpl *EmailTemplate) error
	Update(ctx context.Context, tpl *EmailTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}
