package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skylift-transfers/service-shuttle/internal/domain/template"
	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
)

// CreateTemplateRequest holds the data needed to create an email template.
type CreateTemplateRequest struct {
	Slug     string `json:"slug" binding:"required"`
	Subject  string `json:"subject" binding:"required"`
	BodyHTML string `json:"body_html" binding:"required"`
}

// UpdateTemplateRequest holds partial template updates. Empty fields are kept.
type UpdateTemplateRequest struct {
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Enabled  *bool  `json:"enabled"`
}

// TemplateDTO is the response representation of an email template.
type TemplateDTO struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Subject   string    `json:"subject"`
	BodyHTML  string    `json:"body_html"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateService manages admin email templates.
type TemplateService struct {
	repo   template.Repository
	logger *zap.Logger
}

// NewTemplateService creates a TemplateService.
func NewTemplateService(repo template.Repository, logger *zap.Logger) *TemplateService {
	return &TemplateService{repo: repo, logger: logger}
}

// CreateTemplate creates a new email template. Slugs are unique.
func (s *TemplateService) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*TemplateDTO, error) {
	if existing, err := s.repo.FindBySlug(ctx, req.Slug); err == nil && existing != nil {
		return nil, domain.NewConflictError("a template with this slug already exists")
	}

	tpl, err := template.NewEmailTemplate(req.Slug, req.Subject, req.BodyHTML)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.repo.Save(ctx, tpl); err != nil {
		return nil, err
	}

	s.logger.Info("email template created", zap.String("slug", tpl.Slug()))

	dto := toTemplateDTO(tpl)
	return &dto, nil
}

// GetTemplate retrieves a template by ID.
func (s *TemplateService) GetTemplate(ctx context.Context, id uuid.UUID) (*TemplateDTO, error) {
	tpl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toTemplateDTO(tpl)
	return &dto, nil
}

// ListTemplates returns a paginated list of templates.
func (s *TemplateService) ListTemplates(ctx context.Context, page, limit int) ([]TemplateDTO, int64, error) {
	templates, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]TemplateDTO, len(templates))
	for i, tpl := range templates {
		dtos[i] = toTemplateDTO(tpl)
	}
	return dtos, total, nil
}

// UpdateTemplate applies partial updates to a template.
func (s *TemplateService) UpdateTemplate(ctx context.Context, id uuid.UUID, req UpdateTemplateRequest) (*TemplateDTO, error) {
	tpl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tpl.Update(req.Subject, req.BodyHTML)
	if req.Enabled != nil {
		tpl.SetEnabled(*req.Enabled)
	}

	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, err
	}

	dto := toTemplateDTO(tpl)
	return &dto, nil
}

// DeleteTemplate removes a template.
func (s *TemplateService) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func toTemplateDTO(tpl *template.EmailTemplate) TemplateDTO {
	return TemplateDTO{
		ID:        tpl.ID(),
		Slug:      tpl.Slug(),
		Subject:   tpl.Subject(),
		BodyHTML:  tpl.BodyHTML(),
		Enabled:   tpl.Enabled(),
		CreatedAt: tpl.CreatedAt(),
		UpdatedAt: tpl.UpdatedAt(),
	}
}
