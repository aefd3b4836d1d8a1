package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skylift-transfers/service-shuttle/internal/domain/template"
	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
)

// EmailTemplateModel is the GORM model for the email_templates table.
type EmailTemplateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Slug      string    `gorm:"uniqueIndex;not null;size:100"`
	Subject   string    `gorm:"not null;size:300"`
	BodyHTML  string    `gorm:"not null;type:text"`
	Enabled   bool      `gorm:"not null;default:true"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (EmailTemplateModel) TableName() string {
	return "email_templates"
}

// GormTemplateRepository is the GORM-based implementation of template.Repository.
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewGormTemplateRepository creates a new GormTemplateRepository.
func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

// FindByID retrieves a template by ID.
func (r *GormTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*template.EmailTemplate, error) {
	var model EmailTemplateModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("EmailTemplate", id.String())
		}
		return nil, fmt.Errorf("failed to find template by ID: %w", err)
	}
	return toDomainTemplate(&model), nil
}

// FindBySlug retrieves a template by its slug.
func (r *GormTemplateRepository) FindBySlug(ctx context.Context, slug string) (*template.EmailTemplate, error) {
	var model EmailTemplateModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("EmailTemplate", slug)
		}
		return nil, fmt.Errorf("failed to find template by slug: %w", err)
	}
	return toDomainTemplate(&model), nil
}

// List retrieves templates with pagination.
func (r *GormTemplateRepository) List(ctx context.Context, page, limit int) ([]*template.EmailTemplate, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&EmailTemplateModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count templates: %w", err)
	}

	var models []EmailTemplateModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("slug ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}

	templates := make([]*template.EmailTemplate, len(models))
	for i, m := range models {
		templates[i] = toDomainTemplate(&m)
	}
	return templates, total, nil
}

// Save persists a new template.
func (r *GormTemplateRepository) Save(ctx context.Context, tpl *template.EmailTemplate) error {
	if err := r.db.WithContext(ctx).Create(toTemplateModel(tpl)).Error; err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

// Update persists changes to an existing template with optimistic locking.
func (r *GormTemplateRepository) Update(ctx context.Context, tpl *template.EmailTemplate) error {
	model := toTemplateModel(tpl)

	expectedVersion := tpl.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&EmailTemplateModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"subject":    model.Subject,
			"body_html":  model.BodyHTML,
			"enabled":    model.Enabled,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("template was modified by another transaction")
	}
	return nil
}

// Delete removes a template record.
func (r *GormTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&EmailTemplateModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("EmailTemplate", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toTemplateModel(t *template.EmailTemplate) *EmailTemplateModel {
	return &EmailTemplateModel{
		ID:        t.ID(),
		Slug:      t.Slug(),
		Subject:   t.Subject(),
		BodyHTML:  t.BodyHTML(),
		Enabled:   t.Enabled(),
		Version:   t.Version(),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}
}

func toDomainTemplate(m *EmailTemplateModel) *template.EmailTemplate {
	return template.Reconstruct(
		m.ID,
		m.Slug,
		m.Subject,
		m.BodyHTML,
		m.Enabled,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
