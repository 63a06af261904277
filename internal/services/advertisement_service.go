package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/fitcentre/internal/models"
	apperrors "github.com/charlesng35/fitcentre/pkg/errors"
)

// AdvertisementInput carries the fields of a create or update request. On
// update, nil fields are left untouched.
type AdvertisementInput struct {
	Title        *string
	Description  *string
	ImageURL     *string
	Type         *models.AdvertisementType
	RedirectLink *string
	Sequence     *int
	Status       *int
}

// AdvertisementFilters narrows the admin listing.
type AdvertisementFilters struct {
	Title  string
	Type   models.AdvertisementType
	Status *int
}

// ListAdvertisementsOptions controls pagination of advertisements.
type ListAdvertisementsOptions struct {
	Page    int
	PerPage int
	Filters AdvertisementFilters
}

// AdvertisementService manages promotional banners shown in the consumer app.
type AdvertisementService struct {
	db *gorm.DB
}

// NewAdvertisementService constructs an AdvertisementService.
func NewAdvertisementService(db *gorm.DB) (*AdvertisementService, error) {
	if db == nil {
		return nil, errors.New("advertisement service: db is required")
	}
	return &AdvertisementService{db: db}, nil
}

// Create stores a new advertisement. Status defaults to active and sequence to
// one past the current highest.
func (s *AdvertisementService) Create(ctx context.Context, input AdvertisementInput) (*models.Advertisement, error) {
	ctx = ensureContext(ctx)

	ad := &models.Advertisement{Status: models.AdvertisementActive}
	if err := applyAdvertisementInput(ad, input); err != nil {
		return nil, err
	}
	if ad.Title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	if ad.Type == "" {
		return nil, apperrors.NewBadRequest("type is required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.Sequence == nil {
			var highest sql.NullInt64
			if err := tx.Model(&models.Advertisement{}).Select("MAX(sequence)").Scan(&highest).Error; err != nil {
				return fmt.Errorf("advertisement service: next sequence: %w", err)
			}
			ad.Sequence = int(highest.Int64) + 1
		}
		if err := tx.Create(ad).Error; err != nil {
			return fmt.Errorf("advertisement service: create: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ad, nil
}

// Get loads a single advertisement.
func (s *AdvertisementService) Get(ctx context.Context, id string) (*models.Advertisement, error) {
	ctx = ensureContext(ctx)

	var ad models.Advertisement
	err := s.db.WithContext(ctx).Take(&ad, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAdvertisementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("advertisement service: load: %w", err)
	}
	return &ad, nil
}

// List returns a filtered page of advertisements ordered by sequence.
func (s *AdvertisementService) List(ctx context.Context, opts ListAdvertisementsOptions) ([]models.Advertisement, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage := normalisePage(opts.Page, opts.PerPage)

	query := s.db.WithContext(ctx).Model(&models.Advertisement{})
	if title := strings.TrimSpace(opts.Filters.Title); title != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}
	if opts.Filters.Type != "" {
		query = query.Where("type = ?", opts.Filters.Type)
	}
	if opts.Filters.Status != nil {
		query = query.Where("status = ?", *opts.Filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("advertisement service: count: %w", err)
	}

	var ads []models.Advertisement
	if err := query.
		Order("sequence ASC").
		Order("created_at ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&ads).Error; err != nil {
		return nil, 0, fmt.Errorf("advertisement service: list: %w", err)
	}
	return ads, total, nil
}

// ListActive returns every active advertisement in display order.
func (s *AdvertisementService) ListActive(ctx context.Context) ([]models.Advertisement, error) {
	ctx = ensureContext(ctx)

	var ads []models.Advertisement
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.AdvertisementActive).
		Order("sequence ASC").
		Order("created_at ASC").
		Find(&ads).Error; err != nil {
		return nil, fmt.Errorf("advertisement service: list active: %w", err)
	}
	return ads, nil
}

// Update applies the provided fields to an advertisement.
func (s *AdvertisementService) Update(ctx context.Context, id string, input AdvertisementInput) (*models.Advertisement, error) {
	ctx = ensureContext(ctx)

	ad, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyAdvertisementInput(ad, input); err != nil {
		return nil, err
	}
	if ad.Title == "" {
		return nil, apperrors.NewBadRequest("title cannot be empty")
	}

	if err := s.db.WithContext(ctx).Save(ad).Error; err != nil {
		return nil, fmt.Errorf("advertisement service: update: %w", err)
	}
	return ad, nil
}

// Delete removes an advertisement.
func (s *AdvertisementService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Advertisement{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("advertisement service: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAdvertisementNotFound
	}
	return nil
}

func applyAdvertisementInput(ad *models.Advertisement, input AdvertisementInput) error {
	if input.Title != nil {
		ad.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ad.Description = strings.TrimSpace(*input.Description)
	}
	if input.ImageURL != nil {
		ad.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return apperrors.NewBadRequest("type must be one of classes, membership_plan or url")
		}
		ad.Type = *input.Type
	}
	if input.RedirectLink != nil {
		ad.RedirectLink = strings.TrimSpace(*input.RedirectLink)
	}
	if input.Sequence != nil {
		if *input.Sequence < 0 {
			return apperrors.NewBadRequest("sequence cannot be negative")
		}
		ad.Sequence = *input.Sequence
	}
	if input.Status != nil {
		if *input.Status != models.AdvertisementActive && *input.Status != models.AdvertisementInactive {
			return apperrors.NewBadRequest("status must be 0 or 1")
		}
		ad.Status = *input.Status
	}
	if ad.Type == models.AdvertisementURL && ad.RedirectLink == "" {
		return apperrors.NewBadRequest("redirect link is required for url advertisements")
	}
	return nil
}
