package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keris/scholar-backend/internal/model"
	"github.com/keris/scholar-backend/internal/repository"
	"github.com/keris/scholar-backend/internal/storage"
	"github.com/rs/zerolog"
)

// ImageAction values accepted by Update.
const ImageActionRemove = "remove"

// ScholarService coordinates scholar records with their images.
// It holds no state of its own beyond its collaborators.
type ScholarService struct {
	scholarRepo repository.ScholarRepository
	images      storage.ImageStore
	now         func() time.Time
	log         zerolog.Logger
}

// NewScholarService creates a new ScholarService.
func NewScholarService(scholarRepo repository.ScholarRepository, images storage.ImageStore, log zerolog.Logger) *ScholarService {
	return &ScholarService{
		scholarRepo: scholarRepo,
		images:      images,
		now:         time.Now,
		log:         log.With().Str("component", "scholar_service").Logger(),
	}
}

// GetAll returns every scholar in store order.
func (s *ScholarService) GetAll(ctx context.Context) ([]model.Scholar, error) {
	scholars, err := s.scholarRepo.FindAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list scholars")
		return nil, err
	}
	return scholars, nil
}

// GetByID returns one scholar.
func (s *ScholarService) GetByID(ctx context.Context, id string) (*model.Scholar, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	scholar, err := s.scholarRepo.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Error().Err(err).Str("scholar_id", id).Msg("failed to get scholar")
		return nil, err
	}
	return scholar, nil
}

// Create inserts a scholar, uploading image first when one is given.
// An uploaded image is not removed if the insert fails afterwards.
func (s *ScholarService) Create(ctx context.Context, fields model.ScholarFields, image *model.ImageUpload) (*model.InsertResult, error) {
	var imageURL *string
	if image != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		imageURL = &url
	}

	scholar := &model.Scholar{
		Name:        fields.Name,
		Email:       fields.Email,
		IGAcc:       fields.IGAcc,
		About:       fields.About,
		Sponsor:     fields.Sponsor,
		Major:       model.ScalarOrList(fields.Major),
		Institution: model.ScalarOrList(fields.Institution),
		Image:       imageURL,
	}

	result, err := s.scholarRepo.Insert(ctx, scholar)
	if err != nil {
		ev := s.log.Error().Err(err)
		if imageURL != nil {
			ev = ev.Str("orphaned_image", *imageURL)
		}
		ev.Msg("failed to insert scholar")
		return nil, err
	}

	s.log.Info().Str("scholar_id", result.InsertedID.Hex()).Bool("has_image", imageURL != nil).Msg("scholar created")
	return result, nil
}

// Update merges the non-empty fields into the stored scholar.
// A new image takes precedence over imageAction=remove; with neither, the
// image is left untouched. The superseded image is deleted best-effort.
func (s *ScholarService) Update(ctx context.Context, id string, fields model.ScholarFields, image *model.ImageUpload, imageAction string) (*model.UpdateResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	current, err := s.scholarRepo.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Error().Err(err).Str("scholar_id", id).Msg("failed to load scholar for update")
		return nil, err
	}

	b := newUpdateBuilder()
	b.fields(fields)

	switch {
	case image != nil:
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		b.image(&url)
		s.deletePriorImage(ctx, current)
	case imageAction == ImageActionRemove:
		b.image(nil)
		s.deletePriorImage(ctx, current)
	}

	if !b.staged {
		return nil, ErrNoUpdates
	}

	result, err := s.scholarRepo.UpdateFields(ctx, oid, b.set)
	if err != nil {
		s.log.Error().Err(err).Str("scholar_id", id).Msg("failed to update scholar")
		return nil, err
	}
	return result, nil
}

// Delete removes a scholar. Its image, if any, stays in the blob store.
func (s *ScholarService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	deleted, err := s.scholarRepo.Delete(ctx, oid)
	if err != nil {
		s.log.Error().Err(err).Str("scholar_id", id).Msg("failed to delete scholar")
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ScholarService) uploadImage(ctx context.Context, image *model.ImageUpload) (string, error) {
	key := storage.NewImageKey(s.now(), image.Filename)
	url, err := s.images.Upload(ctx, key, image.Body, image.Size, image.ContentType)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("failed to upload image")
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}

func (s *ScholarService) deletePriorImage(ctx context.Context, current *model.Scholar) {
	if current.Image == nil || *current.Image == "" {
		return
	}
	key := storage.KeyFromURL(*current.Image)
	runBestEffort(ctx, s.log.With().Str("key", key).Logger(), "delete_prior_image", func(ctx context.Context) error {
		return s.images.Delete(ctx, key)
	})
}
