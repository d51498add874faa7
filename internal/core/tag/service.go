// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/yomira-directory/internal/platform/apperr"
	"github.com/taibuivan/yomira-directory/internal/platform/dberr"
	"github.com/taibuivan/yomira-directory/internal/platform/validate"
	"github.com/taibuivan/yomira-directory/pkg/pagination"
	"github.com/taibuivan/yomira-directory/pkg/slug"
)

// Service manages tags per entity namespace.
type Service struct {
	repo   Repository
	locker slug.Locker
	logger *slog.Logger
}

// NewService constructs a tag [Service]. locker may be nil.
func NewService(repo Repository, locker slug.Locker, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		logger: logger,
	}
}

// # Lookups

// Get returns one tag or NOT_FOUND.
func (service *Service) Get(context context.Context, id int64) (*Tag, error) {
	tag, err := service.repo.FindByID(context, id)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.NotFound("Tag")
		}
		return nil, err
	}
	return tag, nil
}

/*
List returns a page of tags.

Unknown order fields or directions are rejected; an empty page is not an error.
*/
func (service *Service) List(context context.Context, filter Filter, params pagination.Params) ([]*Tag, pagination.Meta, error) {
	params = params.Clamp()

	validator := &validate.Validator{}
	if filter.OrderField != "" {
		validator.OneOf("orderField", filter.OrderField, OrderFields...)
	}
	if filter.Order != "" {
		validator.OneOf("order", strings.ToLower(filter.Order), "asc", "desc")
	}
	if filter.EntityName != "" {
		validator.EntityName(FieldEntityName, filter.EntityName)
	}
	if err := validator.Err(); err != nil {
		return nil, pagination.Meta{}, err
	}

	tags, total, err := service.repo.List(context, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return tags, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// # Management

/*
Create validates and stores a new tag.

Description: The name is formatted and must be unique within the entity
name. An explicit slug must match the loose slug pattern and be free; without
one, a unique slug is generated under the slug lock.

Returns:
  - *Tag: The stored tag
  - error: VALIDATION_ERROR (including duplicates) or storage failures
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Tag, error) {
	name, err := validate.FormatName(input.Name)
	if err != nil {
		return nil, err
	}

	entityName := strings.TrimSpace(input.EntityName)
	explicitSlug := trimmed(input.Slug)

	validator := &validate.Validator{}
	validator.EntityName(FieldEntityName, entityName)
	if explicitSlug != "" {
		validator.LooseSlug(FieldSlug, explicitSlug)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	tag := &Tag{Name: name, EntityName: entityName}

	if err := service.ensureNameFree(context, tag, 0); err != nil {
		return nil, err
	}

	if err := service.persist(context, tag, explicitSlug, explicitSlug == "", service.repo.Create); err != nil {
		return nil, err
	}

	service.logger.Info("tag_created",
		slog.Int64("tag_id", tag.ID),
		slog.String("entity_name", tag.EntityName),
		slog.String("slug", tag.Slug),
	)
	return tag, nil
}

/*
Update applies the present fields of input.

The slug is regenerated only when the name changes and no explicit slug is
given, or when moving to another entity name whose namespace already uses it.
*/
func (service *Service) Update(context context.Context, id int64, input UpdateInput) (*Tag, error) {
	tag, err := service.Get(context, id)
	if err != nil {
		return nil, err
	}

	original := *tag
	explicitSlug := trimmed(input.Slug)

	if input.Name != nil {
		name, err := validate.FormatName(*input.Name)
		if err != nil {
			return nil, err
		}
		tag.Name = name
	}

	validator := &validate.Validator{}
	if input.EntityName != nil {
		tag.EntityName = strings.TrimSpace(*input.EntityName)
		validator.EntityName(FieldEntityName, tag.EntityName)
	}
	if explicitSlug != "" {
		validator.LooseSlug(FieldSlug, explicitSlug)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	nameChanged := tag.Name != original.Name
	entityChanged := tag.EntityName != original.EntityName

	if nameChanged || entityChanged {
		if err := service.ensureNameFree(context, tag, tag.ID); err != nil {
			return nil, err
		}
	}

	regenerate := explicitSlug == "" && nameChanged
	if explicitSlug == "" && !nameChanged && entityChanged {
		taken, err := service.repo.SlugExists(context, tag.EntityName, tag.Slug, tag.ID)
		if err != nil {
			return nil, err
		}
		regenerate = taken
	}

	slugValue := explicitSlug
	if !regenerate && slugValue == "" {
		slugValue = tag.Slug
	}

	if err := service.persist(context, tag, slugValue, regenerate, service.repo.Update); err != nil {
		return nil, err
	}

	service.logger.Info("tag_updated", slog.Int64("tag_id", tag.ID))
	return tag, nil
}

// Delete removes a tag.
func (service *Service) Delete(context context.Context, id int64) error {
	if err := service.repo.Delete(context, id); err != nil {
		if dberr.IsNotFound(err) {
			return apperr.NotFound("Tag")
		}
		return err
	}

	service.logger.Info("tag_deleted", slog.Int64("tag_id", id))
	return nil
}

// # Helpers

func (service *Service) ensureNameFree(context context.Context, tag *Tag, excludeID int64) error {
	taken, err := service.repo.NameExists(context, tag.EntityName, tag.Name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Duplicate(FieldName, "A tag with this name already exists for this entity")
	}
	return nil
}

/*
persist stores tag with either an explicit slug or a generated one.

When generate is false, slugValue is checked for conflicts (unless it is the
tag's current slug) and saved as is.
*/
func (service *Service) persist(ctx context.Context, tag *Tag, slugValue string, generate bool, save func(context.Context, *Tag) error) error {
	if !generate && slugValue != "" {
		if slugValue != tag.Slug || tag.ID == 0 {
			taken, err := service.repo.SlugExists(ctx, tag.EntityName, slugValue, tag.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Duplicate(FieldSlug, "A tag with this slug already exists for this entity")
			}
		}
		tag.Slug = slugValue
		return service.save(ctx, tag, save)
	}

	exists := func(ctx context.Context, candidate string) (bool, error) {
		return service.repo.SlugExists(ctx, tag.EntityName, candidate, tag.ID)
	}

	err := slug.Reserve(ctx, service.locker, "tag:"+tag.EntityName, tag.Name, exists, func(candidate string) error {
		tag.Slug = candidate
		return service.save(ctx, tag, save)
	})
	return validate.SlugFailure(err)
}

func (service *Service) save(context context.Context, tag *Tag, save func(context.Context, *Tag) error) error {
	if err := save(context, tag); err != nil {
		if dberr.IsNotFound(err) {
			return apperr.NotFound("Tag")
		}
		return err
	}
	return nil
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
