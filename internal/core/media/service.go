// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/yomira-directory/internal/platform/apperr"
	"github.com/taibuivan/yomira-directory/internal/platform/dberr"
	"github.com/taibuivan/yomira-directory/internal/platform/filestore"
	"github.com/taibuivan/yomira-directory/internal/platform/imageproc"
	"github.com/taibuivan/yomira-directory/internal/platform/validate"
	"github.com/taibuivan/yomira-directory/pkg/pagination"
	"github.com/taibuivan/yomira-directory/pkg/slice"
)

// # Service Layer

// Service turns uploaded files into persisted assets and owns their lifecycle.
type Service struct {
	repo      Repository
	files     *filestore.Store
	processor *imageproc.Processor
	logger    *slog.Logger
}

// NewService constructs a new media [Service].
func NewService(repo Repository, files *filestore.Store, processor *imageproc.Processor, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		files:     files,
		processor: processor,
		logger:    logger,
	}
}

// # Upload

/*
Upload stores a direct upload and its derivatives.

Description: The usage must be one of [Usages]. Steps run strictly in order:
allocate, write original, derive formats, persist. Nothing is persisted when
any step fails; files written before the failure are left behind.

Parameters:
  - context: context.Context (callers pass a non-cancellable context)
  - input: UploadInput

Returns:
  - *Asset: The persisted asset with its formats
  - error: VALIDATION_ERROR for bad input, INTERNAL_ERROR for storage failures
*/
func (service *Service) Upload(context context.Context, input UploadInput) (*Asset, error) {
	usage := strings.TrimSpace(input.Usage)

	validator := &validate.Validator{}
	validator.Required(FieldUsage, usage)
	if usage != "" {
		validator.Custom(FieldUsage, !Usage(usage).Valid(), "Must be one of: "+strings.Join(UsageNames(), ", "))
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	return service.store(context, usage, input.File, input.Name, input.Description)
}

/*
UploadForEntity stores an image owned by an entity kind (e.g., a taxonomy image).

The entity name becomes the usage and the storage directory, so it must
satisfy the entity-name rule.
*/
func (service *Service) UploadForEntity(context context.Context, entityName string, file *File, description *string) (*Asset, error) {
	validator := &validate.Validator{}
	validator.EntityName("entityName", entityName)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	return service.store(context, entityName, file, nil, description)
}

// store runs the upload pipeline for an already validated usage.
func (service *Service) store(context context.Context, usage string, file *File, name, description *string) (*Asset, error) {

	// 1. Input validation
	if file == nil || len(file.Buffer) == 0 {
		return nil, validate.RequiredError(FieldFile, "An image file is required")
	}

	displayName := strings.TrimSpace(file.OriginalName)
	if name != nil && strings.TrimSpace(*name) != "" {
		displayName = strings.TrimSpace(*name)
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, displayName).MaxLen(FieldName, displayName, nameMaxLen)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	cleanDescription, err := validate.Description(description)
	if err != nil {
		return nil, err
	}

	// 2. Content sniffing decides the codec, extension and MIME type
	probe, err := service.processor.Inspect(file.Buffer)
	if err != nil {
		return nil, validate.RequiredError(FieldFile, "Must be a jpeg, png, gif, bmp, tiff or webp image")
	}

	// 3. Original
	allocation, err := service.files.Allocate(context, usage, probe.Extension())
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("allocate upload path: %w", err))
	}

	if err := service.files.Write(context, allocation.Key, file.Buffer); err != nil {
		return nil, apperr.Internal(fmt.Errorf("write original: %w", err))
	}

	// 4. Derivatives
	derivatives, err := service.processor.CreateFormats(context, file.Buffer, allocation.Dir, allocation.FileName)
	if err != nil {
		service.logger.Error("media_derivatives_failed",
			slog.String("key", allocation.Key),
			slog.Any("error", err),
		)
		return nil, apperr.Internal(fmt.Errorf("create image formats: %w", err))
	}

	// 5. Persistence
	asset := &Asset{
		Name:           displayName,
		StoredFileName: allocation.FileName,
		Mime:           "image/" + probe.Codec,
		Description:    cleanDescription,
		Size:           int64(len(file.Buffer)),
		Width:          probe.Width,
		Height:         probe.Height,
		URL:            service.files.URL(allocation.Key),
		Usage:          usage,
		ImageFormats: slice.Map(derivatives, func(derivative imageproc.Derivative) ImageFormat {
			return ImageFormat{
				Format: derivative.Format,
				Width:  derivative.Width,
				Height: derivative.Height,
				Size:   derivative.Size,
				URL:    service.files.URL(derivative.Key),
			}
		}),
	}

	if err := service.repo.Create(context, asset); err != nil {
		return nil, err
	}

	service.logger.Info("media_uploaded",
		slog.Int64("media_id", asset.ID),
		slog.String("usage", usage),
		slog.String("key", allocation.Key),
		slog.Int("formats", len(asset.ImageFormats)),
	)

	return asset, nil
}

// # Lookups

/*
Get returns one asset with its formats.

Returns:
  - *Asset: The hydrated asset
  - error: NOT_FOUND when the id does not exist
*/
func (service *Service) Get(context context.Context, id int64) (*Asset, error) {
	asset, err := service.repo.FindByID(context, id)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.NotFound("Media")
		}
		return nil, err
	}
	return asset, nil
}

// GetMany returns the existing assets among ids keyed by ID. Missing ids are absent from the map.
func (service *Service) GetMany(context context.Context, ids []int64) (map[int64]*Asset, error) {
	return service.repo.FindByIDs(context, ids)
}

/*
List returns a page of assets with their formats.

The limit is clamped to [pagination.MaxLimit] before querying, and the
returned metadata reflects the clamped value.
*/
func (service *Service) List(context context.Context, filter Filter, params pagination.Params) ([]*Asset, pagination.Meta, error) {
	params = params.Clamp()

	if filter.Usage != "" {
		validator := &validate.Validator{}
		validator.EntityName(FieldUsage, filter.Usage)
		if err := validator.Err(); err != nil {
			return nil, pagination.Meta{}, err
		}
	}

	assets, total, err := service.repo.List(context, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return assets, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// # Management

/*
UpdateMeta changes the name and/or description of an asset.

Stored files and formats are not touched.
*/
func (service *Service) UpdateMeta(context context.Context, id int64, input UpdateInput) (*Asset, error) {
	asset, err := service.Get(context, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)

		validator := &validate.Validator{}
		validator.Required(FieldName, name).MaxLen(FieldName, name, nameMaxLen)
		if err := validator.Err(); err != nil {
			return nil, err
		}
		asset.Name = name
	}

	if input.Description != nil {
		description, err := validate.Description(input.Description)
		if err != nil {
			return nil, err
		}
		asset.Description = description
	}

	if err := service.repo.UpdateMeta(context, asset); err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.NotFound("Media")
		}
		return nil, err
	}

	service.logger.Info("media_updated", slog.Int64("media_id", asset.ID))
	return asset, nil
}

/*
Delete removes every stored file of an asset, then its rows.

Description: All unlinks are attempted first. Already missing files are
ignored; any other unlink failure aborts the delete and leaves the rows in
place so the call can be retried.

Returns:
  - *Asset: Snapshot of the deleted asset
  - error: NOT_FOUND, or INTERNAL_ERROR on unlink failure
*/
func (service *Service) Delete(context context.Context, id int64) (*Asset, error) {
	asset, err := service.Get(context, id)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(asset.ImageFormats)+1)
	for _, imageFormat := range asset.ImageFormats {
		urls = append(urls, imageFormat.URL)
	}
	urls = append(urls, asset.URL)

	var unlinkErrs []error
	for _, url := range urls {
		if err := service.files.UnlinkURL(context, url); err != nil {
			unlinkErrs = append(unlinkErrs, fmt.Errorf("unlink %s: %w", url, err))
		}
	}
	if len(unlinkErrs) > 0 {
		return nil, apperr.Internal(errors.Join(unlinkErrs...))
	}

	if err := service.repo.Delete(context, id); err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.NotFound("Media")
		}
		return nil, err
	}

	service.logger.Info("media_deleted",
		slog.Int64("media_id", asset.ID),
		slog.Int("files", len(urls)),
	)

	return asset, nil
}

// DeleteQuietly deletes an asset replaced or orphaned by another entity.
// Failures are logged and never returned.
func (service *Service) DeleteQuietly(context context.Context, id int64) {
	if _, err := service.Delete(context, id); err != nil {
		service.logger.Warn("media_cleanup_failed",
			slog.Int64("media_id", id),
			slog.Any("error", err),
		)
	}
}

// Release deletes an asset that an entity no longer shows. Assets another
// taxonomy or company still references are kept. Failures are logged only.
func (service *Service) Release(context context.Context, id int64) {
	referenced, err := service.repo.Referenced(context, id)
	if err != nil {
		service.logger.Warn("media_release_failed",
			slog.Int64("media_id", id),
			slog.Any("error", err),
		)
		return
	}
	if referenced {
		service.logger.Info("media_release_skipped", slog.Int64("media_id", id))
		return
	}
	service.DeleteQuietly(context, id)
}
