// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package company

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/taibuivan/yomira-directory/internal/core/media"
	"github.com/taibuivan/yomira-directory/internal/core/taxonomy"
	"github.com/taibuivan/yomira-directory/internal/platform/apperr"
	"github.com/taibuivan/yomira-directory/internal/platform/dberr"
	"github.com/taibuivan/yomira-directory/internal/platform/validate"
	"github.com/taibuivan/yomira-directory/pkg/pagination"
	"github.com/taibuivan/yomira-directory/pkg/pointer"
	"github.com/taibuivan/yomira-directory/pkg/slice"
	"github.com/taibuivan/yomira-directory/pkg/slug"
)

// Media is the part of the media service companies depend on.
type Media interface {
	Upload(context context.Context, input media.UploadInput) (*media.Asset, error)
	GetMany(context context.Context, ids []int64) (map[int64]*media.Asset, error)
	DeleteQuietly(context context.Context, id int64)
	Release(context context.Context, id int64)
}

// Taxonomies is the part of the taxonomy service companies depend on.
type Taxonomies interface {
	GetMany(context context.Context, ids []int64) ([]*taxonomy.Taxonomy, error)
	ResolveForEntity(context context.Context, entityName string, ids []int64) ([]*taxonomy.Taxonomy, error)
	CreateForEntity(context context.Context, entityName string, input taxonomy.CreateInput) (*taxonomy.Taxonomy, error)
	Delete(context context.Context, id int64) error
}

// # Service Layer

// Service maintains the company directory.
type Service struct {
	repo       Repository
	images     Media
	taxonomies Taxonomies
	locker     slug.Locker
	logger     *slog.Logger
}

// NewService constructs a company [Service]. locker may be nil.
func NewService(repo Repository, images Media, taxonomies Taxonomies, locker slug.Locker, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		images:     images,
		taxonomies: taxonomies,
		locker:     locker,
		logger:     logger,
	}
}

// # Lookups

// Get returns one company with its images and taxonomies.
func (service *Service) Get(context context.Context, id int64) (*Company, error) {
	company, err := service.find(context, id)
	if err != nil {
		return nil, err
	}
	if err := service.hydrate(context, []*Company{company}); err != nil {
		return nil, err
	}
	return company, nil
}

/*
List returns a page of companies with their images and taxonomies.

Request:
  - filter.TaxonomyID: only companies linked to this taxonomy
  - filter.Name: case-insensitive substring
  - filter.OrderField: one of [OrderFields]
*/
func (service *Service) List(context context.Context, filter Filter, params pagination.Params) ([]*Company, pagination.Meta, error) {
	params = params.Clamp()

	validator := &validate.Validator{}
	if filter.OrderField != "" {
		validator.OneOf("orderField", filter.OrderField, OrderFields...)
	}
	if filter.Order != "" {
		validator.OneOf("order", strings.ToLower(filter.Order), "asc", "desc")
	}
	if filter.TaxonomyID != nil {
		validator.Positive("taxonomyId", *filter.TaxonomyID)
	}
	if err := validator.Err(); err != nil {
		return nil, pagination.Meta{}, err
	}

	companies, total, err := service.repo.List(context, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	if err := service.hydrate(context, companies); err != nil {
		return nil, pagination.Meta{}, err
	}
	return companies, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// # Management

/*
Create registers a company owned by actor.

Description: The name is formatted and must be unused. Taxonomy ids must all
exist and classify companies. Logo and cover are uploaded with the logo and
banner usages before the row is inserted and removed again if the insert
fails. The slug is generated from the name under the slug lock.

Returns:
  - *Company: The stored company, hydrated
  - error: VALIDATION_ERROR for bad input or a taken name, storage failures otherwise
*/
func (service *Service) Create(context context.Context, actor Actor, input CreateInput) (*Company, error) {

	// 1. Field validation
	name, err := validate.FormatName(input.Name)
	if err != nil {
		return nil, err
	}

	description, err := validate.Description(input.Description)
	if err != nil {
		return nil, err
	}

	whatsApp, err := cleanWhatsApp(input.WhatsApp)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required("userId", actor.UserID)
	validator.Custom(FieldTaxonomyIDs, len(input.TaxonomyIDs) > maxTaxonomies, "At most 50 taxonomies")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.ensureNameFree(context, name, 0); err != nil {
		return nil, err
	}

	// 2. Taxonomies must exist before anything is written
	taxonomies, err := service.taxonomies.ResolveForEntity(context, EntityName, input.TaxonomyIDs)
	if err != nil {
		return nil, err
	}

	company := &Company{
		Name:                 name,
		Description:          description,
		WhatsApp:             whatsApp,
		IsActive:             pointer.Fallback(input.IsActive, true),
		OffersFullDayService: pointer.Fallback(input.OffersFullDayService, false),
		Owners:               []string{actor.UserID},
		TaxonomyIDs:          taxonomyIDs(taxonomies),
	}

	// 3. Images
	uploads, err := service.uploadImages(context, company, input.Logo, input.Cover)
	if err != nil {
		return nil, err
	}

	// 4. Persistence
	if err := service.persist(context, company, true, service.repo.Create); err != nil {
		service.discard(context, uploads)
		return nil, err
	}

	if err := service.hydrate(context, []*Company{company}); err != nil {
		return nil, err
	}

	service.logger.Info("company_created",
		slog.Int64("company_id", company.ID),
		slog.String("slug", company.Slug),
		slog.String("owner", actor.UserID),
	)
	return company, nil
}

/*
Update applies the present fields of input.

Description: Only owners and admins may update. A name change regenerates the
slug. A non-nil TaxonomyIDs replaces every link. When a new logo or cover is
uploaded, the previous asset is released after the row is saved: it is
deleted unless a taxonomy still shows it, and cleanup failures are logged only.
*/
func (service *Service) Update(ctx context.Context, actor Actor, id int64, input UpdateInput) (*Company, error) {
	company, err := service.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(company) {
		return nil, apperr.Forbidden("You can only manage your own companies")
	}

	previousName := company.Name
	previousLogo, previousCover := company.LogoID, company.CoverID

	// 1. Field validation
	if input.Name != nil {
		name, err := validate.FormatName(*input.Name)
		if err != nil {
			return nil, err
		}
		if name != previousName {
			if err := service.ensureNameFree(ctx, name, id); err != nil {
				return nil, err
			}
		}
		company.Name = name
	}

	if input.Description != nil {
		description, err := validate.Description(input.Description)
		if err != nil {
			return nil, err
		}
		company.Description = description
	}

	if input.WhatsApp != nil {
		whatsApp, err := cleanWhatsApp(input.WhatsApp)
		if err != nil {
			return nil, err
		}
		company.WhatsApp = whatsApp
	}

	company.IsActive = pointer.Fallback(input.IsActive, company.IsActive)
	company.OffersFullDayService = pointer.Fallback(input.OffersFullDayService, company.OffersFullDayService)

	// 2. Taxonomy set replacement
	var links []int64
	if input.TaxonomyIDs != nil {
		if len(*input.TaxonomyIDs) > maxTaxonomies {
			return nil, validate.RequiredError(FieldTaxonomyIDs, "At most 50 taxonomies")
		}
		taxonomies, err := service.taxonomies.ResolveForEntity(ctx, EntityName, *input.TaxonomyIDs)
		if err != nil {
			return nil, err
		}
		links = taxonomyIDs(taxonomies)
	}

	// 3. Images
	uploads, err := service.uploadImages(ctx, company, input.Logo, input.Cover)
	if err != nil {
		return nil, err
	}

	// 4. Persistence
	save := func(ctx context.Context, company *Company) error {
		return service.repo.Update(ctx, company, links)
	}
	if err := service.persist(ctx, company, company.Name != previousName, save); err != nil {
		service.discard(ctx, uploads)
		return nil, err
	}

	// 5. Replaced images are cleaned up best-effort
	if input.Logo != nil && previousLogo != nil {
		service.images.Release(ctx, *previousLogo)
	}
	if input.Cover != nil && previousCover != nil {
		service.images.Release(ctx, *previousCover)
	}

	if err := service.hydrate(ctx, []*Company{company}); err != nil {
		return nil, err
	}

	service.logger.Info("company_updated",
		slog.Int64("company_id", company.ID),
		slog.String("actor", actor.UserID),
	)
	return company, nil
}

/*
AddTaxonomy creates a company taxonomy and links it to the company.

The entity name is forced to [EntityName]. If linking fails, the new
taxonomy is removed again.
*/
func (service *Service) AddTaxonomy(context context.Context, actor Actor, id int64, input taxonomy.CreateInput) (*taxonomy.Taxonomy, error) {
	company, err := service.find(context, id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(company) {
		return nil, apperr.Forbidden("You can only manage your own companies")
	}

	created, err := service.taxonomies.CreateForEntity(context, EntityName, input)
	if err != nil {
		return nil, err
	}

	if err := service.repo.LinkTaxonomy(context, company.ID, created.ID); err != nil {
		if cleanupErr := service.taxonomies.Delete(context, created.ID); cleanupErr != nil {
			service.logger.Warn("company_taxonomy_cleanup_failed",
				slog.Int64("taxonomy_id", created.ID),
				slog.Any("error", cleanupErr),
			)
		}
		return nil, err
	}

	service.logger.Info("company_taxonomy_added",
		slog.Int64("company_id", company.ID),
		slog.Int64("taxonomy_id", created.ID),
	)
	return created, nil
}

/*
Delete removes a company and then its logo and cover assets.

Asset cleanup failures are logged; the company is gone either way.
*/
func (service *Service) Delete(context context.Context, id int64) error {
	company, err := service.find(context, id)
	if err != nil {
		return err
	}

	if err := service.repo.Delete(context, id); err != nil {
		if dberr.IsNotFound(err) {
			return apperr.NotFound("Company")
		}
		return err
	}

	for _, assetID := range []*int64{company.LogoID, company.CoverID} {
		if assetID != nil {
			service.images.Release(context, *assetID)
		}
	}

	service.logger.Info("company_deleted", slog.Int64("company_id", id))
	return nil
}

// # Helpers

func (service *Service) find(context context.Context, id int64) (*Company, error) {
	company, err := service.repo.FindByID(context, id)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.NotFound("Company")
		}
		return nil, err
	}
	return company, nil
}

func (service *Service) ensureNameFree(context context.Context, name string, excludeID int64) error {
	taken, err := service.repo.NameExists(context, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Duplicate(FieldName, "A company with this name already exists")
	}
	return nil
}

// uploadImages stores the given logo and cover and points company at them.
// On failure, anything uploaded by this call is deleted again.
func (service *Service) uploadImages(context context.Context, company *Company, logo, cover *media.File) ([]int64, error) {
	var uploads []int64

	if logo != nil {
		asset, err := service.images.Upload(context, media.UploadInput{File: logo, Usage: string(media.UsageLogo)})
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, asset.ID)
		company.LogoID = &asset.ID
		company.Logo = asset
	}

	if cover != nil {
		asset, err := service.images.Upload(context, media.UploadInput{File: cover, Usage: string(media.UsageBanner)})
		if err != nil {
			service.discard(context, uploads)
			return nil, err
		}
		uploads = append(uploads, asset.ID)
		company.CoverID = &asset.ID
		company.Cover = asset
	}

	return uploads, nil
}

func (service *Service) discard(context context.Context, assetIDs []int64) {
	for _, id := range assetIDs {
		service.images.DeleteQuietly(context, id)
	}
}

// persist saves company, generating a fresh slug under the lock when regenerate is set.
func (service *Service) persist(ctx context.Context, company *Company, regenerate bool, save func(context.Context, *Company) error) error {
	store := func(candidate string) error {
		company.Slug = candidate
		if err := save(ctx, company); err != nil {
			if dberr.IsNotFound(err) {
				return apperr.NotFound("Company")
			}
			return err
		}
		return nil
	}

	if !regenerate {
		return store(company.Slug)
	}

	exists := func(ctx context.Context, candidate string) (bool, error) {
		return service.repo.SlugExists(ctx, candidate, company.ID)
	}
	return validate.SlugFailure(slug.Reserve(ctx, service.locker, "company", company.Name, exists, store))
}

// hydrate attaches images and taxonomies with one lookup each.
func (service *Service) hydrate(context context.Context, companies []*Company) error {
	if len(companies) == 0 {
		return nil
	}

	var assetIDs, linkIDs []int64
	for _, company := range companies {
		for _, id := range []*int64{company.LogoID, company.CoverID} {
			if id != nil {
				assetIDs = append(assetIDs, *id)
			}
		}
		linkIDs = append(linkIDs, company.TaxonomyIDs...)
	}

	assets := map[int64]*media.Asset{}
	if len(assetIDs) > 0 {
		found, err := service.images.GetMany(context, assetIDs)
		if err != nil {
			return err
		}
		assets = found
	}

	byID := map[int64]*taxonomy.Taxonomy{}
	if len(linkIDs) > 0 {
		taxonomies, err := service.taxonomies.GetMany(context, slices.Compact(slices.Sorted(slices.Values(linkIDs))))
		if err != nil {
			return err
		}
		for _, node := range taxonomies {
			byID[node.ID] = node
		}
	}

	for _, company := range companies {
		if company.LogoID != nil {
			company.Logo = assets[*company.LogoID]
		}
		if company.CoverID != nil {
			company.Cover = assets[*company.CoverID]
		}

		company.Taxonomies = make([]*taxonomy.Taxonomy, 0, len(company.TaxonomyIDs))
		for _, id := range company.TaxonomyIDs {
			if node, ok := byID[id]; ok {
				company.Taxonomies = append(company.Taxonomies, node)
			}
		}
	}
	return nil
}

func cleanWhatsApp(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}

	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}

	validator := &validate.Validator{}
	if err := validator.Digits(FieldWhatsApp, value, whatsAppMinDigits, whatsAppMaxDigits).Err(); err != nil {
		return nil, err
	}
	return pointer.To(value), nil
}

func taxonomyIDs(taxonomies []*taxonomy.Taxonomy) []int64 {
	return slice.Map(taxonomies, func(node *taxonomy.Taxonomy) int64 { return node.ID })
}
