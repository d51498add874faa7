// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/taibuivan/yomira-directory/internal/core/media"
	"github.com/taibuivan/yomira-directory/internal/platform/apperr"
	"github.com/taibuivan/yomira-directory/internal/platform/dberr"
	"github.com/taibuivan/yomira-directory/internal/platform/validate"
	"github.com/taibuivan/yomira-directory/pkg/pagination"
	"github.com/taibuivan/yomira-directory/pkg/pointer"
	"github.com/taibuivan/yomira-directory/pkg/slice"
	"github.com/taibuivan/yomira-directory/pkg/slug"
)

// maxAncestors bounds the walk up the tree when checking for cycles.
const maxAncestors = 256

// Media is the part of the media service taxonomies depend on.
type Media interface {
	Get(context context.Context, id int64) (*media.Asset, error)
	GetMany(context context.Context, ids []int64) (map[int64]*media.Asset, error)
	UploadForEntity(context context.Context, entityName string, file *media.File, description *string) (*media.Asset, error)
	DeleteQuietly(context context.Context, id int64)
	Release(context context.Context, id int64)
}

// # Service Layer

// Service maintains the taxonomy tree.
type Service struct {
	repo   Repository
	images Media
	locker slug.Locker
	logger *slog.Logger
}

// NewService constructs a taxonomy [Service]. locker may be nil.
func NewService(repo Repository, images Media, locker slug.Locker, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		images: images,
		locker: locker,
		logger: logger,
	}
}

// # Lookups

/*
Get returns one node with its image and up to [TreeDepth] levels of children.

Nodes on the last loaded level have no Children even if deeper nodes exist.
*/
func (service *Service) Get(context context.Context, id int64) (*Taxonomy, error) {
	taxonomy, err := service.find(context, id, "Taxonomy")
	if err != nil {
		return nil, err
	}

	if err := service.loadChildren(context, []*Taxonomy{taxonomy}, TreeDepth); err != nil {
		return nil, err
	}
	if err := service.attachImages(context, []*Taxonomy{taxonomy}); err != nil {
		return nil, err
	}
	return taxonomy, nil
}

/*
List returns a page of nodes with their images and one level of children.

Without a parent filter only root nodes are listed. Unknown order fields are
rejected; an empty page is a success.
*/
func (service *Service) List(context context.Context, filter Filter, params pagination.Params) ([]*Taxonomy, pagination.Meta, error) {
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
	if filter.ParentID != nil {
		validator.Positive(FieldParentID, *filter.ParentID)
	}
	if err := validator.Err(); err != nil {
		return nil, pagination.Meta{}, err
	}

	taxonomies, total, err := service.repo.List(context, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	if err := service.loadChildren(context, taxonomies, 1); err != nil {
		return nil, pagination.Meta{}, err
	}
	if err := service.attachImages(context, taxonomies); err != nil {
		return nil, pagination.Meta{}, err
	}

	return taxonomies, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// GetMany returns the nodes with the given ids and their images. Missing ids are skipped.
func (service *Service) GetMany(context context.Context, ids []int64) ([]*Taxonomy, error) {
	taxonomies, err := service.repo.FindByIDs(context, ids)
	if err != nil {
		return nil, err
	}
	if err := service.attachImages(context, taxonomies); err != nil {
		return nil, err
	}
	return taxonomies, nil
}

/*
ResolveForEntity loads every id and checks that each node classifies entityName.

Returns:
  - []*Taxonomy: The nodes, ordered by name
  - error: VALIDATION_ERROR on field "taxonomyIds" naming missing or foreign ids
*/
func (service *Service) ResolveForEntity(context context.Context, entityName string, ids []int64) ([]*Taxonomy, error) {
	unique := slices.Compact(slices.Sorted(slices.Values(ids)))
	if len(unique) == 0 {
		return []*Taxonomy{}, nil
	}

	taxonomies, err := service.repo.FindByIDs(context, unique)
	if err != nil {
		return nil, err
	}

	matching := slice.Filter(taxonomies, func(taxonomy *Taxonomy) bool {
		return taxonomy.EntityName == entityName
	})

	found := make(map[int64]bool, len(matching))
	for _, taxonomy := range matching {
		found[taxonomy.ID] = true
	}

	var invalid []string
	for _, id := range unique {
		if !found[id] {
			invalid = append(invalid, fmt.Sprint(id))
		}
	}
	if len(invalid) > 0 {
		return nil, validate.RequiredError("taxonomyIds",
			fmt.Sprintf("Unknown %s taxonomies: %s", entityName, strings.Join(invalid, ", ")))
	}
	return matching, nil
}

// # Management

/*
Create validates and stores a new node.

Description: When a parent is given, the node takes the parent's entity name
and any caller-supplied entity name is discarded. An explicit slug must be
canonical and free; otherwise a unique slug is generated from the name under
the slug lock. An uploaded image is stored under the entity name before the
node is inserted and removed again if the insert fails.

Returns:
  - *Taxonomy: The stored node with its image
  - error: VALIDATION_ERROR, NOT_FOUND for a missing parent or image, or storage failures
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Taxonomy, error) {
	return service.create(context, input, "")
}

/*
CreateForEntity behaves like [Service.Create] with the entity name fixed.

A parent classifying another entity name is rejected rather than inherited.
*/
func (service *Service) CreateForEntity(context context.Context, entityName string, input CreateInput) (*Taxonomy, error) {
	input.EntityName = entityName
	return service.create(context, input, entityName)
}

func (service *Service) create(context context.Context, input CreateInput, requiredEntity string) (*Taxonomy, error) {

	// 1. Field validation
	name, err := validate.FormatName(input.Name)
	if err != nil {
		return nil, err
	}

	description, err := validate.Description(input.Description)
	if err != nil {
		return nil, err
	}

	taxonomy := &Taxonomy{Name: name, Description: description, Kind: cleanKind(input.Kind)}
	explicitSlug := trimmed(input.Slug)

	validator := &validate.Validator{}
	if explicitSlug != "" {
		validator.Slug(FieldSlug, explicitSlug)
	}
	if taxonomy.Kind != nil {
		validator.MaxLen(FieldKind, *taxonomy.Kind, kindMaxLen)
	}
	if input.ParentID != nil {
		validator.Positive(FieldParentID, *input.ParentID)
	} else {
		taxonomy.EntityName = strings.TrimSpace(input.EntityName)
		validator.EntityName(FieldEntityName, taxonomy.EntityName)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 2. Parent inheritance
	if input.ParentID != nil {
		parent, err := service.find(context, *input.ParentID, "Parent taxonomy")
		if err != nil {
			return nil, err
		}
		taxonomy.ParentID = &parent.ID
		taxonomy.EntityName = parent.EntityName
	}

	if requiredEntity != "" && taxonomy.EntityName != requiredEntity {
		return nil, validate.RequiredError(FieldParentID, "Parent must classify "+requiredEntity)
	}

	// 3. Existing image reference
	if input.Image == nil && input.ImageID != nil {
		asset, err := service.images.Get(context, *input.ImageID)
		if err != nil {
			return nil, err
		}
		taxonomy.ImageID = &asset.ID
		taxonomy.Image = asset
	}

	// 4. Explicit slug pre-check happens before any upload
	if explicitSlug != "" {
		if err := service.ensureSlugFree(context, explicitSlug, 0); err != nil {
			return nil, err
		}
	}

	// 5. Fresh image upload
	uploaded, err := service.upload(context, taxonomy, input.Image)
	if err != nil {
		return nil, err
	}

	// 6. Persistence
	if err := service.persist(context, taxonomy, explicitSlug, explicitSlug == "", service.repo.Create); err != nil {
		if uploaded != nil {
			service.images.DeleteQuietly(context, uploaded.ID)
		}
		return nil, err
	}

	service.logger.Info("taxonomy_created",
		slog.Int64("taxonomy_id", taxonomy.ID),
		slog.String("entity_name", taxonomy.EntityName),
		slog.String("slug", taxonomy.Slug),
	)
	return taxonomy, nil
}

/*
Update applies the present fields of input.

Description: The slug is regenerated only when the name changes and no
explicit slug is given. A new parent is re-resolved, must not be the node
itself or one of its descendants, and its entity name is inherited. The
repository copies the node's entity name to all of its descendants. When an
uploaded file replaces the image, the previous asset is released after the
node is saved: it is deleted unless another taxonomy or company still shows
it, and failures there are logged only.
*/
func (service *Service) Update(context context.Context, id int64, input UpdateInput) (*Taxonomy, error) {
	taxonomy, err := service.find(context, id, "Taxonomy")
	if err != nil {
		return nil, err
	}

	previousName := taxonomy.Name
	previousImageID := taxonomy.ImageID
	explicitSlug := trimmed(input.Slug)

	// 1. Field validation
	if input.Name != nil {
		name, err := validate.FormatName(*input.Name)
		if err != nil {
			return nil, err
		}
		taxonomy.Name = name
	}

	if input.Description != nil {
		description, err := validate.Description(input.Description)
		if err != nil {
			return nil, err
		}
		taxonomy.Description = description
	}

	validator := &validate.Validator{}
	if input.Kind != nil {
		taxonomy.Kind = cleanKind(input.Kind)
		if taxonomy.Kind != nil {
			validator.MaxLen(FieldKind, *taxonomy.Kind, kindMaxLen)
		}
	}
	if explicitSlug != "" {
		validator.Slug(FieldSlug, explicitSlug)
	}
	if input.ParentID != nil {
		validator.Positive(FieldParentID, *input.ParentID)
		validator.Custom(FieldParentID, *input.ParentID == id, "A taxonomy cannot be its own parent")
	}
	if input.EntityName != nil && input.ParentID == nil && taxonomy.ParentID == nil {
		taxonomy.EntityName = strings.TrimSpace(*input.EntityName)
		validator.EntityName(FieldEntityName, taxonomy.EntityName)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 2. Re-parenting
	if input.ParentID != nil {
		parent, err := service.find(context, *input.ParentID, "Parent taxonomy")
		if err != nil {
			return nil, err
		}
		if err := service.ensureNotDescendant(context, parent, id); err != nil {
			return nil, err
		}
		taxonomy.ParentID = &parent.ID
		taxonomy.EntityName = parent.EntityName
	}

	// 3. Image reference
	if input.Image == nil && input.ImageID != nil {
		asset, err := service.images.Get(context, *input.ImageID)
		if err != nil {
			return nil, err
		}
		taxonomy.ImageID = &asset.ID
		taxonomy.Image = asset
	}

	if explicitSlug != "" && explicitSlug != taxonomy.Slug {
		if err := service.ensureSlugFree(context, explicitSlug, id); err != nil {
			return nil, err
		}
	}

	uploaded, err := service.upload(context, taxonomy, input.Image)
	if err != nil {
		return nil, err
	}

	// 4. Persistence
	regenerate := explicitSlug == "" && taxonomy.Name != previousName
	slugValue := explicitSlug
	if slugValue == "" {
		slugValue = taxonomy.Slug
	}

	if err := service.persist(context, taxonomy, slugValue, regenerate, service.repo.Update); err != nil {
		if uploaded != nil {
			service.images.DeleteQuietly(context, uploaded.ID)
		}
		return nil, err
	}

	// 5. A replaced image nothing else shows is cleaned up best-effort
	if uploaded != nil && previousImageID != nil && *previousImageID != uploaded.ID {
		service.images.Release(context, *previousImageID)
	}

	if taxonomy.Image == nil && taxonomy.ImageID != nil {
		if err := service.attachImages(context, []*Taxonomy{taxonomy}); err != nil {
			return nil, err
		}
	}

	service.logger.Info("taxonomy_updated", slog.Int64("taxonomy_id", taxonomy.ID))
	return taxonomy, nil
}

/*
Delete removes one node.

Children are detached by the storage layer (their parent becomes NULL) and
the node's image is kept.
*/
func (service *Service) Delete(context context.Context, id int64) error {
	if err := service.repo.Delete(context, id); err != nil {
		if dberr.IsNotFound(err) {
			return apperr.NotFound("Taxonomy")
		}
		return err
	}

	service.logger.Info("taxonomy_deleted", slog.Int64("taxonomy_id", id))
	return nil
}

// # Helpers

// find loads a node, reporting absence as NOT_FOUND for resource.
func (service *Service) find(context context.Context, id int64, resource string) (*Taxonomy, error) {
	taxonomy, err := service.repo.FindByID(context, id)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.NotFound(resource)
		}
		return nil, err
	}
	return taxonomy, nil
}

// ensureNotDescendant walks up from parent and fails if it meets id.
func (service *Service) ensureNotDescendant(context context.Context, parent *Taxonomy, id int64) error {
	current := parent
	for step := 0; step < maxAncestors && current.ParentID != nil; step++ {
		if *current.ParentID == id {
			return validate.RequiredError(FieldParentID, "A taxonomy cannot be moved under its own descendant")
		}

		next, err := service.find(context, *current.ParentID, "Parent taxonomy")
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

func (service *Service) ensureSlugFree(context context.Context, value string, excludeID int64) error {
	taken, err := service.repo.SlugExists(context, value, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Duplicate(FieldSlug, "A taxonomy with this slug already exists")
	}
	return nil
}

// upload stores file as the node's image. A nil file is a no-op.
func (service *Service) upload(context context.Context, taxonomy *Taxonomy, file *media.File) (*media.Asset, error) {
	if file == nil {
		return nil, nil
	}

	asset, err := service.images.UploadForEntity(context, taxonomy.EntityName, file, nil)
	if err != nil {
		return nil, err
	}
	taxonomy.ImageID = &asset.ID
	taxonomy.Image = asset
	return asset, nil
}

// persist saves the node with slugValue, or with a generated slug when generate is set.
func (service *Service) persist(ctx context.Context, taxonomy *Taxonomy, slugValue string, generate bool, save func(context.Context, *Taxonomy) error) error {
	store := func(candidate string) error {
		taxonomy.Slug = candidate
		if err := save(ctx, taxonomy); err != nil {
			if dberr.IsNotFound(err) {
				return apperr.NotFound("Taxonomy")
			}
			return err
		}
		return nil
	}

	if !generate {
		return store(slugValue)
	}

	exists := func(ctx context.Context, candidate string) (bool, error) {
		return service.repo.SlugExists(ctx, candidate, taxonomy.ID)
	}
	return validate.SlugFailure(slug.Reserve(ctx, service.locker, "taxonomy", taxonomy.Name, exists, store))
}

// loadChildren attaches up to depth levels of children below roots.
func (service *Service) loadChildren(context context.Context, roots []*Taxonomy, depth int) error {
	frontier := roots
	for level := 0; level < depth && len(frontier) > 0; level++ {
		byID := make(map[int64]*Taxonomy, len(frontier))
		ids := make([]int64, 0, len(frontier))
		for _, node := range frontier {
			node.Children = []*Taxonomy{}
			byID[node.ID] = node
			ids = append(ids, node.ID)
		}

		children, err := service.repo.ListChildren(context, ids)
		if err != nil {
			return err
		}

		for _, child := range children {
			if parent, ok := byID[*child.ParentID]; ok {
				parent.Children = append(parent.Children, child)
			}
		}
		frontier = children
	}
	return nil
}

// attachImages hydrates the image of every node in the given subtrees with one lookup.
func (service *Service) attachImages(context context.Context, roots []*Taxonomy) error {
	var nodes []*Taxonomy
	var collect func([]*Taxonomy)
	collect = func(level []*Taxonomy) {
		for _, node := range level {
			nodes = append(nodes, node)
			collect(node.Children)
		}
	}
	collect(roots)

	var ids []int64
	for _, node := range nodes {
		if node.ImageID != nil {
			ids = append(ids, *node.ImageID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	assets, err := service.images.GetMany(context, ids)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		if node.ImageID != nil {
			node.Image = assets[*node.ImageID]
		}
	}
	return nil
}

func cleanKind(kind *string) *string {
	if kind == nil {
		return nil
	}
	value := strings.TrimSpace(*kind)
	if value == "" {
		return nil
	}
	return pointer.To(value)
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
