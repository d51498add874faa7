// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package taxonomy

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-directory/internal/core/media"
	"github.com/taibuivan/yomira-directory/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-directory/internal/platform/request"
	"github.com/taibuivan/yomira-directory/internal/platform/respond"
	"github.com/taibuivan/yomira-directory/internal/platform/sec"
	"github.com/taibuivan/yomira-directory/pkg/pagination"
)

// Handler implements the HTTP layer for taxonomies.
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

// NewHandler constructs a taxonomy [Handler]. Multipart bodies are capped at maxUploadBytes.
func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

// Routes returns a [chi.Router] configured with the taxonomy endpoints.
//
// # Routing Strategy
//
//   - Discovery (Public): list and tree lookups.
//   - Management (Admin): create, update and delete.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listTaxonomies)
	router.Get("/{id}", handler.getTaxonomy)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Post("/", handler.createTaxonomy)
		admin.Patch("/{id}", handler.updateTaxonomy)
		admin.Delete("/{id}", handler.deleteTaxonomy)
	})

	return router
}

/*
GET /api/v1/taxonomies.

Request:
  - entityName: string
  - name: string (substring)
  - parentId: int (omitted lists root nodes)
  - kind: string
  - orderField: string (id, name, slug, entityName, kind, createdAt, updatedAt)
  - order: string (asc, desc)
  - page, limit: int

Response:
  - 200: []Taxonomy with image and direct children, or an empty page with "No results found"
  - 400: Malformed query
*/
func (handler *Handler) listTaxonomies(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	parentID, err := requestutil.QueryInt64(request, FieldParentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := Filter{
		EntityName: query.Get(FieldEntityName),
		Name:       query.Get(FieldName),
		ParentID:   parentID,
		Kind:       query.Get(FieldKind),
		OrderField: query.Get("orderField"),
		Order:      query.Get("order"),
	}

	taxonomies, meta, err := handler.service.List(request.Context(), filter, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if len(taxonomies) == 0 {
		respond.Empty(writer, meta)
		return
	}
	respond.Paginated(writer, taxonomies, meta)
}

/*
GET /api/v1/taxonomies/{id}.

Response:
  - 200: Taxonomy with image and up to four levels of children
  - 404: Taxonomy not found
*/
func (handler *Handler) getTaxonomy(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	taxonomy, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, taxonomy)
}

/*
POST /api/v1/taxonomies.

Request (JSON or multipart/form-data):
  - name: string (3-50 characters)
  - slug: string (optional, canonical slug)
  - description: string (optional)
  - entityName: string (ignored when parentId is set)
  - kind: string (optional)
  - parentId: int (optional)
  - imageId: int (optional)
  - image: binary (multipart only, optional)

Response:
  - 201: Taxonomy
  - 400: Validation failure or duplicate slug
  - 404: Parent or image not found
*/
func (handler *Handler) createTaxonomy(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput

	if requestutil.IsMultipart(request) {
		form, err := handler.readForm(writer, request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		input = CreateInput{
			Name:        request.FormValue(FieldName),
			Slug:        form.slug,
			Description: form.description,
			EntityName:  request.FormValue(FieldEntityName),
			Kind:        form.kind,
			ParentID:    form.parentID,
			ImageID:     form.imageID,
			Image:       form.image,
		}
	} else if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	taxonomy, err := handler.service.Create(context.WithoutCancel(request.Context()), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, taxonomy)
}

/*
PATCH /api/v1/taxonomies/{id}.

Request: same fields as creation, all optional.

Response:
  - 200: Taxonomy
  - 404: Taxonomy, parent or image not found
*/
func (handler *Handler) updateTaxonomy(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput

	if requestutil.IsMultipart(request) {
		form, err := handler.readForm(writer, request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		input = UpdateInput{
			Name:        requestutil.FormValue(request, FieldName),
			Slug:        form.slug,
			Description: form.description,
			EntityName:  requestutil.FormValue(request, FieldEntityName),
			Kind:        form.kind,
			ParentID:    form.parentID,
			ImageID:     form.imageID,
			Image:       form.image,
		}
	} else if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	taxonomy, err := handler.service.Update(context.WithoutCancel(request.Context()), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, taxonomy)
}

/*
DELETE /api/v1/taxonomies/{id}.

Response:
  - 204: Deleted; children become roots and the image is kept
  - 404: Taxonomy not found
*/
func (handler *Handler) deleteTaxonomy(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Multipart Payloads

// taxonomyForm holds the optional multipart fields shared by create and update.
type taxonomyForm struct {
	slug        *string
	description *string
	kind        *string
	parentID    *int64
	imageID     *int64
	image       *media.File
}

func (handler *Handler) readForm(writer http.ResponseWriter, request *http.Request) (*taxonomyForm, error) {
	request.Body = http.MaxBytesReader(writer, request.Body, handler.maxUploadBytes)

	if err := requestutil.ParseMultipart(request); err != nil {
		return nil, err
	}

	parentID, err := requestutil.FormInt64(request, FieldParentID)
	if err != nil {
		return nil, err
	}

	imageID, err := requestutil.FormInt64(request, FieldImageID)
	if err != nil {
		return nil, err
	}

	part, err := requestutil.File(request, FieldImage)
	if err != nil {
		return nil, err
	}

	return &taxonomyForm{
		slug:        requestutil.FormValue(request, FieldSlug),
		description: requestutil.FormValue(request, FieldDescription),
		kind:        requestutil.FormValue(request, FieldKind),
		parentID:    parentID,
		imageID:     imageID,
		image:       media.FileFrom(part),
	}, nil
}
