// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-directory/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-directory/internal/platform/request"
	"github.com/taibuivan/yomira-directory/internal/platform/respond"
	"github.com/taibuivan/yomira-directory/internal/platform/sec"
	"github.com/taibuivan/yomira-directory/pkg/pagination"
)

// Handler implements the HTTP layer for tags.
type Handler struct {
	service *Service
}

// NewHandler constructs a tag [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the tag endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listTags)
	router.Get("/{id}", handler.getTag)

	router.With(middleware.RequireRole(sec.RoleMember)).Post("/", handler.createTag)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Patch("/{id}", handler.updateTag)
		admin.Delete("/{id}", handler.deleteTag)
	})

	return router
}

/*
GET /api/v1/tags.

Request:
  - entityName: string
  - search: string (name substring)
  - orderField: string (id, name, slug, entityName, createdAt, updatedAt)
  - order: string (asc, desc)
  - page, limit: int

Response:
  - 200: []Tag, or an empty page with "No results found"
  - 400: Malformed query
*/
func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	filter := Filter{
		EntityName: query.Get("entityName"),
		Search:     query.Get("search"),
		OrderField: query.Get("orderField"),
		Order:      query.Get("order"),
	}

	tags, meta, err := handler.service.List(request.Context(), filter, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if len(tags) == 0 {
		respond.Empty(writer, meta)
		return
	}
	respond.Paginated(writer, tags, meta)
}

/*
GET /api/v1/tags/{id}.
*/
func (handler *Handler) getTag(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tag)
}

/*
POST /api/v1/tags.

Request (Body):
  - CreateInput: {name, slug?, entityName}

Response:
  - 201: Tag
  - 400: Validation failure or duplicate name/slug within the entity
*/
func (handler *Handler) createTag(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, tag)
}

/*
PATCH /api/v1/tags/{id}.
*/
func (handler *Handler) updateTag(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.Update(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tag)
}

/*
DELETE /api/v1/tags/{id}.
*/
func (handler *Handler) deleteTag(writer http.ResponseWriter, request *http.Request) {
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
