// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-directory/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-directory/internal/platform/request"
	"github.com/taibuivan/yomira-directory/internal/platform/respond"
	"github.com/taibuivan/yomira-directory/internal/platform/sec"
	"github.com/taibuivan/yomira-directory/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for media assets.
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

// NewHandler constructs a media [Handler]. Upload bodies above maxUploadBytes are rejected with 413.
func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

// Routes returns a [chi.Router] configured with the media endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Endpoints
	router.Get("/", handler.listMedia)
	router.Get("/{id}", handler.getMedia)

	// ## Management (Admin Protected)
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Post("/upload", handler.upload)
		admin.Patch("/{id}", handler.updateMedia)
		admin.Delete("/{id}", handler.deleteMedia)
	})

	return router
}

// FileFrom converts a parsed multipart part into a [File]. A nil part stays nil.
func FileFrom(upload *requestutil.UploadedFile) *File {
	if upload == nil {
		return nil
	}
	return &File{
		OriginalName: upload.OriginalName,
		MimeType:     upload.MimeType,
		Buffer:       upload.Buffer,
		Size:         upload.Size,
	}
}

// # Endpoints

/*
GET /api/v1/media.

Request:
  - usage: string (optional filter)
  - page: int
  - limit: int (clamped to 100)

Response:
  - 200: []Asset: Paginated list of assets with formats
*/
func (handler *Handler) listMedia(writer http.ResponseWriter, request *http.Request) {
	filter := Filter{Usage: request.URL.Query().Get("usage")}

	assets, meta, err := handler.service.List(request.Context(), filter, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if len(assets) == 0 {
		respond.Empty(writer, meta)
		return
	}
	respond.Paginated(writer, assets, meta)
}

/*
GET /api/v1/media/{id}.

Response:
  - 200: Asset
  - 404: ErrNotFound: Media not found
*/
func (handler *Handler) getMedia(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	asset, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, asset)
}

/*
POST /api/v1/media/upload.

Description: Multipart upload. The pipeline runs detached from the client
connection so a disconnect does not abort writes already in flight.

Request (multipart/form-data):
  - file: binary (required)
  - usage: string (avatar, city, service, banner, logo, gallery, image)
  - name: string (optional, defaults to the uploaded file name)
  - description: string (optional)

Response:
  - 201: Asset: The stored asset with its formats
  - 400: Validation failure
  - 413: Body too large
*/
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, handler.maxUploadBytes)

	if err := requestutil.ParseMultipart(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	part, err := requestutil.File(request, FieldFile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := UploadInput{
		File:        FileFrom(part),
		Usage:       request.FormValue(FieldUsage),
		Name:        requestutil.FormValue(request, FieldName),
		Description: requestutil.FormValue(request, FieldDescription),
	}

	asset, err := handler.service.Upload(context.WithoutCancel(request.Context()), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, asset)
}

/*
PATCH /api/v1/media/{id}.

Request (Body):
  - UpdateInput: {name, description}

Response:
  - 200: Asset: Updated asset
  - 404: ErrNotFound: Media not found
*/
func (handler *Handler) updateMedia(writer http.ResponseWriter, request *http.Request) {
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

	asset, err := handler.service.UpdateMeta(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, asset)
}

/*
DELETE /api/v1/media/{id}.

Response:
  - 200: {message, data}: Snapshot of the deleted asset
  - 404: ErrNotFound: Media not found
  - 500: A stored file could not be removed; nothing was deleted from the database
*/
func (handler *Handler) deleteMedia(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	asset, err := handler.service.Delete(context.WithoutCancel(request.Context()), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "Media deleted", asset)
}
