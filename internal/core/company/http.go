// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package company

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-directory/internal/core/media"
	"github.com/taibuivan/yomira-directory/internal/core/taxonomy"
	"github.com/taibuivan/yomira-directory/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-directory/internal/platform/request"
	"github.com/taibuivan/yomira-directory/internal/platform/respond"
	"github.com/taibuivan/yomira-directory/internal/platform/sec"
	"github.com/taibuivan/yomira-directory/pkg/convert"
	"github.com/taibuivan/yomira-directory/pkg/pagination"
	"github.com/taibuivan/yomira-directory/pkg/pointer"
)

// Handler implements the HTTP layer for the company directory.
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

// NewHandler constructs a company [Handler]. Multipart bodies are capped at maxUploadBytes.
func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

// Routes returns a [chi.Router] configured with the company endpoints.
//
// # Routing Strategy
//
//   - Discovery (Public): list and detail.
//   - Ownership (Member): create, update and extend taxonomies of owned companies.
//   - Moderation (Admin): delete.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listCompanies)
	router.Get("/{id}", handler.getCompany)

	router.Group(func(member chi.Router) {
		member.Use(middleware.RequireRole(sec.RoleMember))

		member.Post("/", handler.createCompany)
		member.Patch("/{id}", handler.updateCompany)
		member.Post("/{id}/taxonomies", handler.addTaxonomy)
	})

	router.With(middleware.RequireRole(sec.RoleAdmin)).Delete("/{id}", handler.deleteCompany)

	return router
}

/*
GET /api/v1/companies.

Request:
  - taxonomyId: int
  - name: string (substring)
  - active: bool (only active companies)
  - orderField: string (id, name, slug, createdAt, updatedAt)
  - order: string (asc, desc)
  - page, limit: int

Response:
  - 200: []Company, or an empty page with "No results found"
*/
func (handler *Handler) listCompanies(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	taxonomyID, err := requestutil.QueryInt64(request, "taxonomyId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := Filter{
		TaxonomyID: taxonomyID,
		Name:       query.Get(FieldName),
		ActiveOnly: pointer.Fallback(convert.ToBoolPtr(query.Get("active")), false),
		OrderField: query.Get("orderField"),
		Order:      query.Get("order"),
	}

	companies, meta, err := handler.service.List(request.Context(), filter, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if len(companies) == 0 {
		respond.Empty(writer, meta)
		return
	}
	respond.Paginated(writer, companies, meta)
}

/*
GET /api/v1/companies/{id}.
*/
func (handler *Handler) getCompany(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	company, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, company)
}

/*
POST /api/v1/companies.

Request (JSON or multipart/form-data):
  - name: string (3-50 characters, unique)
  - description, whatsapp: string (optional)
  - isActive, offersFullDayService: bool (optional)
  - taxonomyIds: []int (repeated or comma-separated in multipart)
  - logo, cover: binary (multipart only, optional)

Response:
  - 201: Company
  - 400: Validation failure, taken name or unknown taxonomies
*/
func (handler *Handler) createCompany(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput

	if requestutil.IsMultipart(request) {
		form, err := handler.readForm(writer, request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		input = CreateInput{
			Name:                 request.FormValue(FieldName),
			Description:          form.description,
			WhatsApp:             form.whatsApp,
			IsActive:             form.isActive,
			OffersFullDayService: form.offersFullDay,
			TaxonomyIDs:          form.taxonomyIDs,
			Logo:                 form.logo,
			Cover:                form.cover,
		}
	} else if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	company, err := handler.service.Create(context.WithoutCancel(request.Context()), ActorFrom(claims), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, company)
}

/*
PATCH /api/v1/companies/{id}.

Request: same fields as creation, all optional. Sending taxonomyIds replaces the set.

Response:
  - 200: Company
  - 403: Caller neither owns the company nor is an admin
  - 404: Company not found
*/
func (handler *Handler) updateCompany(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

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
			Name:                 requestutil.FormValue(request, FieldName),
			Description:          form.description,
			WhatsApp:             form.whatsApp,
			IsActive:             form.isActive,
			OffersFullDayService: form.offersFullDay,
			Logo:                 form.logo,
			Cover:                form.cover,
		}
		if form.taxonomyIDs != nil {
			input.TaxonomyIDs = &form.taxonomyIDs
		}
	} else if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	company, err := handler.service.Update(context.WithoutCancel(request.Context()), ActorFrom(claims), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, company)
}

/*
POST /api/v1/companies/{id}/taxonomies.

Request (Body):
  - taxonomy.CreateInput: entityName is ignored and forced to "Company"

Response:
  - 201: Taxonomy
  - 403: Caller neither owns the company nor is an admin
*/
func (handler *Handler) addTaxonomy(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input taxonomy.CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.AddTaxonomy(request.Context(), ActorFrom(claims), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, created)
}

/*
DELETE /api/v1/companies/{id}.

Response:
  - 204: Deleted together with its logo and cover
  - 404: Company not found
*/
func (handler *Handler) deleteCompany(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(context.WithoutCancel(request.Context()), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Multipart Payloads

type companyForm struct {
	description   *string
	whatsApp      *string
	isActive      *bool
	offersFullDay *bool
	taxonomyIDs   []int64
	logo          *media.File
	cover         *media.File
}

func (handler *Handler) readForm(writer http.ResponseWriter, request *http.Request) (*companyForm, error) {
	request.Body = http.MaxBytesReader(writer, request.Body, handler.maxUploadBytes)

	if err := requestutil.ParseMultipart(request); err != nil {
		return nil, err
	}

	isActive, err := requestutil.FormBool(request, FieldIsActive)
	if err != nil {
		return nil, err
	}

	offersFullDay, err := requestutil.FormBool(request, FieldOffersFullDay)
	if err != nil {
		return nil, err
	}

	taxonomyIDs, err := requestutil.FormInt64s(request, FieldTaxonomyIDs)
	if err != nil {
		return nil, err
	}

	logo, err := requestutil.File(request, FieldLogo)
	if err != nil {
		return nil, err
	}

	cover, err := requestutil.File(request, FieldCover)
	if err != nil {
		return nil, err
	}

	return &companyForm{
		description:   requestutil.FormValue(request, FieldDescription),
		whatsApp:      requestutil.FormValue(request, FieldWhatsApp),
		isActive:      isActive,
		offersFullDay: offersFullDay,
		taxonomyIDs:   taxonomyIDs,
		logo:          media.FileFrom(logo),
		cover:         media.FileFrom(cover),
	}, nil
}
