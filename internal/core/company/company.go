// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package company manages the business directory: companies, their owners,
// their logo and cover images and the taxonomies that classify them.
//
// # Ownership
//
// The member who creates a company becomes its owner. Owners and admins may
// update a company or extend its taxonomy; only admins delete.
package company

import (
	"time"

	"github.com/taibuivan/yomira-directory/internal/core/media"
	"github.com/taibuivan/yomira-directory/internal/core/taxonomy"
	"github.com/taibuivan/yomira-directory/internal/platform/sec"
)

// EntityName is the entity name of the taxonomies that classify companies.
const EntityName = "Company"

// # Field Identifiers

const (
	FieldName          = "name"
	FieldDescription   = "description"
	FieldWhatsApp      = "whatsapp"
	FieldIsActive      = "isActive"
	FieldOffersFullDay = "offersFullDayService"
	FieldTaxonomyIDs   = "taxonomyIds"
	FieldLogo          = "logo"
	FieldCover         = "cover"

	whatsAppMinDigits = 7
	whatsAppMaxDigits = 15
	maxTaxonomies     = 50
)

// OrderFields lists the accepted values of [Filter.OrderField].
var OrderFields = []string{"id", "name", "slug", "createdAt", "updatedAt"}

// Company is one directory entry.
type Company struct {
	ID                   int64                `json:"id"`
	Name                 string               `json:"name"`
	Slug                 string               `json:"slug"`
	Description          *string              `json:"description"`
	WhatsApp             *string              `json:"whatsapp"`
	IsActive             bool                 `json:"isActive"`
	OffersFullDayService bool                 `json:"offersFullDayService"`
	LogoID               *int64               `json:"logoId"`
	CoverID              *int64               `json:"coverId"`
	Logo                 *media.Asset         `json:"logo"`
	Cover                *media.Asset         `json:"cover"`
	Owners               []string             `json:"owners"`
	TaxonomyIDs          []int64              `json:"-"`
	Taxonomies           []*taxonomy.Taxonomy `json:"taxonomies"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

// CreateInput carries a new company.
type CreateInput struct {
	Name                 string      `json:"name"`
	Description          *string     `json:"description"`
	WhatsApp             *string     `json:"whatsapp"`
	IsActive             *bool       `json:"isActive"`
	OffersFullDayService *bool       `json:"offersFullDayService"`
	TaxonomyIDs          []int64     `json:"taxonomyIds"`
	Logo                 *media.File `json:"-"`
	Cover                *media.File `json:"-"`
}

// UpdateInput carries the present fields of a partial update.
// A non-nil TaxonomyIDs replaces the whole set of links.
type UpdateInput struct {
	Name                 *string     `json:"name"`
	Description          *string     `json:"description"`
	WhatsApp             *string     `json:"whatsapp"`
	IsActive             *bool       `json:"isActive"`
	OffersFullDayService *bool       `json:"offersFullDayService"`
	TaxonomyIDs          *[]int64    `json:"taxonomyIds"`
	Logo                 *media.File `json:"-"`
	Cover                *media.File `json:"-"`
}

// Filter narrows company listings.
type Filter struct {
	TaxonomyID *int64
	Name       string
	ActiveOnly bool
	OrderField string
	Order      string
}

// Actor identifies the caller of a management operation.
type Actor struct {
	UserID string
	Role   sec.UserRole
}

// ActorFrom builds an [Actor] from verified token claims.
func ActorFrom(claims *sec.AuthClaims) Actor {
	return Actor{UserID: claims.UserID, Role: claims.UserRole()}
}

// owns reports whether actor may manage company.
func (actor Actor) owns(company *Company) bool {
	if actor.Role.AtLeast(sec.RoleAdmin) {
		return true
	}
	for _, owner := range company.Owners {
		if owner == actor.UserID {
			return true
		}
	}
	return false
}
