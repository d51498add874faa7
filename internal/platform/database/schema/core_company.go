// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreCompanyTable represents the 'core.company' table
type CoreCompanyTable struct {
	Table         string
	ID            string
	Name          string
	Slug          string
	Description   string
	WhatsApp      string
	IsActive      string
	OffersFullDay string
	LogoID        string
	CoverID       string
	CreatedAt     string
	UpdatedAt     string
}

// CoreCompany is the schema definition for core.company
var CoreCompany = CoreCompanyTable{
	Table:         "core.company",
	ID:            "id",
	Name:          "name",
	Slug:          "slug",
	Description:   "description",
	WhatsApp:      "whatsapp",
	IsActive:      "isactive",
	OffersFullDay: "offersfullday",
	LogoID:        "logoid",
	CoverID:       "coverid",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

func (t CoreCompanyTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Slug, t.Description, t.WhatsApp, t.IsActive, t.OffersFullDay,
		t.LogoID, t.CoverID, t.CreatedAt, t.UpdatedAt,
	}
}

// CoreCompanyOwnerTable represents the 'core.companyowner' junction table
type CoreCompanyOwnerTable struct {
	Table     string
	CompanyID string
	UserID    string
	CreatedAt string
}

// CoreCompanyOwner is the schema definition for core.companyowner
var CoreCompanyOwner = CoreCompanyOwnerTable{
	Table:     "core.companyowner",
	CompanyID: "companyid",
	UserID:    "userid",
	CreatedAt: "createdat",
}

// CoreCompanyTaxonomyTable represents the 'core.companytaxonomy' junction table
type CoreCompanyTaxonomyTable struct {
	Table      string
	CompanyID  string
	TaxonomyID string
}

// CoreCompanyTaxonomy is the schema definition for core.companytaxonomy
var CoreCompanyTaxonomy = CoreCompanyTaxonomyTable{
	Table:      "core.companytaxonomy",
	CompanyID:  "companyid",
	TaxonomyID: "taxonomyid",
}
