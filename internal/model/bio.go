package model

import (
	"strings"
	"time"
)

// BioInput holds the business facts a user submits for generation.
type BioInput struct {
	BusinessName string `json:"businessName" validate:"required,max=120"`
	Product      string `json:"product"      validate:"required,max=500"`
	Objective    string `json:"objective"    validate:"required,max=300"`
}

// Bio is one generated marketing biography.
//
// A Bio is created exactly once per successful generation and never changes
// afterwards. ID is the short public token that also names the page artifact,
// and Link is always BaseURL + "/" + ID.
type Bio struct {
	ID           string    `json:"id"`
	OwnerEmail   string    `json:"ownerEmail"`
	BusinessName string    `json:"businessName"`
	Product      string    `json:"product"`
	Objective    string    `json:"objective"`
	Copy         string    `json:"copy"`
	Link         string    `json:"link"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicLink builds the link for a bio identifier. A trailing slash on
// baseURL is ignored so "http://host/" and "http://host" give the same link.
func PublicLink(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/" + id
}
