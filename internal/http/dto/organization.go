// Package dto defines the request payloads for the API surface. Update payloads
// use pointer fields: nil means "leave untouched", so a PATCH only replaces what
// the caller explicitly sent.
package dto

type OrganizationCreate struct {
	Name   string         `json:"name"`
	Type   *string        `json:"type"`
	Config map[string]any `json:"config"`
}

type OrganizationUpdate struct {
	Name   *string         `json:"name"`
	Type   *string         `json:"type"`
	Config *map[string]any `json:"config"`
}
