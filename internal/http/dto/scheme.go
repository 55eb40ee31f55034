package dto

type SchemeCreate struct {
	OrgID             string         `json:"_org_id"`
	Code              string         `json:"code"`
	Name              string         `json:"name"`
	EvidenceTemplate  map[string]any `json:"evidence_template"`
	DefaultThresholds map[string]any `json:"default_thresholds"`
	LocaleOptions     map[string]any `json:"locale_options"`
}

type SchemeUpdate struct {
	Code              *string         `json:"code"`
	Name              *string         `json:"name"`
	EvidenceTemplate  *map[string]any `json:"evidence_template"`
	DefaultThresholds *map[string]any `json:"default_thresholds"`
	LocaleOptions     *map[string]any `json:"locale_options"`
}
