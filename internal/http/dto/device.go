package dto

import "time"

type DeviceCreate struct {
	UserID      string         `json:"_user_id"`
	Fingerprint string         `json:"device_fingerprint"`
	TrustScore  *float64       `json:"trust_score"`
	Metadata    map[string]any `json:"device_metadata"`
}

type DeviceUpdate struct {
	Fingerprint *string         `json:"device_fingerprint"`
	LastSeen    *time.Time      `json:"last_seen"`
	TrustScore  *float64        `json:"trust_score"`
	Metadata    *map[string]any `json:"device_metadata"`
}
