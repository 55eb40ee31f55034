package core

import "time"

// Role of a user within an organization.
type Role string

const (
	RoleBeneficiary Role = "beneficiary"
	RoleOfficer     Role = "officer"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBeneficiary, RoleOfficer, RoleAdmin:
		return true
	}
	return false
}

// Reserved vocabulary. These enums exist as Postgres types in the schema but are
// not attached to any entity yet; they are carried for the verification pipeline.
type VerificationStatus string

const (
	VerificationPending      VerificationStatus = "pending"
	VerificationSubmitted    VerificationStatus = "submitted"
	VerificationScored       VerificationStatus = "scored"
	VerificationRouted       VerificationStatus = "routed"
	VerificationNeedsMore    VerificationStatus = "needs_more"
	VerificationApproved     VerificationStatus = "approved"
	VerificationRejected     VerificationStatus = "rejected"
	VerificationVideoPending VerificationStatus = "video_pending"
	VerificationVideoDone    VerificationStatus = "video_done"
)

type RequirementType string

const (
	RequirementPhoto RequirementType = "photo"
	RequirementVideo RequirementType = "video"
	RequirementDoc   RequirementType = "doc"
)

type RequirementStatus string

const (
	RequirementNotStarted RequirementStatus = "not_started"
	RequirementInProgress RequirementStatus = "in_progress"
	RequirementCompleted  RequirementStatus = "completed"
)

type DecisionType string

const (
	DecisionApprove       DecisionType = "approve"
	DecisionReject        DecisionType = "reject"
	DecisionRequestMore   DecisionType = "request_more"
	DecisionVideoRequired DecisionType = "video_required"
)

type NotificationChannel string

const (
	ChannelSMS      NotificationChannel = "sms"
	ChannelEmail    NotificationChannel = "email"
	ChannelWhatsApp NotificationChannel = "whatsapp"
	ChannelPush     NotificationChannel = "push"
)

// Organization is a tenant: a lender or program administrator owning schemes and users.
type Organization struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      *string        `json:"type,omitempty"`
	Config    map[string]any `json:"config"`
	CreatedAt time.Time      `json:"created_at"`
}

// Scheme is a loan program. Code is unique across the whole system, not per org.
type Scheme struct {
	ID                string         `json:"id"`
	OrgID             string         `json:"_org_id"`
	Code              string         `json:"code"`
	Name              string         `json:"name"`
	EvidenceTemplate  map[string]any `json:"evidence_template,omitempty"`
	DefaultThresholds map[string]any `json:"default_thresholds,omitempty"`
	LocaleOptions     map[string]any `json:"locale_options,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// User is a person within an organization. Mobile is globally unique; email, when
// present, is unique within the owning organization.
type User struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"_org_id"`
	Role      Role      `json:"role"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile"`
	Email     *string   `json:"email,omitempty"`
	Locale    string    `json:"locale"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Device belongs to exactly one user. Fingerprint is globally unique; TrustScore,
// when present, lies in [0,1] with two-decimal precision.
type Device struct {
	ID          string         `json:"id"`
	UserID      string         `json:"_user_id"`
	Fingerprint string         `json:"device_fingerprint"`
	LastSeen    *time.Time     `json:"last_seen,omitempty"`
	TrustScore  *float64       `json:"trust_score,omitempty"`
	Metadata    map[string]any `json:"device_metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
