package core

import (
	"context"
	"time"
)

// Page bounds a list query. Skip must be >= 0; Limit is clamped by the caller
// (config ceiling), never here.
type Page struct {
	Skip  int
	Limit int
}

// SchemeFilter narrows scheme listings. Nil fields are ignored.
type SchemeFilter struct {
	OrgID *string
	Page
}

// UserFilter narrows user listings. Nil fields are ignored.
type UserFilter struct {
	OrgID  *string
	Role   *Role
	Status *string
	Page
}

// OrganizationPatch carries a partial update. Nil means "leave untouched";
// a non-nil pointer replaces the field, including *Type pointing at "" to clear it.
type OrganizationPatch struct {
	Name   *string
	Type   *string
	Config *map[string]any
}

type SchemePatch struct {
	Code              *string
	Name              *string
	EvidenceTemplate  *map[string]any
	DefaultThresholds *map[string]any
	LocaleOptions     *map[string]any
}

type UserPatch struct {
	Role   *Role
	Name   *string
	Mobile *string
	Email  *string
	Locale *string
	Status *string
}

type DevicePatch struct {
	Fingerprint *string
	LastSeen    *time.Time
	TrustScore  *float64
	Metadata    *map[string]any
}

// Repository is the data access layer. Absence is ErrNotFound, never a panic;
// uniqueness violations surface as ErrConflict with the store as the authority.
// Every mutating call commits on its own: one call, one transaction.
type Repository interface {
	Ping(ctx context.Context) error
	Close()

	// Organizations
	CreateOrganization(ctx context.Context, o *Organization) error
	GetOrganization(ctx context.Context, id string) (*Organization, error)
	ListOrganizations(ctx context.Context, p Page) ([]Organization, error)
	UpdateOrganization(ctx context.Context, id string, patch OrganizationPatch) (*Organization, error)
	DeleteOrganization(ctx context.Context, id string) error

	// Schemes
	CreateScheme(ctx context.Context, s *Scheme) error
	GetScheme(ctx context.Context, id string) (*Scheme, error)
	GetSchemeByCode(ctx context.Context, code string) (*Scheme, error)
	ListSchemes(ctx context.Context, f SchemeFilter) ([]Scheme, error)
	UpdateScheme(ctx context.Context, id string, patch SchemePatch) (*Scheme, error)
	DeleteScheme(ctx context.Context, id string) error

	// Users
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByMobile(ctx context.Context, mobile string) (*User, error)
	ListUsers(ctx context.Context, f UserFilter) ([]User, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error)
	DeleteUser(ctx context.Context, id string) error

	// Devices
	CreateDevice(ctx context.Context, d *Device) error
	GetDevice(ctx context.Context, id string) (*Device, error)
	GetDeviceByFingerprint(ctx context.Context, fp string) (*Device, error)
	ListDevicesByUser(ctx context.Context, userID string, p Page) ([]Device, error)
	UpdateDevice(ctx context.Context, id string, patch DevicePatch) (*Device, error)
	DeleteDevice(ctx context.Context, id string) error
}
