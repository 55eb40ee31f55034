// Package memory implements core.Repository in process memory. It enforces the
// same uniqueness and referential rules as the Postgres schema so handler tests
// exercise real conflict/restrict/cascade behavior without a database.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/digipraman/loantrack/internal/store/core"
)

type Store struct {
	mu sync.RWMutex

	orgs    map[string]*core.Organization
	schemes map[string]*core.Scheme
	users   map[string]*core.User
	devices map[string]*core.Device

	// insertion order per entity; lists replay this, which matches
	// created_at ASC since the clock below is monotonic per store
	orgOrder    []string
	schemeOrder []string
	userOrder   []string
	deviceOrder []string

	lastStamp time.Time
}

func New() *Store {
	return &Store{
		orgs:    map[string]*core.Organization{},
		schemes: map[string]*core.Scheme{},
		users:   map[string]*core.User{},
		devices: map[string]*core.Device{},
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close()                     {}

// stamp returns a strictly increasing timestamp so creation order and
// created_at order never disagree.
func (s *Store) stamp() time.Time {
	now := time.Now().UTC()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = now
	return now
}

func page[T any](items []T, p core.Page) []T {
	if p.Skip >= len(items) {
		return []T{}
	}
	items = items[p.Skip:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}

// ---------- Organizations ----------

func (s *Store) CreateOrganization(_ context.Context, o *core.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.Config == nil {
		o.Config = map[string]any{}
	}
	o.ID = uuid.NewString()
	o.CreatedAt = s.stamp()
	cp := *o
	s.orgs[o.ID] = &cp
	s.orgOrder = append(s.orgOrder, o.ID)
	return nil
}

func (s *Store) GetOrganization(_ context.Context, id string) (*core.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orgs[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *Store) ListOrganizations(_ context.Context, p core.Page) ([]core.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Organization, 0, len(s.orgOrder))
	for _, id := range s.orgOrder {
		out = append(out, *s.orgs[id])
	}
	return page(out, p), nil
}

func (s *Store) UpdateOrganization(_ context.Context, id string, patch core.OrganizationPatch) (*core.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orgs[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if patch.Name != nil {
		o.Name = *patch.Name
	}
	if patch.Type != nil {
		o.Type = patch.Type
	}
	if patch.Config != nil {
		o.Config = *patch.Config
	}
	cp := *o
	return &cp, nil
}

func (s *Store) DeleteOrganization(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[id]; !ok {
		return core.ErrNotFound
	}
	// RESTRICT: refuse while schemes or users reference the org.
	for _, sc := range s.schemes {
		if sc.OrgID == id {
			return core.ErrConflict
		}
	}
	for _, u := range s.users {
		if u.OrgID == id {
			return core.ErrConflict
		}
	}
	delete(s.orgs, id)
	s.orgOrder = remove(s.orgOrder, id)
	return nil
}

// ---------- Schemes ----------

func (s *Store) CreateScheme(_ context.Context, sc *core.Scheme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[sc.OrgID]; !ok {
		return core.ErrNotFound
	}
	for _, existing := range s.schemes {
		if existing.Code == sc.Code {
			return core.ErrConflict
		}
	}
	sc.ID = uuid.NewString()
	sc.CreatedAt = s.stamp()
	cp := *sc
	s.schemes[sc.ID] = &cp
	s.schemeOrder = append(s.schemeOrder, sc.ID)
	return nil
}

func (s *Store) GetScheme(_ context.Context, id string) (*core.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.schemes[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *sc
	return &cp, nil
}

func (s *Store) GetSchemeByCode(_ context.Context, code string) (*core.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sc := range s.schemes {
		if sc.Code == code {
			cp := *sc
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) ListSchemes(_ context.Context, f core.SchemeFilter) ([]core.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Scheme{}
	for _, id := range s.schemeOrder {
		sc := s.schemes[id]
		if f.OrgID != nil && sc.OrgID != *f.OrgID {
			continue
		}
		out = append(out, *sc)
	}
	return page(out, f.Page), nil
}

func (s *Store) UpdateScheme(_ context.Context, id string, patch core.SchemePatch) (*core.Scheme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schemes[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if patch.Code != nil && *patch.Code != sc.Code {
		for _, other := range s.schemes {
			if other.Code == *patch.Code {
				return nil, core.ErrConflict
			}
		}
		sc.Code = *patch.Code
	}
	if patch.Name != nil {
		sc.Name = *patch.Name
	}
	if patch.EvidenceTemplate != nil {
		sc.EvidenceTemplate = *patch.EvidenceTemplate
	}
	if patch.DefaultThresholds != nil {
		sc.DefaultThresholds = *patch.DefaultThresholds
	}
	if patch.LocaleOptions != nil {
		sc.LocaleOptions = *patch.LocaleOptions
	}
	cp := *sc
	return &cp, nil
}

func (s *Store) DeleteScheme(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schemes[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.schemes, id)
	s.schemeOrder = remove(s.schemeOrder, id)
	return nil
}

// ---------- Users ----------

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[u.OrgID]; !ok {
		return core.ErrNotFound
	}
	for _, existing := range s.users {
		if existing.Mobile == u.Mobile {
			return fmt.Errorf("users_mobile_key: %w", core.ErrConflict)
		}
		if u.Email != nil && existing.Email != nil &&
			existing.OrgID == u.OrgID && *existing.Email == *u.Email {
			return fmt.Errorf("uniq_users_org_email: %w", core.ErrConflict)
		}
	}
	if u.Locale == "" {
		u.Locale = "en"
	}
	if u.Status == "" {
		u.Status = "active"
	}
	u.ID = uuid.NewString()
	u.CreatedAt = s.stamp()
	cp := *u
	s.users[u.ID] = &cp
	s.userOrder = append(s.userOrder, u.ID)
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByMobile(_ context.Context, mobile string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Mobile == mobile {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context, f core.UserFilter) ([]core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.User{}
	for _, id := range s.userOrder {
		u := s.users[id]
		if f.OrgID != nil && u.OrgID != *f.OrgID {
			continue
		}
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.Status != nil && u.Status != *f.Status {
			continue
		}
		out = append(out, *u)
	}
	return page(out, f.Page), nil
}

func (s *Store) UpdateUser(_ context.Context, id string, patch core.UserPatch) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if patch.Mobile != nil && *patch.Mobile != u.Mobile {
		for _, other := range s.users {
			if other.Mobile == *patch.Mobile {
				return nil, fmt.Errorf("users_mobile_key: %w", core.ErrConflict)
			}
		}
		u.Mobile = *patch.Mobile
	}
	if patch.Email != nil {
		for _, other := range s.users {
			if other.ID != u.ID && other.Email != nil &&
				other.OrgID == u.OrgID && *other.Email == *patch.Email {
				return nil, fmt.Errorf("uniq_users_org_email: %w", core.ErrConflict)
			}
		}
		u.Email = patch.Email
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Locale != nil {
		u.Locale = *patch.Locale
	}
	if patch.Status != nil {
		u.Status = *patch.Status
	}
	cp := *u
	return &cp, nil
}

// DeleteUser cascades to the user's devices.
func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return core.ErrNotFound
	}
	for did, d := range s.devices {
		if d.UserID == id {
			delete(s.devices, did)
			s.deviceOrder = remove(s.deviceOrder, did)
		}
	}
	delete(s.users, id)
	s.userOrder = remove(s.userOrder, id)
	return nil
}

// ---------- Devices ----------

func (s *Store) CreateDevice(_ context.Context, d *core.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[d.UserID]; !ok {
		return core.ErrNotFound
	}
	for _, existing := range s.devices {
		if existing.Fingerprint == d.Fingerprint {
			return core.ErrConflict
		}
	}
	if d.TrustScore != nil && (*d.TrustScore < 0 || *d.TrustScore > 1) {
		return core.ErrInvalid
	}
	d.ID = uuid.NewString()
	d.CreatedAt = s.stamp()
	cp := *d
	s.devices[d.ID] = &cp
	s.deviceOrder = append(s.deviceOrder, d.ID)
	return nil
}

func (s *Store) GetDevice(_ context.Context, id string) (*core.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *Store) GetDeviceByFingerprint(_ context.Context, fp string) (*core.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.devices {
		if d.Fingerprint == fp {
			cp := *d
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) ListDevicesByUser(_ context.Context, userID string, p core.Page) ([]core.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Device{}
	for _, id := range s.deviceOrder {
		d := s.devices[id]
		if d.UserID != userID {
			continue
		}
		out = append(out, *d)
	}
	return page(out, p), nil
}

func (s *Store) UpdateDevice(_ context.Context, id string, patch core.DevicePatch) (*core.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if patch.Fingerprint != nil && *patch.Fingerprint != d.Fingerprint {
		for _, other := range s.devices {
			if other.Fingerprint == *patch.Fingerprint {
				return nil, core.ErrConflict
			}
		}
		d.Fingerprint = *patch.Fingerprint
	}
	if patch.TrustScore != nil {
		if *patch.TrustScore < 0 || *patch.TrustScore > 1 {
			return nil, core.ErrInvalid
		}
		d.TrustScore = patch.TrustScore
	}
	if patch.LastSeen != nil {
		d.LastSeen = patch.LastSeen
	}
	if patch.Metadata != nil {
		d.Metadata = *patch.Metadata
	}
	cp := *d
	return &cp, nil
}

func (s *Store) DeleteDevice(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.devices, id)
	s.deviceOrder = remove(s.deviceOrder, id)
	return nil
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
