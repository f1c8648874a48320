package refdata

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Snapshot is an immutable, point-in-time view of all reference data
// collections. The zero value and a nil *Snapshot are both valid empty
// snapshots.
type Snapshot struct {
	revision  string
	source    string
	createdAt time.Time
	data      Collections
}

// SnapshotOption customises snapshot metadata.
type SnapshotOption func(*Snapshot)

// WithRevision overrides the generated revision identifier.
func WithRevision(revision string) SnapshotOption {
	return func(s *Snapshot) {
		s.revision = revision
	}
}

// WithSource records where the snapshot's data came from.
func WithSource(source string) SnapshotOption {
	return func(s *Snapshot) {
		s.source = source
	}
}

// WithCreatedAt overrides the creation timestamp.
func WithCreatedAt(t time.Time) SnapshotOption {
	return func(s *Snapshot) {
		s.createdAt = t
	}
}

// NewSnapshot builds a snapshot from c. The collections are copied, so later
// changes to c are not visible through the snapshot.
func NewSnapshot(c Collections, opts ...SnapshotOption) *Snapshot {
	s := &Snapshot{
		revision:  uuid.NewString(),
		createdAt: time.Now().UTC(),
		data:      c.clone(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Revision returns the snapshot's unique revision identifier.
func (s *Snapshot) Revision() string {
	if s == nil {
		return ""
	}
	return s.revision
}

// Source returns the description of where the data came from.
func (s *Snapshot) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}

// CreatedAt returns when the snapshot was built.
func (s *Snapshot) CreatedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.createdAt
}

// ProductStores returns all product stores in their original order.
func (s *Snapshot) ProductStores() []ProductStore {
	if s == nil {
		return nil
	}
	return slices.Clip(s.data.ProductStores)
}

// FacilityTypes returns all facility types in their original order.
func (s *Snapshot) FacilityTypes() []FacilityType {
	if s == nil {
		return nil
	}
	return slices.Clip(s.data.FacilityTypes)
}

// LocationTypes returns all location types in their original order.
func (s *Snapshot) LocationTypes() []LocationType {
	if s == nil {
		return nil
	}
	return slices.Clip(s.data.LocationTypes)
}

// ProductStore returns the first product store whose ID equals
// productStoreID exactly. The boolean is false when there is no match.
//
// IDs are expected to be unique; when they are not, the first occurrence wins.
// The returned record owns its Attributes map.
func (s *Snapshot) ProductStore(productStoreID string) (ProductStore, bool) {
	if s == nil {
		return ProductStore{}, false
	}
	for i := range s.data.ProductStores {
		if s.data.ProductStores[i].ProductStoreID == productStoreID {
			ps := s.data.ProductStores[i]
			ps.Attributes = maps.Clone(ps.Attributes)
			return ps, true
		}
	}
	return ProductStore{}, false
}

// Countries returns all countries in their original order.
func (s *Snapshot) Countries() []Country {
	if s == nil {
		return nil
	}
	return slices.Clip(s.data.Countries)
}

// States returns all states and provinces in their original order.
func (s *Snapshot) States() []StateProvince {
	if s == nil {
		return nil
	}
	return slices.Clip(s.data.States)
}

// PartyRoles returns all party roles in their original order.
func (s *Snapshot) PartyRoles() []PartyRole {
	if s == nil {
		return nil
	}
	return slices.Clip(s.data.PartyRoles)
}

// ExternalMappingTypes returns all external mapping types in their original order.
func (s *Snapshot) ExternalMappingTypes() []ExternalMappingType {
	if s == nil {
		return nil
	}
	return slices.Clip(s.data.ExternalMappingTypes)
}

// Records returns the collection for k as its typed slice, or nil for an
// unknown kind.
func (s *Snapshot) Records(k Kind) any {
	switch k {
	case KindProductStores:
		return s.ProductStores()
	case KindFacilityTypes:
		return s.FacilityTypes()
	case KindLocationTypes:
		return s.LocationTypes()
	case KindCountries:
		return s.Countries()
	case KindStates:
		return s.States()
	case KindPartyRoles:
		return s.PartyRoles()
	case KindExternalMappingTypes:
		return s.ExternalMappingTypes()
	}
	return nil
}

// Len returns the number of records in the collection for k.
func (s *Snapshot) Len(k Kind) int {
	switch k {
	case KindProductStores:
		return len(s.ProductStores())
	case KindFacilityTypes:
		return len(s.FacilityTypes())
	case KindLocationTypes:
		return len(s.LocationTypes())
	case KindCountries:
		return len(s.Countries())
	case KindStates:
		return len(s.States())
	case KindPartyRoles:
		return len(s.PartyRoles())
	case KindExternalMappingTypes:
		return len(s.ExternalMappingTypes())
	}
	return 0
}

// Counts returns the record count of every collection.
func (s *Snapshot) Counts() map[Kind]int {
	counts := make(map[Kind]int, len(allKinds))
	for _, k := range allKinds {
		counts[k] = s.Len(k)
	}
	return counts
}

// Collections returns a deep copy of the snapshot's contents, suitable as the
// starting point for building a successor snapshot.
func (s *Snapshot) Collections() Collections {
	if s == nil {
		return Collections{}
	}
	return s.data.clone()
}
