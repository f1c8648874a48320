package refdata

import (
	"fmt"
	"maps"
	"sort"
)

// Kind names a reference data collection.
type Kind string

const (
	KindProductStores        Kind = "productStores"
	KindFacilityTypes        Kind = "facilityTypes"
	KindLocationTypes        Kind = "locationTypes"
	KindCountries            Kind = "countries"
	KindStates               Kind = "states"
	KindPartyRoles           Kind = "partyRoles"
	KindExternalMappingTypes Kind = "externalMappingTypes"
)

var allKinds = []Kind{
	KindProductStores,
	KindFacilityTypes,
	KindLocationTypes,
	KindCountries,
	KindStates,
	KindPartyRoles,
	KindExternalMappingTypes,
}

// Kinds returns every collection kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind resolves a collection name. Besides the canonical names it
// accepts the kebab-case forms used on the command line (product-stores).
func ParseKind(name string) (Kind, error) {
	for _, k := range allKinds {
		if string(k) == name || k.Slug() == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown collection: %s", name)
}

// Slug returns the kebab-case form of the kind.
func (k Kind) Slug() string {
	out := make([]byte, 0, len(k)+4)
	for i := 0; i < len(k); i++ {
		c := k[i]
		if c >= 'A' && c <= 'Z' {
			out = append(out, '-', c+('a'-'A'))
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

// ProductStore is a product store record. ProductStoreID is the lookup key.
type ProductStore struct {
	ProductStoreID         string            `json:"productStoreId" yaml:"productStoreId" validate:"required"`
	StoreName              string            `json:"storeName,omitempty" yaml:"storeName,omitempty"`
	CompanyName            string            `json:"companyName,omitempty" yaml:"companyName,omitempty"`
	PrimaryFacilityGroupID string            `json:"primaryFacilityGroupId,omitempty" yaml:"primaryFacilityGroupId,omitempty"`
	DefaultCurrencyUomID   string            `json:"defaultCurrencyUomId,omitempty" yaml:"defaultCurrencyUomId,omitempty"`
	Attributes             map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// FacilityType classifies facilities (warehouse, retail store, ...).
type FacilityType struct {
	FacilityTypeID string `json:"facilityTypeId" yaml:"facilityTypeId" validate:"required"`
	ParentTypeID   string `json:"parentTypeId,omitempty" yaml:"parentTypeId,omitempty"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
}

// LocationType classifies locations inside a facility.
type LocationType struct {
	LocationTypeEnumID string `json:"enumId" yaml:"enumId" validate:"required"`
	Description        string `json:"description,omitempty" yaml:"description,omitempty"`
	SequenceNum        int    `json:"sequenceNum,omitempty" yaml:"sequenceNum,omitempty"`
}

// Country is a country geo record.
type Country struct {
	GeoID         string `json:"geoId" yaml:"geoId" validate:"required"`
	GeoName       string `json:"geoName,omitempty" yaml:"geoName,omitempty"`
	GeoCodeAlpha2 string `json:"geoCodeAlpha2,omitempty" yaml:"geoCodeAlpha2,omitempty" validate:"omitempty,len=2"`
	GeoCodeAlpha3 string `json:"geoCodeAlpha3,omitempty" yaml:"geoCodeAlpha3,omitempty" validate:"omitempty,len=3"`
}

// StateProvince is a state or province geo record.
type StateProvince struct {
	GeoID        string `json:"geoId" yaml:"geoId" validate:"required"`
	GeoName      string `json:"geoName,omitempty" yaml:"geoName,omitempty"`
	GeoCode      string `json:"geoCode,omitempty" yaml:"geoCode,omitempty"`
	CountryGeoID string `json:"countryGeoId,omitempty" yaml:"countryGeoId,omitempty"`
}

// PartyRole is a role type a party can play.
type PartyRole struct {
	RoleTypeID   string `json:"roleTypeId" yaml:"roleTypeId" validate:"required"`
	ParentTypeID string `json:"parentTypeId,omitempty" yaml:"parentTypeId,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ExternalMappingType names a kind of mapping between internal and external identifiers.
type ExternalMappingType struct {
	MappingTypeID string `json:"enumId" yaml:"enumId" validate:"required"`
	EnumTypeID    string `json:"enumTypeId,omitempty" yaml:"enumTypeId,omitempty"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Collections is the mutable form of a snapshot's contents. It is what
// producers fill in before calling NewSnapshot.
type Collections struct {
	ProductStores        []ProductStore        `json:"productStores,omitempty" yaml:"productStores,omitempty" validate:"dive"`
	FacilityTypes        []FacilityType        `json:"facilityTypes,omitempty" yaml:"facilityTypes,omitempty" validate:"dive"`
	LocationTypes        []LocationType        `json:"locationTypes,omitempty" yaml:"locationTypes,omitempty" validate:"dive"`
	Countries            []Country             `json:"countries,omitempty" yaml:"countries,omitempty" validate:"dive"`
	States               []StateProvince       `json:"states,omitempty" yaml:"states,omitempty" validate:"dive"`
	PartyRoles           []PartyRole           `json:"partyRoles,omitempty" yaml:"partyRoles,omitempty" validate:"dive"`
	ExternalMappingTypes []ExternalMappingType `json:"externalMappingTypes,omitempty" yaml:"externalMappingTypes,omitempty" validate:"dive"`
}

// Append adds every record of other after the records already in c.
func (c *Collections) Append(other Collections) {
	c.ProductStores = append(c.ProductStores, other.ProductStores...)
	c.FacilityTypes = append(c.FacilityTypes, other.FacilityTypes...)
	c.LocationTypes = append(c.LocationTypes, other.LocationTypes...)
	c.Countries = append(c.Countries, other.Countries...)
	c.States = append(c.States, other.States...)
	c.PartyRoles = append(c.PartyRoles, other.PartyRoles...)
	c.ExternalMappingTypes = append(c.ExternalMappingTypes, other.ExternalMappingTypes...)
}

// clone returns a copy of c that shares no backing arrays or maps with it.
func (c Collections) clone() Collections {
	out := Collections{
		ProductStores:        make([]ProductStore, len(c.ProductStores)),
		FacilityTypes:        append(make([]FacilityType, 0, len(c.FacilityTypes)), c.FacilityTypes...),
		LocationTypes:        append(make([]LocationType, 0, len(c.LocationTypes)), c.LocationTypes...),
		Countries:            append(make([]Country, 0, len(c.Countries)), c.Countries...),
		States:               append(make([]StateProvince, 0, len(c.States)), c.States...),
		PartyRoles:           append(make([]PartyRole, 0, len(c.PartyRoles)), c.PartyRoles...),
		ExternalMappingTypes: append(make([]ExternalMappingType, 0, len(c.ExternalMappingTypes)), c.ExternalMappingTypes...),
	}
	for i, ps := range c.ProductStores {
		ps.Attributes = maps.Clone(ps.Attributes)
		out.ProductStores[i] = ps
	}
	return out
}

// AttributeKeys returns the product store's attribute names in sorted order.
func (p ProductStore) AttributeKeys() []string {
	keys := make([]string, 0, len(p.Attributes))
	for k := range p.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
