package refdata

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// testCollections returns a small fixture touching every collection.
func testCollections() Collections {
	return Collections{
		ProductStores: []ProductStore{
			{ProductStoreID: "10000", StoreName: "Demo Store", Attributes: map[string]string{"region": "us"}},
			{ProductStoreID: "10001", StoreName: "Outlet"},
		},
		FacilityTypes: []FacilityType{
			{FacilityTypeID: "WAREHOUSE"},
			{FacilityTypeID: "RETAIL_STORE"},
		},
		LocationTypes: []LocationType{
			{LocationTypeEnumID: "FLT_PICKLOC", Description: "Pick"},
		},
		Countries: []Country{
			{GeoID: "USA", GeoName: "United States", GeoCodeAlpha2: "US", GeoCodeAlpha3: "USA"},
		},
		States: []StateProvince{
			{GeoID: "USA_CA", GeoName: "California", CountryGeoID: "USA"},
		},
		PartyRoles: []PartyRole{
			{RoleTypeID: "CUSTOMER"},
		},
		ExternalMappingTypes: []ExternalMappingType{
			{MappingTypeID: "SHOPIFY_PROD", Description: "Shopify product"},
		},
	}
}

func TestProductStoreLookup(t *testing.T) {
	tests := []struct {
		name   string
		stores []ProductStore
		id     string
		want   ProductStore
		found  bool
	}{
		{
			name:   "match",
			stores: []ProductStore{{ProductStoreID: "10000"}, {ProductStoreID: "10001"}},
			id:     "10000",
			want:   ProductStore{ProductStoreID: "10000"},
			found:  true,
		},
		{
			name:   "empty collection",
			stores: nil,
			id:     "anything",
		},
		{
			name:   "duplicate ids return first occurrence",
			stores: []ProductStore{{ProductStoreID: "A", StoreName: "first"}, {ProductStoreID: "A", StoreName: "second"}},
			id:     "A",
			want:   ProductStore{ProductStoreID: "A", StoreName: "first"},
			found:  true,
		},
		{
			name:   "no case folding",
			stores: []ProductStore{{ProductStoreID: "STORE"}},
			id:     "store",
		},
		{
			name:   "no trimming",
			stores: []ProductStore{{ProductStoreID: "STORE"}},
			id:     " STORE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSnapshot(Collections{ProductStores: tt.stores})
			got, ok := s.ProductStore(tt.id)
			if ok != tt.found {
				t.Fatalf("expected found=%v, got %v", tt.found, ok)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("unexpected record (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCollectionsReturnedInOrder(t *testing.T) {
	c := testCollections()
	s := NewSnapshot(c)

	opts := cmpopts.EquateEmpty()
	checks := []struct {
		name string
		want any
		got  any
	}{
		{"productStores", c.ProductStores, s.ProductStores()},
		{"facilityTypes", c.FacilityTypes, s.FacilityTypes()},
		{"locationTypes", c.LocationTypes, s.LocationTypes()},
		{"countries", c.Countries, s.Countries()},
		{"states", c.States, s.States()},
		{"partyRoles", c.PartyRoles, s.PartyRoles()},
		{"externalMappingTypes", c.ExternalMappingTypes, s.ExternalMappingTypes()},
	}
	for _, check := range checks {
		if diff := cmp.Diff(check.want, check.got, opts); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", check.name, diff)
		}
	}
}

func TestFacilityTypesKeepOrder(t *testing.T) {
	s := NewSnapshot(Collections{
		FacilityTypes: []FacilityType{{FacilityTypeID: "WAREHOUSE"}, {FacilityTypeID: "RETAIL_STORE"}},
	})

	got := s.FacilityTypes()
	if len(got) != 2 {
		t.Fatalf("expected 2 facility types, got %d", len(got))
	}
	if got[0].FacilityTypeID != "WAREHOUSE" || got[1].FacilityTypeID != "RETAIL_STORE" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestSnapshotIdempotentReads(t *testing.T) {
	s := NewSnapshot(testCollections())

	if diff := cmp.Diff(s.ProductStores(), s.ProductStores()); diff != "" {
		t.Errorf("product stores differ between calls:\n%s", diff)
	}
	if diff := cmp.Diff(s.States(), s.States()); diff != "" {
		t.Errorf("states differ between calls:\n%s", diff)
	}

	first, ok1 := s.ProductStore("10001")
	second, ok2 := s.ProductStore("10001")
	if ok1 != ok2 || !cmp.Equal(first, second) {
		t.Errorf("lookup not repeatable: %v/%v vs %v/%v", first, ok1, second, ok2)
	}
}

func TestSnapshotIsolatedFromBuilder(t *testing.T) {
	c := testCollections()
	s := NewSnapshot(c)

	c.ProductStores[0].StoreName = "changed"
	c.ProductStores[0].Attributes["region"] = "eu"
	c.FacilityTypes = append(c.FacilityTypes, FacilityType{FacilityTypeID: "NEW"})

	ps, ok := s.ProductStore("10000")
	if !ok {
		t.Fatal("expected product store 10000")
	}
	if ps.StoreName != "Demo Store" {
		t.Errorf("expected StoreName %q, got %q", "Demo Store", ps.StoreName)
	}
	if ps.Attributes["region"] != "us" {
		t.Errorf("expected region us, got %s", ps.Attributes["region"])
	}
	if n := len(s.FacilityTypes()); n != 2 {
		t.Errorf("expected 2 facility types, got %d", n)
	}
}

func TestLookupResultIsolatedFromSnapshot(t *testing.T) {
	s := NewSnapshot(testCollections())

	ps, ok := s.ProductStore("10000")
	if !ok {
		t.Fatal("expected product store 10000")
	}
	ps.Attributes["region"] = "eu"
	ps.Attributes["added"] = "yes"

	again, _ := s.ProductStore("10000")
	if again.Attributes["region"] != "us" {
		t.Errorf("expected region us, got %s", again.Attributes["region"])
	}
	if _, ok := again.Attributes["added"]; ok {
		t.Error("caller write leaked into the snapshot")
	}
	if got := s.ProductStores()[0].Attributes["region"]; got != "us" {
		t.Errorf("expected stored region us, got %s", got)
	}
}

func TestEmptyCollectionsAreNonNil(t *testing.T) {
	s := NewSnapshot(Collections{})

	checks := map[Kind]bool{
		KindProductStores:        s.ProductStores() != nil,
		KindFacilityTypes:        s.FacilityTypes() != nil,
		KindLocationTypes:        s.LocationTypes() != nil,
		KindCountries:            s.Countries() != nil,
		KindStates:               s.States() != nil,
		KindPartyRoles:           s.PartyRoles() != nil,
		KindExternalMappingTypes: s.ExternalMappingTypes() != nil,
	}
	for kind, nonNil := range checks {
		if !nonNil {
			t.Errorf("expected empty, non-nil %s", kind)
		}
	}
}

func TestAppendToViewDoesNotLeak(t *testing.T) {
	s := NewSnapshot(testCollections())

	view := s.PartyRoles()
	_ = append(view, PartyRole{RoleTypeID: "INTRUDER"})

	if n := len(s.PartyRoles()); n != 1 {
		t.Fatalf("expected 1 party role, got %d", n)
	}

	// A successor built from Collections must not share memory either.
	next := s.Collections()
	next.PartyRoles[0].RoleTypeID = "SUPPLIER"
	if got := s.PartyRoles()[0].RoleTypeID; got != "CUSTOMER" {
		t.Errorf("expected CUSTOMER, got %s", got)
	}
}

func TestNilSnapshotIsEmpty(t *testing.T) {
	var s *Snapshot

	if s.ProductStores() != nil || s.Countries() != nil || s.ExternalMappingTypes() != nil {
		t.Error("expected nil collections from nil snapshot")
	}
	if _, ok := s.ProductStore("10000"); ok {
		t.Error("expected lookup on nil snapshot to be absent")
	}
	if s.Revision() != "" {
		t.Errorf("expected empty revision, got %q", s.Revision())
	}
	for k, n := range s.Counts() {
		if n != 0 {
			t.Errorf("expected 0 %s, got %d", k, n)
		}
	}
}

func TestSnapshotMetadata(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSnapshot(Collections{},
		WithRevision("rev-1"),
		WithSource("seed/base.yaml"),
		WithCreatedAt(created),
	)

	if s.Revision() != "rev-1" {
		t.Errorf("expected revision rev-1, got %s", s.Revision())
	}
	if s.Source() != "seed/base.yaml" {
		t.Errorf("expected source seed/base.yaml, got %s", s.Source())
	}
	if !s.CreatedAt().Equal(created) {
		t.Errorf("expected created %v, got %v", created, s.CreatedAt())
	}

	other := NewSnapshot(Collections{})
	if other.Revision() == "" || other.Revision() == NewSnapshot(Collections{}).Revision() {
		t.Error("expected unique generated revisions")
	}
}

func TestCountsAndRecords(t *testing.T) {
	s := NewSnapshot(testCollections())

	want := map[Kind]int{
		KindProductStores:        2,
		KindFacilityTypes:        2,
		KindLocationTypes:        1,
		KindCountries:            1,
		KindStates:               1,
		KindPartyRoles:           1,
		KindExternalMappingTypes: 1,
	}
	if diff := cmp.Diff(want, s.Counts()); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}

	if _, ok := s.Records(KindStates).([]StateProvince); !ok {
		t.Errorf("expected []StateProvince for states, got %T", s.Records(KindStates))
	}
	if s.Records(Kind("bogus")) != nil {
		t.Error("expected nil records for unknown kind")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"productStores", KindProductStores, false},
		{"product-stores", KindProductStores, false},
		{"external-mapping-types", KindExternalMappingTypes, false},
		{"states", KindStates, false},
		{"warehouses", "", true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
