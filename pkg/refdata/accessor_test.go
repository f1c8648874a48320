package refdata

import (
	"testing"
)

type swapView struct {
	current *Snapshot
}

func (v *swapView) Current() *Snapshot { return v.current }

func TestAccessorReadsCurrentSnapshot(t *testing.T) {
	view := &swapView{current: NewSnapshot(Collections{
		ProductStores: []ProductStore{{ProductStoreID: "10000"}},
	})}
	acc := NewAccessor(view)

	if _, ok := acc.ProductStore("10000"); !ok {
		t.Fatal("expected product store 10000")
	}

	view.current = NewSnapshot(Collections{
		ProductStores: []ProductStore{{ProductStoreID: "20000"}},
		Countries:     []Country{{GeoID: "CAN"}},
	})

	if _, ok := acc.ProductStore("10000"); ok {
		t.Error("expected 10000 to be gone after swap")
	}
	if _, ok := acc.ProductStore("20000"); !ok {
		t.Error("expected product store 20000 after swap")
	}
	if n := len(acc.Countries()); n != 1 {
		t.Errorf("expected 1 country, got %d", n)
	}
}

func TestAccessorWithoutSnapshot(t *testing.T) {
	tests := []struct {
		name string
		acc  *Accessor
	}{
		{"nil accessor", nil},
		{"nil view", NewAccessor(nil)},
		{"empty view", NewAccessor(StaticView{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.acc.ProductStores(); len(got) != 0 {
				t.Errorf("expected no product stores, got %d", len(got))
			}
			if got := tt.acc.FacilityTypes(); len(got) != 0 {
				t.Errorf("expected no facility types, got %d", len(got))
			}
			if got := tt.acc.LocationTypes(); len(got) != 0 {
				t.Errorf("expected no location types, got %d", len(got))
			}
			if got := tt.acc.Countries(); len(got) != 0 {
				t.Errorf("expected no countries, got %d", len(got))
			}
			if got := tt.acc.States(); len(got) != 0 {
				t.Errorf("expected no states, got %d", len(got))
			}
			if got := tt.acc.PartyRoles(); len(got) != 0 {
				t.Errorf("expected no party roles, got %d", len(got))
			}
			if got := tt.acc.ExternalMappingTypes(); len(got) != 0 {
				t.Errorf("expected no external mapping types, got %d", len(got))
			}
			if _, ok := tt.acc.ProductStore("10000"); ok {
				t.Error("expected absent lookup")
			}
		})
	}
}

func TestStaticView(t *testing.T) {
	s := NewSnapshot(testCollections())
	acc := NewAccessor(StaticView{Snapshot: s})

	if acc.Snapshot() != s {
		t.Fatal("expected accessor to resolve the static snapshot")
	}
	if got := acc.FacilityTypes(); len(got) != 2 || got[1].FacilityTypeID != "RETAIL_STORE" {
		t.Errorf("unexpected facility types: %v", got)
	}
}
