package refdata

// View resolves the snapshot an accessor reads from.
type View interface {
	Current() *Snapshot
}

// StaticView is a View over a fixed snapshot.
type StaticView struct {
	Snapshot *Snapshot
}

// Current implements View.
func (v StaticView) Current() *Snapshot {
	return v.Snapshot
}

// Accessor exposes the reference data operations over whatever snapshot its
// View currently holds. The snapshot is resolved once per call.
type Accessor struct {
	view View
}

// NewAccessor returns an Accessor reading from view.
func NewAccessor(view View) *Accessor {
	return &Accessor{view: view}
}

func (a *Accessor) snapshot() *Snapshot {
	if a == nil || a.view == nil {
		return nil
	}
	return a.view.Current()
}

// Snapshot returns the snapshot the next call would read.
func (a *Accessor) Snapshot() *Snapshot { return a.snapshot() }

// ProductStores returns all product stores of the current snapshot.
func (a *Accessor) ProductStores() []ProductStore { return a.snapshot().ProductStores() }

// FacilityTypes returns all facility types of the current snapshot.
func (a *Accessor) FacilityTypes() []FacilityType { return a.snapshot().FacilityTypes() }

// LocationTypes returns all location types of the current snapshot.
func (a *Accessor) LocationTypes() []LocationType { return a.snapshot().LocationTypes() }

// ProductStore looks up a product store by ID; see Snapshot.ProductStore.
func (a *Accessor) ProductStore(productStoreID string) (ProductStore, bool) {
	return a.snapshot().ProductStore(productStoreID)
}

// Countries returns all countries of the current snapshot.
func (a *Accessor) Countries() []Country { return a.snapshot().Countries() }

// States returns all states and provinces of the current snapshot.
func (a *Accessor) States() []StateProvince { return a.snapshot().States() }

// PartyRoles returns all party roles of the current snapshot.
func (a *Accessor) PartyRoles() []PartyRole { return a.snapshot().PartyRoles() }

// ExternalMappingTypes returns all external mapping types of the current snapshot.
func (a *Accessor) ExternalMappingTypes() []ExternalMappingType {
	return a.snapshot().ExternalMappingTypes()
}
