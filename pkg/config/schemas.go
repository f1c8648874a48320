package config

import (
	"fmt"
	"sort"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// SeedSchema is the name of the built-in seed document schema.
const SeedSchema = "seed"

// SchemaRegistry manages CUE schemas for validation. Each schema is a CUE
// source whose named definition is the constraint applied to documents.
type SchemaRegistry struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
	mu      sync.RWMutex
}

// NewSchemaRegistry creates a new schema registry with built-in schemas.
func NewSchemaRegistry() *SchemaRegistry {
	sr := &SchemaRegistry{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}

	if err := sr.RegisterSchema(SeedSchema, builtinSeedSchema, "#Seed"); err != nil {
		// The built-in schema is a constant; failing to compile it is a programming error.
		panic(err)
	}

	return sr
}

// Context returns the CUE context schemas are compiled in. Values unified
// with a registered schema must come from the same context.
func (sr *SchemaRegistry) Context() *cue.Context {
	return sr.ctx
}

// RegisterSchema compiles source and registers the definition named by def
// under name.
func (sr *SchemaRegistry) RegisterSchema(name, source, def string) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	val := sr.ctx.CompileString(source, cue.Filename(name+".cue"))
	if err := val.Err(); err != nil {
		return fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	defVal := val.LookupPath(cue.ParsePath(def))
	if !defVal.Exists() {
		return fmt.Errorf("schema %s has no definition %s", name, def)
	}

	sr.schemas[name] = defVal
	return nil
}

// GetSchema retrieves a schema by name.
func (sr *SchemaRegistry) GetSchema(name string) (cue.Value, bool) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	val, ok := sr.schemas[name]
	return val, ok
}

// Unify unifies val with the named schema and checks the result is concrete.
func (sr *SchemaRegistry) Unify(schemaName string, val cue.Value) (cue.Value, error) {
	schema, ok := sr.GetSchema(schemaName)
	if !ok {
		return cue.Value{}, fmt.Errorf("schema %s not found", schemaName)
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, err
	}
	return unified, nil
}

// ValidateJSON validates a JSON document against the named schema.
func (sr *SchemaRegistry) ValidateJSON(schemaName string, data []byte) error {
	val := sr.ctx.CompileBytes(data)
	if err := val.Err(); err != nil {
		return fmt.Errorf("failed to compile document: %w", err)
	}

	if _, err := sr.Unify(schemaName, val); err != nil {
		return err
	}
	return nil
}

// ListSchemas returns all registered schema names.
func (sr *SchemaRegistry) ListSchemas() []string {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	names := make([]string, 0, len(sr.schemas))
	for name := range sr.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Built-in schema definitions

const builtinSeedSchema = `
#ProductStore: {
	productStoreId:          string & !=""
	storeName?:              string
	companyName?:            string
	primaryFacilityGroupId?: string
	defaultCurrencyUomId?:   string
	attributes?: {[string]: string}
}

#FacilityType: {
	facilityTypeId: string & !=""
	parentTypeId?:  string
	description?:   string
}

#LocationType: {
	enumId:       string & !=""
	description?: string
	sequenceNum?: int & >=0
}

#Country: {
	geoId:          string & !=""
	geoName?:       string
	geoCodeAlpha2?: =~"^[A-Z]{2}$"
	geoCodeAlpha3?: =~"^[A-Z]{3}$"
}

#State: {
	geoId:         string & !=""
	geoName?:      string
	geoCode?:      string
	countryGeoId?: string
}

#PartyRole: {
	roleTypeId:    string & !=""
	parentTypeId?: string
	description?:  string
}

#ExternalMappingType: {
	enumId:       string & !=""
	enumTypeId?:  string
	description?: string
}

#Seed: {
	productStores?: [...#ProductStore]
	facilityTypes?: [...#FacilityType]
	locationTypes?: [...#LocationType]
	countries?: [...#Country]
	states?: [...#State]
	partyRoles?: [...#PartyRole]
	externalMappingTypes?: [...#ExternalMappingType]
}
`
