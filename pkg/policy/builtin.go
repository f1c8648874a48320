package policy

// Names of the built-in policies.
const (
	PolicyProductStoreIDUnique  = "product-store-id-unique"
	PolicyRecordKeysPresent     = "record-keys-present"
	PolicyStateCountryReference = "state-country-reference"
)

// GetBuiltinPolicies returns all built-in policies.
func GetBuiltinPolicies() []Policy {
	return []Policy{
		productStoreIDUniquePolicy(),
		recordKeysPresentPolicy(),
		stateCountryReferencePolicy(),
	}
}

// productStoreIDUniquePolicy flags product store ids that occur more than
// once. Lookups still resolve to the first occurrence.
func productStoreIDUniquePolicy() Policy {
	return Policy{
		Name:        PolicyProductStoreIDUnique,
		Description: "Product store ids should be unique; lookups return the first occurrence",
		Severity:    SeverityWarning,
		Enabled:     true,
		Builtin:     true,
		Tags:        []string{"productStores", "uniqueness"},
		Rego: `package refdata.policies.unique

import rego.v1

stores := object.get(input.collections, "productStores", [])

duplicate_ids contains id if {
	some i, j
	id := stores[i].productStoreId
	stores[j].productStoreId == id
	i != j
}

deny contains violation if {
	some id in duplicate_ids
	positions := [i | some i, s in stores; s.productStoreId == id]
	violation := {
		"message": sprintf("product store id '%s' appears %d times; lookups return productStores[%d]", [id, count(positions), positions[0]]),
		"severity": "warning",
		"resource": sprintf("productStores[%d]", [positions[1]]),
	}
}
`,
	}
}

// recordKeysPresentPolicy reports records whose key field is empty.
func recordKeysPresentPolicy() Policy {
	return Policy{
		Name:        PolicyRecordKeysPresent,
		Description: "Every record must carry a non-empty key field. Seed files never reach this check with an empty key because seed validation rejects them first; it guards collections built in code",
		Severity:    SeverityError,
		Enabled:     true,
		Builtin:     true,
		Tags:        []string{"keys", "integrity"},
		Rego: `package refdata.policies.keys

import rego.v1

key_fields := {
	"productStores": "productStoreId",
	"facilityTypes": "facilityTypeId",
	"locationTypes": "enumId",
	"countries": "geoId",
	"states": "geoId",
	"partyRoles": "roleTypeId",
	"externalMappingTypes": "enumId",
}

deny contains violation if {
	some collection, field in key_fields
	some i, record in object.get(input.collections, collection, [])
	object.get(record, field, "") == ""
	violation := {
		"message": sprintf("%s[%d] has an empty %s", [collection, i, field]),
		"severity": "error",
		"resource": sprintf("%s[%d]", [collection, i]),
	}
}
`,
	}
}

// stateCountryReferencePolicy reports states whose country is missing from
// the countries collection. It only applies when countries are present.
func stateCountryReferencePolicy() Policy {
	return Policy{
		Name:        PolicyStateCountryReference,
		Description: "States should reference a country in the countries collection",
		Severity:    SeverityWarning,
		Enabled:     true,
		Builtin:     true,
		Tags:        []string{"geo", "references"},
		Rego: `package refdata.policies.geo

import rego.v1

country_ids contains c.geoId if {
	some c in object.get(input.collections, "countries", [])
}

deny contains violation if {
	count(country_ids) > 0
	some i, state in object.get(input.collections, "states", [])
	country := object.get(state, "countryGeoId", "")
	country != ""
	not country in country_ids
	violation := {
		"message": sprintf("state '%s' references unknown country '%s'", [object.get(state, "geoId", ""), country]),
		"severity": "warning",
		"resource": sprintf("states[%d]", [i]),
	}
}
`,
	}
}
