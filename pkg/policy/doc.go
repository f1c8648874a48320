// Package policy lints reference data snapshots with Open Policy Agent (OPA)
// before they are published.
//
// Every policy is a Rego module whose package defines a "deny" set. The
// engine evaluates each enabled policy against an Input document built from
// the snapshot:
//
//	{
//	    "revision": "...",
//	    "source": "seed/base.yaml,seed/stores.json",
//	    "collections": {"productStores": [...], "countries": [...], ...}
//	}
//
// Elements of the deny set are either strings or objects with "message",
// "severity" and "resource" keys.
//
// # Usage
//
//	engine, err := policy.NewEngine(logger, policy.SeverityError)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := engine.EvaluateSnapshot(ctx, snap)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if !result.Allowed {
//	    for _, v := range result.Blocking() {
//	        fmt.Printf("%s: %s\n", v.Policy, v.Message)
//	    }
//	}
//
// # Built-in Policies
//
//  1. product-store-id-unique - warns on repeated productStoreId values
//  2. record-keys-present - rejects records with an empty key field
//  3. state-country-reference - warns on states naming an unknown country
//
// # Custom Policies
//
// Custom policies are loaded from .rego or .json files. A .rego policy is
// named after its file; its leading comment block becomes the description
// and may carry a "# severity: <level>" directive:
//
//	# Every product store needs a display name.
//	# severity: error
//
//	package custom.names
//
//	import rego.v1
//
//	deny contains msg if {
//	    some s in object.get(input.collections, "productStores", [])
//	    not s.storeName
//	    msg := sprintf("product store %s has no name", [s.productStoreId])
//	}
//
// # Severity Levels
//
//   - info: informational
//   - warning: should be reviewed
//   - error: blocks a publish at the default threshold
//   - critical: always blocks
package policy
