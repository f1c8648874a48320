// Package config loads the refdata application configuration and the seed
// documents that carry reference data.
//
// # Overview
//
// Reference data is supplied as configuration: one or more seed documents,
// each listing any subset of the collections by their wire names
// (productStores, facilityTypes, locationTypes, countries, states,
// partyRoles, externalMappingTypes). Seeds are merged in path order.
//
// # Formats
//
//   - YAML (.yaml, .yml), decoded with strict field checking
//   - JSON (.json), decoded with unknown fields rejected
//   - CUE (.cue), evaluated and unified with the #Seed schema before decoding
//
// Every document is checked twice: against the #Seed CUE schema held by the
// SchemaRegistry, and against the validator tags on the refdata record types.
// Errors from all documents are collected and reported together.
//
// # Watching
//
// Watcher reports seed changes on disk after a debounce interval so callers
// can rebuild and republish a snapshot.
//
// # Usage Example
//
//	cfg, err := config.LoadConfig("refdata.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	set, err := config.NewSeedLoader().LoadSeeds(ctx, cfg.Seeds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	snap := refdata.NewSnapshot(set.Collections, refdata.WithSource(set.Source()))
package config
