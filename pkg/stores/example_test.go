package stores_test

import (
	"context"
	"fmt"
	"log"

	"github.com/openfroyo/refdata/pkg/refdata"
	"github.com/openfroyo/refdata/pkg/stores"
)

// ExampleMemoryStore_Publish demonstrates publishing a snapshot and reading it back.
func ExampleMemoryStore_Publish() {
	store, err := stores.NewMemoryStore(stores.Config{HistorySize: 8})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	snap := refdata.NewSnapshot(refdata.Collections{
		ProductStores: []refdata.ProductStore{{ProductStoreID: "10000", StoreName: "Demo Store"}},
	}, refdata.WithRevision("rev-1"))

	rec, err := store.Publish(stores.WithActor(ctx, "example"), snap)
	if err != nil {
		log.Fatal(err)
	}

	acc := refdata.NewAccessor(store)
	ps, _ := acc.ProductStore("10000")

	fmt.Printf("Revision: %s, Actor: %s, Store: %s\n", rec.Revision, rec.Actor, ps.StoreName)
	// Output: Revision: rev-1, Actor: example, Store: Demo Store
}
