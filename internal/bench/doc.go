// Package bench runs catalog filters against a seeded store on both
// evaluation paths and checks that they agree.
//
// For each definition the Runner evaluates the bound spec in memory over the
// hydrated entities (sharded across goroutines, all sharing one compiled
// predicate) and again through SQL via store.FindIDs. The two id lists must
// be identical. Durations are recorded in Prometheus histograms.
//
// CRUD times the blog insert/select/update/delete cycle as a baseline for
// raw store throughput.
package bench
