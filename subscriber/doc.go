// Package subscriber manages the EventSub subscriptions whose notifications a
// webhook.Handler receives. It owns one conduit whose single shard points at
// the webhook callback, and creates subscriptions from eventsub definitions
// against that conduit.
//
// A Ledger remembers which subscriptions were created so restarts do not
// create duplicates. MemoryLedger serves single-process use and tests; the
// redisledger package shares the ledger across replicas.
package subscriber
