// Package ports defines the interfaces between the engine core and its
// collaborators: durable stores, capability agents, the knowledge index,
// and network search. Adapters live under pkg/adapters; the engine only
// ever sees these interfaces.
//
// The package also ships reusable contract test suites
// (RunCheckpointStoreContract, RunRecordStoreContract) so every adapter is
// verified against the same behavioral expectations.
package ports
