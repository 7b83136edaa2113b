// Package domain contains the core data model of the interview engine:
// the Session snapshot, its Turns, the stage identifiers of the state
// machine, checkpoint and record types, and the error taxonomy shared by
// every layer.
//
// The types here are deliberately free of I/O. All mutation goes through
// the methods on Session, which enforce the structural invariants at the
// point of mutation (see InvariantError).
package domain
