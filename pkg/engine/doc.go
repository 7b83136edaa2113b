// Package engine sequences the interview stages, persists a checkpoint at
// every transition, and exposes the suspend/resume surface callers drive the
// workflow through. Suspension is a return value, not a blocked goroutine:
// when a session reaches the answer-wait stage the engine hands control back
// to the caller and holds no resources until the next resume.
package engine
