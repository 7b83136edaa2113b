// Package knowledge implements the private semantic index and the retrieval
// gate that decides, per query, whether the index answers well enough or the
// caller should escalate to a network search.
package knowledge
