// Package agents implements the capability agents the interview stages
// invoke: profile extraction, question generation, answer evaluation,
// knowledge-backed advising, and report writing. Each agent wraps one
// language-model call plus optional tool use; callers apply their own
// timeout, retry, and fallback policy around these calls.
package agents
