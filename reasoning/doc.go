// Package reasoning provides core.ReasoningProvider implementations:
//
//   - Heuristic: a deterministic, offline provider that summarises the prompt
//   - ModelReasoner: asks a model.Model for a JSON thought and decodes it
//   - Retry: wraps any provider with bounded exponential backoff
//
// Providers never invent a thought to hide a failure: a transport error or a
// malformed model reply is returned to the agent loop, which aborts the run.
package reasoning
