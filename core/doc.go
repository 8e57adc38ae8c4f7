// Package core provides the foundational domain types and interfaces of the
// agent execution core. It defines:
//
//   - State (goal, step counter, history, memory, tool log of a single run)
//   - Thought / Action (reasoning output and the step selected from it)
//   - Args (positional + named tool arguments)
//   - Entry / RunReport (the serializable outcome of a run)
//   - Event / Observer (run lifecycle notifications)
//   - ReasoningProvider, MemoryStore and RunStore (pluggable collaborators)
//   - the error taxonomy (ErrInvalidGoal, ErrToolNotFound, ReasoningError, RunError)
//
// The package intentionally keeps implementation concerns (tools, the step
// loop, providers, persistence) out of scope, exposing small interfaces to
// enable custom backends and extensions.
package core
