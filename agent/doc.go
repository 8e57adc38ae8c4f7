// Package agent implements the execution core: the step loop (Agent), the
// single-iteration StepExecutor and the StepPolicy deciding which action a
// step performs.
//
// A run proceeds as follows:
//
//  1. Run validates the goal and creates a fresh core.State
//  2. For each of MaxSteps iterations the StepExecutor asks the reasoning
//     provider for a Thought, lets the policy pick an Action and dispatches
//     it to the tool registry snapshot taken at run start
//  3. The think and action entries of every step are collected into a
//     core.RunReport
//
// There is no early exit: a run always performs exactly MaxSteps iterations
// unless the context is cancelled or the reasoning provider fails, in which
// case a *core.RunError with a partial report is returned.
//
// FixedSchedule reproduces the classic plan (search, remember, respond) and
// ignores the thought. ThoughtDirected lets the provider choose through
// Thought.NextAction.
package agent
