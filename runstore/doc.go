// Package runstore houses the in-process implementation of core.RunStore.
// The interface itself (and the RunReport struct) live in the core package so
// higher level packages (the agentcore façade, the CLI) never depend on a
// concrete backend.
//
// A durable backend is provided by storage/sqlite; only the wiring layer
// decides which implementation to instantiate.
package runstore
