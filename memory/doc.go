// Package memory contains the process-local core.MemoryStore used by the
// memory tool by default. The store interface resides in the core package;
// depend on core.MemoryStore in your code and select an implementation (this
// one, or storage/sqlite for durability) at wiring time.
package memory
