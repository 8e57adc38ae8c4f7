// Package testutil contains helpers shared by tests: a fluent State builder,
// a scripted reasoning provider and a recording stub tool. They are not
// intended for production usage.
package testutil
