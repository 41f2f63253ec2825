// Package log provides the structured logging abstraction used across
// synctrayd. The [Logger] interface decouples every component from the
// concrete logging backend; [NewZerolog] adapts zerolog for production use
// and [NewNoop] discards everything for tests and embedding.
package log
