// Package rest implements the Syncthing local HTTP control API: the
// [Client] and its probing [Factory], plus the two background watchers that
// follow a running daemon (event stream, connection counters).
package rest
