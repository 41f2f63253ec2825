// Package coordinator owns the lifecycle of the managed Syncthing daemon:
// the authoritative run-state, the API client bound to the daemon's current
// address, and the two background watchers whose validity is tied exactly
// to the daemon's running lifetime.
//
// Correctness rests on two mutexes. The state lock guards the RunState
// value and its transition table. The API-layer lock guards the tuple
// {event watcher, connections watcher, client slot, session cancel scope},
// which must always be observed and mutated as a unit. The acquisition
// order is fixed: code may take the API-layer lock while deciding a state
// transition's consequences, but must never hold the API-layer lock while
// acquiring the state lock.
package coordinator
