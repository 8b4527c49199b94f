// Package engine contains the simulation core for "Terminales Gemelas":
// the strategy resolver, the fixed payoff table, the per-round adjustment
// pipeline and the stateful run controller.
//
// ARCHITECTURAL RULE: the engine performs no I/O and holds no locks. Hosting
// layers (HTTP server, CLI) own serialization per run handle and feed round
// records to the event log, the hub and the archive.
package engine
