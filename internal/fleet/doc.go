// Package fleet orchestrates synchronization across a fleet of biometric
// terminals.
//
// The registry holds static device descriptors loaded once per run. The
// orchestrator visits devices strictly sequentially, managing the session
// lifecycle (dial, maintenance mode, fetch, best-effort release) and
// isolating per-device failures: one unreachable terminal never prevents the
// rest of the fleet from being attempted. All outcomes land in a structured
// FleetReport; nothing is thrown past this boundary and there are no
// automatic retries — retry is an operator action.
//
// The live consumer pulls the unbounded punch stream of a single session,
// enriching each event through a previously built name index, with
// cooperative cancellation checked once per pull.
package fleet
