// Package harness runs YAML game scenarios against the engine.
//
// A scenario seeds a state, applies a list of events through the real
// runner, checks the step invariants after every event, and compares the
// final state with its expectations.
//
// # Scenario Format
//
//	name: hit_window
//	description: "A note one unit above the hit line is hit"
//	config:                 # optional rule overrides
//	  miss_penalty: 2
//	  substitute: false
//	initial:                # optional starting state
//	  combo: 5
//	  clock: 40
//	  falling:
//	    - {lane: red, position: 349}
//	events:
//	  - key: red
//	  - ticks: 3
//	  - spawn: {player: true, pitch: 61}
//	  - end: true
//	expect:
//	  score: 1
//	  combo: 1
//	  expired_ids: [0]
//
// # Invariants
//
// After every step the harness verifies that the multiplier follows the
// combo, falling ids are unique and below the spawn counter, expired notes
// were falling on the step before, game_ended never clears, and (without a
// miss penalty) the score never decreases.
//
// # Golden Traces
//
// RunWithGolden renders the trace with FormatTrace and compares it with
// testdata/golden/<name>.golden using goldie.
package harness
