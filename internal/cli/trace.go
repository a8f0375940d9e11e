package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/engine"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/harness"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	SessionID string // optional - defaults to the latest session
	Kind      string // optional - filter to one event kind
}

// TraceEvent is a single applied event and the state it produced.
type TraceEvent struct {
	Seq        int64           `json:"seq"`
	Kind       ir.EventKind    `json:"kind"`
	Event      json.RawMessage `json:"event"`
	Score      int64           `json:"score"`
	Combo      int             `json:"combo"`
	Multiplier float64         `json:"multiplier"`
	MissCount  int             `json:"miss_count"`
	Falling    int             `json:"falling"`
	Expired    []int64         `json:"expired,omitempty"`
	Sounded    int             `json:"sounded"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int                  `json:"total_events"`
	ByKind      map[ir.EventKind]int `json:"by_kind"`
	Finished    bool                 `json:"finished"`
	Drained     bool                 `json:"drained"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	SessionID   string       `json:"session_id"`
	Song        string       `json:"song"`
	Timeline    []TraceEvent `json:"timeline"`
	Stats       TraceStats   `json:"stats"`
	Fingerprint string       `json:"fingerprint"`

	lines []string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the step-by-step history of a session",
		Long: `Fold a recorded session's events and print the state after each one.

Each line shows the event that was applied and the score, combo,
multiplier and notes on the track afterwards. Without --session the most
recent session is traced.

Examples:
  guitarhero trace --db sessions.db
  guitarhero trace --db sessions.db --session 0190c4f2-... --kind key
  guitarhero trace --db sessions.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session id to trace (defaults to latest)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "show only events of this kind (tick, spawn, key, end)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	if opts.Kind != "" && !validKind(ir.EventKind(opts.Kind)) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid kind %q: must be one of tick, spawn, key, end", opts.Kind))
	}

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var sess store.Session
	if opts.SessionID != "" {
		sess, err = st.ReadSession(ctx, opts.SessionID)
	} else {
		sess, err = st.LatestSession(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	rules, err := sessionRules(sess)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to decode session config", err)
	}

	recorded, err := st.ReadEvents(ctx, sess.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}
	counts, err := st.CountEvents(ctx, sess.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count events", err)
	}

	result, err := buildTrace(sess, rules, recorded, ir.EventKind(opts.Kind))
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build trace", err)
	}
	result.Stats.ByKind = counts

	formatter := newFormatter(opts.RootOptions, cmd)
	if formatter.JSON() {
		return formatter.Success(result)
	}
	outputTraceText(cmd, result)
	return nil
}

// buildTrace folds the recorded events and keeps the steps matching kind
// (all steps when kind is empty).
func buildTrace(sess store.Session, rules engine.Rules, recorded []store.RecordedEvent, kind ir.EventKind) (TraceResult, error) {
	events := make([]ir.Event, len(recorded))
	for i, re := range recorded {
		events[i] = re.Event
	}
	states := engine.Trace(rules, ir.InitialState(), events)

	result := TraceResult{
		SessionID: sess.ID,
		Song:      sess.Song,
		Timeline:  []TraceEvent{},
		Stats: TraceStats{
			TotalEvents: len(events),
			Finished:    sess.Finished,
		},
		Fingerprint: ir.StateFingerprint(ir.InitialState()),
	}
	if len(states) > 0 {
		final := states[len(states)-1]
		result.Stats.Drained = final.Drained()
		result.Fingerprint = ir.StateFingerprint(final)
	}

	for i, re := range recorded {
		if kind != "" && re.Event.Kind() != kind {
			continue
		}
		s := states[i]
		_, payload, err := ir.MarshalEvent(re.Event)
		if err != nil {
			return TraceResult{}, fmt.Errorf("seq %d: %w", re.Seq, err)
		}
		te := TraceEvent{
			Seq:        re.Seq,
			Kind:       re.Event.Kind(),
			Event:      payload,
			Score:      s.Score,
			Combo:      s.Combo,
			Multiplier: s.Multiplier,
			MissCount:  s.MissCount,
			Falling:    len(s.FallingNotes),
			Sounded:    len(s.NotesToSound),
		}
		for _, n := range s.ExpiredNotes {
			te.Expired = append(te.Expired, n.ID)
		}
		result.Timeline = append(result.Timeline, te)
		result.lines = append(result.lines, harness.FormatStep(re.Seq, re.Event, s))
	}
	return result, nil
}

func outputTraceText(cmd *cobra.Command, result TraceResult) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Session: %s (%s)\n", result.SessionID, result.Song)
	fmt.Fprintf(w, "Events: %d", result.Stats.TotalEvents)
	for _, k := range []ir.EventKind{ir.KindTick, ir.KindSpawn, ir.KindKey, ir.KindEnd} {
		fmt.Fprintf(w, ", %s %d", k, result.Stats.ByKind[k])
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	if len(result.lines) == 0 {
		fmt.Fprintln(w, "(no events)")
	}
	for _, line := range result.lines {
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	status := "in progress"
	switch {
	case result.Stats.Drained:
		status = "drained"
	case result.Stats.Finished:
		status = "finished early"
	}
	fmt.Fprintf(w, "Final: %s, fingerprint %s\n", status, shortHash(result.Fingerprint))
}

func validKind(k ir.EventKind) bool {
	switch k {
	case ir.KindTick, ir.KindSpawn, ir.KindKey, ir.KindEnd:
		return true
	}
	return false
}
