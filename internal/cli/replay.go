package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/config"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/engine"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string
	SessionID string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	SessionID     string `json:"session_id"`
	Song          string `json:"song"`
	Events        int    `json:"events"`
	Score         int64  `json:"score"`
	Misses        int    `json:"misses"`
	Finished      bool   `json:"finished"`
	Fingerprint   string `json:"fingerprint"`
	Recorded      string `json:"recorded,omitempty"`
	Deterministic bool   `json:"deterministic"`
	Matches       bool   `json:"matches"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded sessions and verify determinism",
		Long: `Replay recorded sessions to verify determinism.

Each session's events are folded through the game rules it was recorded
under, twice, and the resulting state fingerprints are compared with each
other and with the fingerprint stored when the session finished.

Exit codes:
  0 - All sessions are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  guitarhero replay --db sessions.db
  guitarhero replay --db sessions.db --session 0190c4f2-...
  guitarhero replay --db sessions.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var sessions []store.Session
	if opts.SessionID != "" {
		sess, err := st.ReadSession(ctx, opts.SessionID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		sessions = []store.Session{sess}
	} else {
		sessions, err = st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}

	if len(sessions) == 0 {
		if formatter.JSON() {
			return formatter.Success(result)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in database.")
		return nil
	}

	for _, sess := range sessions {
		formatter.VerboseLog("Replaying session %s (%s)", sess.ID, sess.Song)

		rules, err := sessionRules(sess)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to decode config of session %s", sess.ID), err)
		}
		rr, err := store.Replay(ctx, st, sess.ID, rules)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", sess.ID), err)
		}

		result.Sessions = append(result.Sessions, ReplaySessionResult{
			SessionID:     sess.ID,
			Song:          sess.Song,
			Events:        rr.Events,
			Score:         rr.Final.Score,
			Misses:        rr.Final.MissCount,
			Finished:      sess.Finished,
			Fingerprint:   rr.Fingerprint,
			Recorded:      rr.Recorded,
			Deterministic: rr.Deterministic,
			Matches:       rr.Matches,
		})
		if !rr.OK() {
			result.AllDeterministic = false
		}
	}

	if formatter.JSON() {
		if !result.AllDeterministic {
			_ = formatter.Failure(CodeDeterminism, "determinism verification failed", result)
			return NewExitError(ExitFailure, "determinism verification failed")
		}
		return formatter.Success(result)
	}

	outputReplayText(cmd, result, opts.Verbose)
	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replaying %d session(s)...\n\n", result.TotalSessions)
	for _, s := range result.Sessions {
		mark := "✓"
		if !s.Deterministic || !s.Matches {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s  %s\n", mark, s.SessionID, s.Song)
		fmt.Fprintf(w, "    events: %d, score: %d, misses: %d\n", s.Events, s.Score, s.Misses)
		if !s.Finished {
			fmt.Fprintln(w, "    session was not finished; nothing recorded to compare")
		}
		if !s.Deterministic {
			fmt.Fprintln(w, "    two refolds produced different states")
		}
		if !s.Matches {
			fmt.Fprintf(w, "    fingerprint %s does not match recorded %s\n", shortHash(s.Fingerprint), shortHash(s.Recorded))
		} else if verbose {
			fmt.Fprintf(w, "    fingerprint %s\n", shortHash(s.Fingerprint))
		}
	}

	fmt.Fprintln(w)
	if result.AllDeterministic {
		fmt.Fprintln(w, "All sessions deterministic.")
	} else {
		fmt.Fprintln(w, "Determinism verification FAILED.")
	}
}

// openExistingStore opens path, refusing to create a new database.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// sessionRules rebuilds the rules a session was recorded under. Fields the
// stored config lacks keep their defaults.
func sessionRules(sess store.Session) (engine.Rules, error) {
	cfg := config.Default()
	if len(sess.Config) == 0 {
		return engine.NewRules(cfg), nil
	}
	if err := json.Unmarshal(sess.Config, &cfg); err != nil {
		return engine.Rules{}, err
	}
	if errs := cfg.Check(); len(errs) > 0 {
		return engine.Rules{}, errors.Join(errs...)
	}
	return engine.NewRules(cfg), nil
}
