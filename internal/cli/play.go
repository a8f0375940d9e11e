package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/audio"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/chart"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/config"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/engine"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/input"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/render"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/store"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	ConfigPath string
	Database   string
	Mute       bool
	LogFile    string

	// NewScreen allows substituting the terminal (for testing).
	// If nil, defaults to tcell.NewScreen.
	NewScreen func() (tcell.Screen, error)

	// IDGenerator allows overriding session ids (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// PlayResult summarises a finished game.
type PlayResult struct {
	Song        string `json:"song"`
	Score       int64  `json:"score"`
	Combo       int    `json:"combo"`
	Misses      int    `json:"misses"`
	Steps       int64  `json:"steps"`
	Completed   bool   `json:"completed"`
	SessionID   string `json:"session_id,omitempty"`
	Fingerprint string `json:"fingerprint"`
}

func (r PlayResult) String() string {
	s := fmt.Sprintf("%s: score %d, %d misses, %d steps", r.Song, r.Score, r.Misses, r.Steps)
	if !r.Completed {
		s += " (quit early)"
	}
	if r.SessionID != "" {
		s += "\nrecorded session " + r.SessionID
	}
	return s
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <chart.csv>",
		Short: "Play a chart in the terminal",
		Long: `Play a chart in the terminal.

Notes fall down four lanes; press the lane key as a note crosses the hit
line. Esc quits. With --db the session is recorded and can be verified
later with the replay command.

Examples:
  guitarhero play songs/demo.csv
  guitarhero play songs/demo.csv --config game.cue --db sessions.db
  guitarhero play songs/demo.csv --mute --log-file play.log`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to CUE config file (defaults built in)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the session to this SQLite database")
	cmd.Flags().BoolVar(&opts.Mute, "mute", false, "disable audio")
	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "write logs here while the screen is in use")

	return cmd
}

func runPlay(opts *PlayOptions, chartPath string, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	song, err := chart.Load(chartPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load chart", err)
	}

	// The screen owns the terminal; logs go to a file or nowhere.
	restoreLog, err := redirectLogs(opts.LogFile, opts.Verbose)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open log file", err)
	}
	defer restoreLog()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var sinks []engine.Sink

	var recorder *store.Recorder
	var sessionID string
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		sess, err := newRecordedSession(ctx, st, opts.IDGenerator, cfg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create session", err)
		}
		sessionID = sess.ID
		recorder = store.NewRecorder(st, sess.ID)
		sinks = append(sinks, recorder)
	}

	player := openPlayer(cfg.Audio, opts.Mute)
	defer player.Close()

	newScreen := opts.NewScreen
	if newScreen == nil {
		newScreen = tcell.NewScreen
	}
	screen, err := newScreen()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open terminal", err)
	}
	if err := screen.Init(); err != nil {
		return WrapExitError(ExitCommandError, "failed to initialise terminal", err)
	}
	var finiOnce sync.Once
	fini := func() { finiOnce.Do(screen.Fini) }
	defer fini()

	term := render.NewTerminal(screen, cfg)
	term.Draw(ir.InitialState())
	sinks = append(sinks, term, player)

	runner := engine.NewRunner(engine.NewRules(cfg),
		engine.WithSinks(sinks...),
		engine.WithStopWhenDrained(true),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		input.Pump(ctx, screen, input.NewMapper(cfg.Keys), runner, cancel)
	}()

	if err := waitStart(ctx, cfg.Timing.StartDelay()); err == nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = engine.TickSource{Period: cfg.Timing.TickPeriod()}.Run(ctx, runner)
		}()
		go func() {
			defer wg.Done()
			_ = engine.ScheduleSource{Notes: song.Notes}.Run(ctx, runner)
		}()
	}

	runErr := runner.Run(ctx)
	cancel()
	fini()
	wg.Wait()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return WrapExitError(ExitFailure, "game loop error", runErr)
	}

	final := runner.State()
	if recorder != nil {
		if err := recorder.Finish(context.Background()); err != nil {
			return WrapExitError(ExitFailure, "failed to finish session", err)
		}
	}

	restoreLog()
	return newFormatter(opts.RootOptions, cmd).Success(PlayResult{
		Song:        cfg.Song.Name,
		Score:       final.Score,
		Combo:       final.Combo,
		Misses:      final.MissCount,
		Steps:       runner.Steps(),
		Completed:   final.Drained(),
		SessionID:   sessionID,
		Fingerprint: ir.StateFingerprint(final),
	})
}

// newRecordedSession stores a session row tagged with the config.
func newRecordedSession(ctx context.Context, st *store.Store, gen store.IDGenerator, cfg config.Config) (store.Session, error) {
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return store.Session{}, fmt.Errorf("encode config: %w", err)
	}
	sess := store.NewSession(gen, cfg.Song.Name, cfgJSON, cfg.Hash())
	if err := st.CreateSession(ctx, sess); err != nil {
		return store.Session{}, err
	}
	slog.Info("recording session", "session", sess.ID, "song", sess.Song)
	return sess, nil
}

// openPlayer falls back to silence when the audio device is unavailable.
func openPlayer(cfg config.AudioConfig, mute bool) audio.Player {
	if mute {
		return &audio.Silent{}
	}
	p, err := audio.New(cfg)
	if err != nil {
		slog.Warn("audio unavailable, playing silently", "error", err)
		return &audio.Silent{}
	}
	return p
}

func waitStart(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// redirectLogs points the default logger at path, or discards logs when
// path is empty. The returned func restores the previous logger and is
// safe to call more than once.
func redirectLogs(path string, verbose bool) (func(), error) {
	prev := slog.Default()

	var w io.Writer = io.Discard
	var f *os.File
	if path != "" {
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		w = f
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))

	var once sync.Once
	return func() {
		once.Do(func() {
			slog.SetDefault(prev)
			if f != nil {
				_ = f.Close()
			}
		})
	}, nil
}
