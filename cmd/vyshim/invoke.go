package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vyshim/internal/config"
	"vyshim/internal/ipc"
	"vyshim/internal/journal"
	"vyshim/internal/logging"
	"vyshim/internal/passthrough"
	"vyshim/internal/protocol"
	"vyshim/internal/session"
	"vyshim/internal/snapshot"
)

func invoke(ctx context.Context, env environment, args []string) error {
	started := env.now()

	cfg, _, _, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	baseLogger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	invocationID := env.newID()
	ctx = logging.WithInvocationID(ctx, invocationID)
	logger := logging.NewComponentLogger(logging.WithContext(ctx, baseLogger), "vyshim")

	rec := newRecorder(cfg, logger, invocationID, started, env.now)
	defer rec.close()

	executor := passthrough.New(logger, env.execOptions...)

	logger.Debug("connecting to vyos-configd", logging.String("endpoint", cfg.Daemon.Endpoint))
	ch, err := env.dial(ctx, cfg.Daemon.Endpoint, ipc.Options{
		DialTimeout:    cfg.DialTimeout(),
		ReceiveTimeout: cfg.ReceiveTimeout(),
		Logger:         baseLogger,
	})
	if err != nil {
		perr := protocol.NewError(protocol.KindChannel, "connect", err)
		logging.ErrorWithContext(logger, "cannot reach vyos-configd", "daemon_connect_failed",
			logging.String("endpoint", cfg.Daemon.Endpoint),
			logging.Error(perr),
			logging.String(logging.FieldErrorHint, "check that vyos-configd is running"),
		)
		rec.record(protocol.Outcome{Kind: protocol.OutcomeExit, Code: perr.ExitCode()}, perr.ExitCode(), perr)
		return perr
	}

	client := protocol.NewClient(ch,
		session.MarkerFromConfig(cfg, logger),
		snapshot.FromConfig(cfg, executor, logger),
		logger,
	)
	out, runErr := client.Run(ctx, args)
	if err := ch.Close(); err != nil {
		logger.Debug("close daemon channel", logging.Error(err))
	}
	if runErr != nil {
		logging.ErrorWithContext(logger, "node update failed", "node_update_failed",
			logging.String("node", out.Descriptor),
			logging.Error(runErr),
		)
		rec.record(out, out.Code, runErr)
		return runErr
	}

	logger.Info("node processed",
		logging.String("node", out.Descriptor),
		logging.String("status", out.Status.String()),
		logging.String("outcome", out.Label()),
		logging.Bool("initialized", out.Initialized),
	)

	if out.Kind == protocol.OutcomeReplace {
		return handOff(ctx, cfg, logger, executor, rec, out)
	}

	if rejected := out.Err(); rejected != nil {
		logging.WarnWithContext(logger, "vyos-configd rejected node", "node_rejected",
			logging.String("node", out.Descriptor),
			logging.String("status", out.Status.String()),
			logging.String(logging.FieldImpact, "commit stops at this node"),
		)
		rec.record(out, out.Code, rejected)
		return rejected
	}
	rec.record(out, out.Code, nil)
	return nil
}

// handOff runs the node script the daemon passed back.
func handOff(ctx context.Context, cfg *config.Config, logger *slog.Logger, executor *passthrough.Executor, rec *recorder, out protocol.Outcome) error {
	if cfg.PassThrough.Mode == config.PassThroughSpawn {
		code, err := executor.Spawn(ctx, out.Env, out.Path)
		rec.record(out, code, err)
		if err != nil {
			logging.ErrorWithContext(logger, "node script failed to run", "passthrough_spawn_failed",
				logging.String("path", out.Path),
				logging.Error(err),
			)
			return err
		}
		if code != protocol.ExitSuccess {
			return &exitStatus{code: code}
		}
		return nil
	}

	rec.record(out, protocol.ExitSuccess, nil)
	rec.close()
	err := executor.Replace(out.Env, out.Path)
	logging.ErrorWithContext(logger, "node script could not replace vyshim", "passthrough_exec_failed",
		logging.String("path", out.Path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check that the script exists and is executable"),
	)
	return err
}

// recorder writes the journal entry for one invocation. A journal that cannot
// be opened or written only costs a warning.
type recorder struct {
	store    *journal.Store
	keep     int
	logger   *slog.Logger
	id       string
	started  time.Time
	now      func() time.Time
	recorded bool
}

func newRecorder(cfg *config.Config, logger *slog.Logger, id string, started time.Time, now func() time.Time) *recorder {
	rec := &recorder{keep: cfg.Journal.MaxEntries, logger: logger, id: id, started: started, now: now}
	if !cfg.Journal.Enabled {
		return rec
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		logging.WarnWithContext(logger, "invocation journal unavailable", "journal_open_failed",
			logging.String("path", cfg.Journal.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "invocation not recorded"),
		)
		return rec
	}
	rec.store = store
	return rec
}

func (r *recorder) record(out protocol.Outcome, code int, err error) {
	if r.store == nil || r.recorded {
		return
	}
	r.recorded = true

	entry := journal.Entry{
		InvocationID: r.id,
		StartedAt:    r.started,
		Duration:     r.now().Sub(r.started),
		Descriptor:   out.Descriptor,
		Initialized:  out.Initialized,
		Status:       uint8(out.Status),
		Outcome:      out.Label(),
		ExitCode:     code,
	}
	if err != nil {
		entry.Error = err.Error()
		if out.Kind != protocol.OutcomeReplace {
			entry.Outcome = "failed"
			if protocol.KindOf(err) == protocol.KindRejected {
				entry.Outcome = "rejected"
			}
		}
	}

	ctx := context.Background()
	if err := r.store.Record(ctx, entry); err != nil {
		logging.WarnWithContext(r.logger, "invocation journal write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "invocation not recorded"),
		)
		return
	}
	if r.keep > 0 {
		if _, err := r.store.Prune(ctx, r.keep); err != nil {
			r.logger.Debug("journal prune failed", logging.Error(err))
		}
	}
}

func (r *recorder) close() {
	if r.store == nil {
		return
	}
	_ = r.store.Close()
	r.store = nil
}
