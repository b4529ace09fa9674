package preflight

import (
	"context"
	"path/filepath"

	"vyshim/internal/config"
	"vyshim/internal/deps"
	"vyshim/internal/session"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable check for cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckSocket("Daemon socket", cfg.SocketPath()))
	results = append(results, CheckDaemon(ctx, cfg.Daemon.Endpoint, cfg.DialTimeout()))
	results = append(results, CheckDirectoryAccess("Marker directory", filepath.Dir(cfg.Session.CommitMarker)))
	results = append(results, CheckMarker(session.MarkerFromConfig(cfg, nil)))
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, FromDependency(status))
	}
	results = append(results, CheckJournal(ctx, cfg))
	return results
}

// CheckSystemDeps evaluates the binaries the snapshot commands need.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "Shell",
			Command:     cfg.Snapshot.Shell,
			Description: "Runs the configuration dump commands",
		},
	}
	active := deps.CommandBinary(cfg.Snapshot.ActiveCommand)
	working := deps.CommandBinary(cfg.Snapshot.WorkingCommand)
	requirements = append(requirements, deps.Requirement{
		Name:        "Active config dump",
		Command:     active,
		Description: "Required for the init handshake",
	})
	if working != active {
		requirements = append(requirements, deps.Requirement{
			Name:        "Working config dump",
			Command:     working,
			Description: "Required for the init handshake",
		})
	}
	return deps.CheckBinaries(requirements)
}

// FromDependency converts a dependency status into a Result.
func FromDependency(status deps.Status) Result {
	if status.Available {
		return Result{Name: status.Name, Passed: true, Detail: status.Path}
	}
	return Result{Name: status.Name, Detail: status.Detail}
}
