package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/greenwatch/greenwatch/internal/config"
	"github.com/greenwatch/greenwatch/internal/githost"
	"github.com/greenwatch/greenwatch/internal/gmt"
	"github.com/greenwatch/greenwatch/internal/store"
)

// GitHashSentinel marks a usage scenario variable whose value is replaced
// with the commit hash that triggered the submission.
const GitHashSentinel = "__GIT_HASH__"

// CommitResolver resolves the newest commit on a hosted repo branch.
type CommitResolver interface {
	LatestCommit(ctx context.Context, repoURL, branch string) (string, error)
}

// Submitter submits measurement jobs to the Green Metrics Tool API.
type Submitter interface {
	SubmitSoftware(ctx context.Context, software gmt.Software) (gmt.Result, error)
}

// Monitor polls watched repos for new commits and submits their runs.
type Monitor struct {
	Resolver CommitResolver
	Client   Submitter
	Store    store.Store
	Logger   *slog.Logger
}

func New(resolver CommitResolver, client Submitter, st store.Store, logger *slog.Logger) *Monitor {
	return &Monitor{
		Resolver: resolver,
		Client:   client,
		Store:    st,
		Logger:   logger,
	}
}

// Run executes one poll cycle over every configured repo. State is loaded
// once at the start and saved once at the end, even when individual repos
// fail along the way.
func (m *Monitor) Run(ctx context.Context, cfg *config.Config) error {
	logger := m.Logger.With("cycle_id", uuid.NewString())

	state, err := m.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	logger.Info("Starting poll cycle", "repo_count", len(cfg.Repos))
	for _, repo := range cfg.Repos {
		m.processRepo(ctx, logger, repo, state)
	}

	if err := m.Store.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	logger.Info("Poll cycle complete")
	return nil
}

func (m *Monitor) processRepo(ctx context.Context, logger *slog.Logger, repo config.RepoConfig, state map[string]store.RepoState) {
	branch := repo.WatchBranch()
	log := logger.With("repo", repo.DisplayName(), "url", repo.RepoToWatch)

	log.Info("Checking repo", "branch", branch)

	latest, err := m.Resolver.LatestCommit(ctx, repo.RepoToWatch, branch)
	if err != nil {
		if errors.Is(err, githost.ErrNoCommits) {
			log.Info("No commits found on remote, skipping")
			return
		}
		log.Error("Failed to resolve latest commit", "error", err)
		return
	}

	key := store.Key(repo.RepoToWatch, branch)
	entry, tracked := state[key]
	log.Info("Resolved latest commit", "commit", latest, "last_seen", entry.LastCommit)

	if tracked && entry.LastCommit == latest {
		log.Info("No new commits")
		return
	}

	if len(repo.Runs) == 0 {
		log.Info("No runs configured, skipping submission")
		return
	}

	log.Info("New commit detected", "commit", latest, "runs", len(repo.Runs))

	attempted := false
	for _, run := range repo.Runs {
		if missing := run.MissingFields(); len(missing) > 0 {
			log.Warn("Run is missing required fields, skipping", "missing", missing)
			continue
		}
		attempted = true

		software := buildSoftware(repo, run, latest)
		log.Info("Submitting run", "name", software.Name, "repo_url", software.RepoURL, "branch", software.Branch, "filename", software.Filename)

		res, err := m.Client.SubmitSoftware(ctx, software)
		if err != nil {
			log.Error("Submission failed", "name", software.Name, "error", err)
			continue
		}
		switch res.Kind {
		case gmt.Accepted:
			log.Info("Run accepted, queued for measurement", "name", software.Name)
		case gmt.EmptyNoContent:
			log.Info("API returned no content", "name", software.Name)
		case gmt.Failure:
			log.Error("Submission rejected", "name", software.Name, "message", res.Message)
		case gmt.ProtocolError:
			log.Error("Unexpected API reply", "name", software.Name, "message", res.Message)
		default:
			log.Info("Submission succeeded", "name", software.Name, "status", res.StatusCode)
		}
	}

	// A cycle where every run was skipped keeps the old state so the
	// commit is retried next time.
	if !attempted {
		log.Info("No valid runs to submit, state not updated")
		return
	}

	state[key] = store.RepoState{LastCommit: latest}
	log.Info("Updated state", "key", key, "commit", latest)
}

func buildSoftware(repo config.RepoConfig, run config.RunConfig, commit string) gmt.Software {
	software := gmt.Software{
		Name:         run.RunName(repo.DisplayName()),
		RepoURL:      run.RepoToRun,
		MachineID:    run.MachineID,
		Branch:       run.RunBranch(),
		Filename:     run.RunFilename(),
		ScheduleMode: gmt.ScheduleModeOneOff,
		Email:        run.Email,
	}
	if len(run.Variables) > 0 {
		vars := make(map[string]any, len(run.Variables))
		for key, value := range run.Variables {
			if value == GitHashSentinel {
				vars[key] = commit
			} else {
				vars[key] = value
			}
		}
		software.Variables = vars
	}
	return software
}
