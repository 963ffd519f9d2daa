package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultAPIURL         = "https://api.green-coding.io/"
	DefaultToken          = "DEFAULT"
	DefaultTimeoutSeconds = 30
	DefaultBranch         = "main"
	DefaultFilename       = "usage_scenario.yml"
)

var ErrNoRepos = errors.New("no repos configured")

// Config is the monitor's input file, reloaded once per poll cycle.
type Config struct {
	API   APIConfig    `json:"api"`
	Repos []RepoConfig `json:"repos"`
}

// APIConfig carries the submission API settings.
type APIConfig struct {
	URL     string  `json:"api_url"`
	Token   *string `json:"token"`
	Timeout int     `json:"timeout"`
}

// BaseURL returns the API base URL, falling back to the public instance.
func (a APIConfig) BaseURL() string {
	if url := strings.TrimSpace(a.URL); url != "" {
		return url
	}
	return DefaultAPIURL
}

// AuthToken returns the X-Authentication token. A config without a token
// field uses the API's shared "DEFAULT" token; an explicitly empty token
// disables the header.
func (a APIConfig) AuthToken() string {
	if a.Token == nil {
		return DefaultToken
	}
	return strings.TrimSpace(*a.Token)
}

// RequestTimeout returns the timeout applied to every outbound HTTP call.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.Timeout > 0 {
		return time.Duration(a.Timeout) * time.Second
	}
	return DefaultTimeoutSeconds * time.Second
}

// RepoConfig describes one watched repository and the runs submitted when
// its watch branch advances.
type RepoConfig struct {
	RepoToWatch   string      `json:"repo_to_watch"`
	Name          string      `json:"name"`
	BranchToWatch *string     `json:"branch_to_watch"`
	Runs          []RunConfig `json:"runs"`
}

// DisplayName returns the configured name, falling back to the watch URL.
func (r RepoConfig) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.RepoToWatch
}

// WatchBranch returns the branch whose head is monitored. A missing field
// means "main"; an explicitly empty field means the provider's default
// branch (and a bare state key).
func (r RepoConfig) WatchBranch() string {
	if r.BranchToWatch == nil {
		return DefaultBranch
	}
	return *r.BranchToWatch
}

// RunConfig is one measurement-job template.
type RunConfig struct {
	RepoToRun   string         `json:"repo_to_run"`
	MachineID   any            `json:"machine_id"`
	Name        string         `json:"name"`
	BranchToRun string         `json:"branch_to_run"`
	Filename    string         `json:"filename"`
	Email       string         `json:"email"`
	Variables   map[string]any `json:"variables"`
}

// RunName returns the job name, falling back to the owning repo's display name.
func (r RunConfig) RunName(defaultName string) string {
	if r.Name != "" {
		return r.Name
	}
	return defaultName
}

// RunBranch returns the branch submitted for this run.
func (r RunConfig) RunBranch() string {
	if r.BranchToRun != "" {
		return r.BranchToRun
	}
	return DefaultBranch
}

// RunFilename returns the usage scenario path submitted for this run.
func (r RunConfig) RunFilename() string {
	if r.Filename != "" {
		return r.Filename
	}
	return DefaultFilename
}

// MissingFields lists the required fields this run lacks. A run with
// missing fields is skipped and never counts as a submission attempt.
func (r RunConfig) MissingFields() []string {
	var missing []string
	if r.RepoToRun == "" {
		missing = append(missing, "repo_to_run")
	}
	if r.MachineID == nil {
		missing = append(missing, "machine_id")
	}
	return missing
}

// Load reads and validates the monitor config. Numbers are decoded as
// json.Number so machine IDs survive byte-for-byte into payloads.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if len(cfg.Repos) == 0 {
		return nil, ErrNoRepos
	}
	return cfg, nil
}
