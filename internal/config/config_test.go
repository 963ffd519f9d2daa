package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
		"api": {"api_url": "https://gmt.example.com/ ", "token": "secret", "timeout": 10},
		"repos": [
			{
				"repo_to_watch": "https://github.com/green-coding/example",
				"runs": [
					{"repo_to_run": "https://github.com/green-coding/example", "machine_id": 7}
				]
			}
		]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://gmt.example.com/", cfg.API.BaseURL())
	assert.Equal(t, "secret", cfg.API.AuthToken())
	assert.Equal(t, 10*time.Second, cfg.API.RequestTimeout())
	require.Len(t, cfg.Repos, 1)
	require.Len(t, cfg.Repos[0].Runs, 1)
	assert.Equal(t, json.Number("7"), cfg.Repos[0].Runs[0].MachineID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeConfig(t, "{not json")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEmptyRepos(t *testing.T) {
	path := writeConfig(t, `{"api": {}, "repos": []}`)
	_, err := Load(path)
	require.ErrorIs(t, err, ErrNoRepos)
}

func TestAPIConfigDefaults(t *testing.T) {
	api := APIConfig{}
	assert.Equal(t, DefaultAPIURL, api.BaseURL())
	assert.Equal(t, DefaultToken, api.AuthToken())
	assert.Equal(t, 30*time.Second, api.RequestTimeout())
}

func TestAuthTokenExplicitlyEmpty(t *testing.T) {
	empty := ""
	api := APIConfig{Token: &empty}
	assert.Equal(t, "", api.AuthToken())
}

func TestWatchBranch(t *testing.T) {
	assert.Equal(t, "main", RepoConfig{}.WatchBranch())

	dev := "dev"
	assert.Equal(t, "dev", RepoConfig{BranchToWatch: &dev}.WatchBranch())

	unset := ""
	assert.Equal(t, "", RepoConfig{BranchToWatch: &unset}.WatchBranch())
}

func TestDisplayName(t *testing.T) {
	repo := RepoConfig{RepoToWatch: "https://github.com/a/b"}
	assert.Equal(t, "https://github.com/a/b", repo.DisplayName())

	repo.Name = "Example"
	assert.Equal(t, "Example", repo.DisplayName())
}

func TestRunDefaults(t *testing.T) {
	run := RunConfig{}
	assert.Equal(t, "main", run.RunBranch())
	assert.Equal(t, "usage_scenario.yml", run.RunFilename())
	assert.Equal(t, "fallback", run.RunName("fallback"))

	run = RunConfig{Name: "custom", BranchToRun: "dev", Filename: "alt.yml"}
	assert.Equal(t, "dev", run.RunBranch())
	assert.Equal(t, "alt.yml", run.RunFilename())
	assert.Equal(t, "custom", run.RunName("fallback"))
}

func TestMissingFields(t *testing.T) {
	assert.Equal(t, []string{"repo_to_run", "machine_id"}, RunConfig{}.MissingFields())

	run := RunConfig{RepoToRun: "https://github.com/a/b"}
	assert.Equal(t, []string{"machine_id"}, run.MissingFields())

	run.MachineID = json.Number("1")
	assert.Empty(t, run.MissingFields())
}

func TestLoadBranchToWatchForms(t *testing.T) {
	path := writeConfig(t, `{
		"repos": [
			{"repo_to_watch": "https://github.com/a/one"},
			{"repo_to_watch": "https://github.com/a/two", "branch_to_watch": ""},
			{"repo_to_watch": "https://github.com/a/three", "branch_to_watch": "release"}
		]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Repos, 3)
	assert.Equal(t, "main", cfg.Repos[0].WatchBranch())
	assert.Equal(t, "", cfg.Repos[1].WatchBranch())
	assert.Equal(t, "release", cfg.Repos[2].WatchBranch())
}

func TestLoadStringMachineID(t *testing.T) {
	path := writeConfig(t, `{
		"repos": [
			{"repo_to_watch": "r", "runs": [{"repo_to_run": "r", "machine_id": "vm-large"}]}
		]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "vm-large", cfg.Repos[0].Runs[0].MachineID)
}
