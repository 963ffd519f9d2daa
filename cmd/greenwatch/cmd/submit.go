package cmd

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/greenwatch/greenwatch/internal/gmt"
)

var (
	submitName         string
	submitRepoURL      string
	submitMachineID    string
	submitBranch       string
	submitFilename     string
	submitEmail        string
	submitScheduleMode string
	submitVariables    []string
	submitSkipPrompts  bool
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a measurement job to the Green Metrics Tool",
	Long: `Submit one repo for measurement.

Examples:
  # Using flags (non-interactive)
  greenwatch submit --name "My project" --repo-url "https://github.com/user/repo" --machine-id 7 --yes

  # Interactive mode (prompts for missing required fields)
  greenwatch submit

  # With usage scenario variables
  greenwatch submit --name "My project" --repo-url "https://github.com/user/repo" --machine-id 7 \
    --variables "GMT_VARS_MODE=full" --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if submitSkipPrompts {
			if submitName == "" || submitRepoURL == "" || submitMachineID == "" {
				return fmt.Errorf("name, repo-url and machine-id are required when using --yes")
			}
		} else {
			// Interactive mode for missing required fields

			// Name
			if submitName == "" {
				prompt := promptui.Prompt{
					Label: "Project Name",
					Validate: func(input string) error {
						if len(input) == 0 {
							return fmt.Errorf("project name is required")
						}
						return nil
					},
				}
				result, err := prompt.Run()
				if err != nil {
					return err
				}
				submitName = result
			}

			// Repo URL
			if submitRepoURL == "" {
				prompt := promptui.Prompt{
					Label: "Git Repository URL",
					Validate: func(input string) error {
						if len(input) == 0 {
							return fmt.Errorf("repo url is required")
						}
						return nil
					},
				}
				result, err := prompt.Run()
				if err != nil {
					return err
				}
				submitRepoURL = result
			}

			// Machine ID
			if submitMachineID == "" {
				prompt := promptui.Prompt{
					Label: "Machine ID (see: greenwatch machines)",
					Validate: func(input string) error {
						if len(input) == 0 {
							return fmt.Errorf("machine id is required")
						}
						return nil
					},
				}
				result, err := prompt.Run()
				if err != nil {
					return err
				}
				submitMachineID = result
			}
		}

		if !gmt.ValidScheduleMode(submitScheduleMode) {
			return fmt.Errorf("invalid schedule mode %q, valid modes: %s", submitScheduleMode, strings.Join(gmt.ScheduleModes(), ", "))
		}

		variables, err := parseVariables(submitVariables)
		if err != nil {
			return err
		}

		software := gmt.Software{
			Name:         submitName,
			RepoURL:      submitRepoURL,
			MachineID:    submitMachineID,
			Branch:       submitBranch,
			Filename:     submitFilename,
			ScheduleMode: submitScheduleMode,
			Email:        submitEmail,
			Variables:    variables,
		}

		client := NewClient()
		res, err := client.SubmitSoftware(cmd.Context(), software)
		if err != nil {
			return fmt.Errorf("error submitting software: %v", err)
		}
		return printSubmitResult(res)
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitName, "name", "", "Project name")
	submitCmd.Flags().StringVar(&submitRepoURL, "repo-url", "", "Git repository URL to measure")
	submitCmd.Flags().StringVar(&submitMachineID, "machine-id", "", "Measurement machine ID")
	submitCmd.Flags().StringVar(&submitBranch, "branch", "", "Git branch (default: repository default branch)")
	submitCmd.Flags().StringVar(&submitFilename, "filename", "", "Usage scenario file (default: usage_scenario.yml)")
	submitCmd.Flags().StringVar(&submitEmail, "email", "", "Notification email")
	submitCmd.Flags().StringVar(&submitScheduleMode, "schedule-mode", gmt.ScheduleModeOneOff, "Schedule mode")
	submitCmd.Flags().StringArrayVar(&submitVariables, "variables", nil, "Usage scenario variable as KEY=VALUE (repeatable)")
	submitCmd.Flags().BoolVarP(&submitSkipPrompts, "yes", "y", false, "Skip interactive prompts")

	rootCmd.AddCommand(submitCmd)
}

// parseVariables turns repeated KEY=VALUE flags into a variables map. Keys
// and values are trimmed, the split happens on the first "=".
func parseVariables(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	variables := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid variable %q, expected KEY=VALUE", pair)
		}
		variables[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return variables, nil
}

func printSubmitResult(res gmt.Result) error {
	switch res.Kind {
	case gmt.Accepted:
		if viper.GetBool("json") {
			PrintJSON(map[string]any{"status": "accepted"})
			return nil
		}
		fmt.Println("Accepted (202). Your submission was queued.")
		return nil
	case gmt.EmptyNoContent:
		fmt.Println(res.Message)
		return nil
	case gmt.Success:
		if viper.GetBool("json") {
			PrintJSON(res.Body)
			return nil
		}
		if _, ok := res.Body.(map[string]any); ok {
			fmt.Println("Success. Save successful. Check your mail in ~10-15 minutes (if email provided).")
		} else {
			fmt.Println("Response received:")
			PrintJSON(res.Body)
		}
		return nil
	default:
		return fmt.Errorf("API error: %s", res.Message)
	}
}
