package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/greenwatch/greenwatch/internal/config"
)

var (
	apiURL     string
	authToken  string
	timeout    int
	removeIdle bool
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "greenwatch",
	Short: "Command line interface for the Green Metrics Tool",
	Long:  `CLI for watching repos and submitting measurement jobs to the Green Metrics Tool.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", config.DefaultAPIURL, "Green Metrics Tool API URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "API authentication token")
	rootCmd.PersistentFlags().IntVar(&timeout, "timeout", config.DefaultTimeoutSeconds, "HTTP timeout in seconds")
	rootCmd.PersistentFlags().BoolVar(&removeIdle, "remove-idle", false, "Ask the API to strip idle phases from energy values")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print API responses as JSON")

	// Bind flags to viper
	viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("auth-token", rootCmd.PersistentFlags().Lookup("token"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("remove-idle", rootCmd.PersistentFlags().Lookup("remove-idle"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// initConfig reads in ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("GMT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
