package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/greenwatch/greenwatch/internal/config"
	"github.com/greenwatch/greenwatch/internal/gmt"
)

// NewClient creates an API client from flags and environment.
func NewClient() *gmt.Client {
	timeoutSeconds := viper.GetInt("timeout")
	if timeoutSeconds <= 0 {
		timeoutSeconds = config.DefaultTimeoutSeconds
	}

	client := gmt.NewClient(viper.GetString("api-url"), loadToken(), time.Duration(timeoutSeconds)*time.Second)
	client.RemoveIdle = viper.GetBool("remove-idle")
	return client
}

// loadToken resolves the API token: the --token flag, then GMT_AUTH_TOKEN,
// then the token file under ~/.gmt/token.
func loadToken() string {
	if token := strings.TrimSpace(viper.GetString("auth-token")); token != "" {
		return token
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	raw, err := os.ReadFile(filepath.Join(home, ".gmt", "token"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// PrintJSON prints data as JSON
func PrintJSON(data any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Printf("Error encoding JSON: %v\n", err)
	}
}
