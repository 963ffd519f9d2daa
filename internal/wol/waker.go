package wol

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Config holds the wake-on-LAN server settings.
type Config struct {
	ListenAddr string
	Broadcast  string
	MAC        string
	Port       int
}

// LoadConfigFromEnv reads the server settings from the environment.
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		ListenAddr: ":8090",
		Broadcast:  "192.168.178.255",
		MAC:        "33:aa:2b:1a:db:dd",
		Port:       1234,
	}

	if value := strings.TrimSpace(os.Getenv("WOL_LISTEN_ADDR")); value != "" {
		cfg.ListenAddr = value
	}
	if value := strings.TrimSpace(os.Getenv("WOL_BROADCAST_ADDR")); value != "" {
		cfg.Broadcast = value
	}
	if value := strings.TrimSpace(os.Getenv("WOL_MAC_ADDR")); value != "" {
		cfg.MAC = value
	}
	if value := strings.TrimSpace(os.Getenv("WOL_PORT")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 || parsed > 65535 {
			return Config{}, fmt.Errorf("invalid WOL_PORT: %s", value)
		}
		cfg.Port = parsed
	}

	return cfg, nil
}

// Waker sends wake-on-LAN magic packets through the wakeonlan binary.
type Waker struct {
	Broadcast string
	MAC       string
	Port      int
	Logger    *slog.Logger
}

func NewWaker(cfg Config, logger *slog.Logger) *Waker {
	return &Waker{
		Broadcast: cfg.Broadcast,
		MAC:       cfg.MAC,
		Port:      cfg.Port,
		Logger:    logger,
	}
}

func (w *Waker) args() []string {
	return []string{"-i", w.Broadcast, "-p", strconv.Itoa(w.Port), w.MAC}
}

// Wake shells out to wakeonlan once.
func (w *Waker) Wake(ctx context.Context) error {
	command := exec.CommandContext(ctx, "wakeonlan", w.args()...)
	output, err := command.CombinedOutput()
	if err != nil {
		w.Logger.Error("Failed to send magic packet", "mac", w.MAC, "output", truncateOutput(strings.TrimSpace(string(output))), "error", err)
		return fmt.Errorf("wakeonlan failed: %w", err)
	}
	w.Logger.Info("Magic packet sent", "mac", w.MAC, "broadcast", w.Broadcast, "port", w.Port)
	return nil
}

// Handler serves one wake request. The reply is always 200 with an empty
// body; wake failures are logged, never surfaced to the caller.
func (w *Waker) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		_ = w.Wake(r.Context())
		rw.WriteHeader(http.StatusOK)
	}
}

func truncateOutput(value string) string {
	const maxLen = 2000
	if len(value) <= maxLen {
		return value
	}
	return value[:maxLen] + "...(truncated)"
}
