package cli

import (
	"fmt"
	"strings"

	"review-crawler-go/pkg/config"

	"github.com/pelletier/go-toml/v2"
)

// ShowConfig displays the current configuration
func (a *App) ShowConfig() {
	data, err := toml.Marshal(a.cfg)
	if err != nil {
		fmt.Fprintf(a.out, "Error marshaling config: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, string(data))
}

// SetConfig sets a configuration value
// Format: section.key=value (e.g., "crawler.base_url=http://localhost:8000")
func (a *App) SetConfig(setStr string) error {
	parts := strings.SplitN(setStr, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid format: expected 'section.key=value'")
	}

	key := strings.TrimSpace(parts[0])
	if len(strings.Split(key, ".")) != 2 {
		return fmt.Errorf("invalid key format: expected 'section.key'")
	}

	if err := a.cfg.Set(key, parts[1]); err != nil {
		return err
	}

	// Rebuild the client on next use
	a.client = nil

	return config.Save(a.cfg)
}
