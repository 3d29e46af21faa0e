package themes

import (
	"fmt"
	"strings"
)

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := strings.Clone(*value)
	return &cloned
}

func cloneThemeConfig(cfg ThemeConfig) ThemeConfig {
	return ThemeConfig{
		Assets:   cloneAssets(cfg.Assets),
		Tokens:   cloneTokens(cfg.Tokens),
		Metadata: deepCloneMap(cfg.Metadata),
	}
}

func cloneTokens(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func validateThemeConfig(cfg ThemeConfig) error {
	for key := range cfg.Tokens {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("themes: design token key required")
		}
	}
	return nil
}
