package cli

import (
	"context"
	"fmt"
	"slices"
)

const (
	defaultTheme    = "system"
	defaultLanguage = "en"
)

var (
	allowedThemes    = []string{"light", "dark", "system"}
	allowedLanguages = []string{"en", "ru"}
)

// runSettings показывает или изменяет настройки приложения.
// Без аргументов выводит текущие значения, с парой аргументов
// устанавливает: settings theme dark, settings language ru.
func (c *Cli) runSettings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.showSettings(ctx)
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: authkeeper settings [theme|language] <value>")
	}

	key, value := args[0], args[1]
	switch key {
	case "theme":
		if !slices.Contains(allowedThemes, value) {
			return fmt.Errorf("unknown theme %q (allowed: light, dark, system)", value)
		}
		if err := c.prefs.SetTheme(ctx, value); err != nil {
			return fmt.Errorf("failed to save theme: %w", err)
		}
	case "language":
		if !slices.Contains(allowedLanguages, value) {
			return fmt.Errorf("unknown language %q (allowed: en, ru)", value)
		}
		if err := c.prefs.SetLanguage(ctx, value); err != nil {
			return fmt.Errorf("failed to save language: %w", err)
		}
	default:
		return fmt.Errorf("unknown setting %q (allowed: theme, language)", key)
	}

	c.io.Printf("✓ %s set to %s\n", key, value)
	return nil
}

func (c *Cli) showSettings(ctx context.Context) error {
	theme, err := c.prefs.Theme(ctx, defaultTheme)
	if err != nil {
		return fmt.Errorf("failed to load theme: %w", err)
	}
	lang, err := c.prefs.Language(ctx, defaultLanguage)
	if err != nil {
		return fmt.Errorf("failed to load language: %w", err)
	}

	c.io.Println("=== Settings ===")
	c.io.Printf("Theme:    %s\n", theme)
	c.io.Printf("Language: %s\n", lang)
	return nil
}
