package cmd

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/quocvuong92/fastgpt-cli/internal/config"
	"github.com/quocvuong92/fastgpt-cli/internal/constants"
	"github.com/quocvuong92/fastgpt-cli/internal/display"
)

// handleKeyFlags runs the key management flags. It reports whether one of
// them was set, in which case the program ends after it.
func (app *App) handleKeyFlags(p *display.Printer) (bool, error) {
	switch {
	case app.resetAPIKey:
		return true, app.runResetAPIKey(p)
	case app.setAPIKey != "":
		return true, app.runSetAPIKey(p, app.setAPIKey)
	case app.showAPIKey:
		return true, app.runShowAPIKey(p)
	case app.setup:
		return true, app.runSetup(p)
	}
	return false, nil
}

func (app *App) runSetAPIKey(p *display.Printer, key string) error {
	if err := app.store.SetAPIKey(key); err != nil {
		return err
	}
	p.Success("API key has been saved successfully!")
	return nil
}

func (app *App) runResetAPIKey(p *display.Printer) error {
	fc, err := app.store.Load()
	if err != nil {
		return err
	}
	if fc.APIKey == "" {
		p.Info("No API key is currently set.")
		return nil
	}
	if err := app.store.Reset(); err != nil {
		return err
	}
	p.Success("API key has been reset.")
	return nil
}

func (app *App) runShowAPIKey(p *display.Printer) error {
	fc, err := app.store.Load()
	if err != nil {
		return err
	}
	if fc.APIKey == "" {
		p.Info("No API key is currently set.")
		return nil
	}
	p.Info("Current API key: %s", config.MaskAPIKey(fc.APIKey))
	return nil
}

// runSetup asks for the API key and default toggles, then writes the
// config file.
func (app *App) runSetup(p *display.Printer) error {
	fc, err := app.store.Load()
	if err != nil {
		return err
	}

	p.Info("%s setup", constants.AppTitle)
	p.Dim("Config file: %s", app.store.Path())

	var key string
	keyPrompt := &survey.Password{
		Message: "Kagi API key:",
		Help:    "Create one at https://kagi.com/settings?p=api",
	}
	if err := survey.AskOne(keyPrompt, &key, survey.WithValidator(survey.Required)); err != nil {
		return setupError(p, err)
	}

	cache := constants.DefaultCache
	if fc.Cache != nil {
		cache = *fc.Cache
	}
	if err := survey.AskOne(&survey.Confirm{Message: "Allow cached responses?", Default: cache}, &cache); err != nil {
		return setupError(p, err)
	}

	refs := constants.DefaultReferences
	if fc.References != nil {
		refs = *fc.References
	}
	if err := survey.AskOne(&survey.Confirm{Message: "Show references under answers?", Default: refs}, &refs); err != nil {
		return setupError(p, err)
	}

	fc.APIKey = key
	fc.Cache = config.BoolPtr(cache)
	fc.References = config.BoolPtr(refs)
	if err := app.store.Save(fc); err != nil {
		return err
	}

	p.Success("Configuration saved to %s", app.store.Path())
	return nil
}

func setupError(p *display.Printer, err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		p.Warning("Setup cancelled.")
		return nil
	}
	return fmt.Errorf("setup prompt: %w", err)
}
