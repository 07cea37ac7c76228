package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/edumetrics/internal/config"
	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

// setupValues holds the first-run form fields. Numeric fields are strings
// because huh inputs edit text; applySetup parses them.
type setupValues struct {
	days       int
	timezone   string
	theme      string
	budget     string
	inputShare string
}

func defaultSetupValues(cfg config.Config) setupValues {
	v := setupValues{
		days:       cfg.General.DefaultDays,
		timezone:   cfg.General.Timezone,
		theme:      cfg.Appearance.Theme,
		inputShare: strconv.FormatFloat(cfg.Cost.InputShare, 'f', -1, 64),
	}
	if cfg.Budget.MonthlyUSD != nil {
		v.budget = strconv.FormatFloat(*cfg.Budget.MonthlyUSD, 'f', 2, 64)
	}
	if v.theme == "" {
		v.theme = theme.FlexokiDark.Name
	}
	return v
}

func newSetupForm(v *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], len(theme.All))
	for i, th := range theme.All {
		themeOpts[i] = huh.NewOption(th.Name, th.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to edumetrics").
				Description("A few settings for cost estimates and the dashboard.\nRun `edumetrics setup` anytime to change them."),
			huh.NewSelect[int]().
				Title("Default time range").
				Options(
					huh.NewOption("7 days", 7),
					huh.NewOption("30 days", 30),
					huh.NewOption("90 days", 90),
				).
				Value(&v.days),
			huh.NewInput().
				Title("Timezone").
				Description("IANA name used for calendar days, e.g. America/Bogota").
				Value(&v.timezone).
				Validate(validateTimezone),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.theme),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Monthly budget (USD)").
				Description("Leave blank to disable budget tracking").
				Value(&v.budget).
				Validate(validateBudget),
			huh.NewInput().
				Title("Input token share").
				Description("Fraction of each message's tokens billed at the input rate (0-1)").
				Value(&v.inputShare).
				Validate(validateInputShare),
		),
	).WithTheme(huh.ThemeCharm())
}

// applySetup validates v and copies it into cfg.
func applySetup(cfg *config.Config, v setupValues) error {
	if err := validateTimezone(v.timezone); err != nil {
		return err
	}
	if err := validateBudget(v.budget); err != nil {
		return err
	}
	if err := validateInputShare(v.inputShare); err != nil {
		return err
	}

	if v.days > 0 {
		cfg.General.DefaultDays = v.days
	}
	cfg.General.Timezone = strings.TrimSpace(v.timezone)
	if cfg.General.Timezone == "" {
		cfg.General.Timezone = "Local"
	}
	cfg.Appearance.Theme = theme.ByName(v.theme).Name

	cfg.Budget.MonthlyUSD = nil
	if b := strings.TrimSpace(v.budget); b != "" {
		amount, _ := strconv.ParseFloat(b, 64)
		cfg.Budget.MonthlyUSD = &amount
	}
	if s := strings.TrimSpace(v.inputShare); s != "" {
		cfg.Cost.InputShare, _ = strconv.ParseFloat(s, 64)
	}
	return nil
}

func validateTimezone(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || s == "Local" {
		return nil
	}
	if _, err := time.LoadLocation(s); err != nil {
		return fmt.Errorf("unknown timezone %q", s)
	}
	return nil
}

func validateBudget(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return errors.New("budget must be a positive number")
	}
	return nil
}

func validateInputShare(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 1 {
		return errors.New("input share must be between 0 and 1")
	}
	return nil
}

// RunSetup runs the setup form in the terminal and saves the result.
// It returns the path the config was written to.
func RunSetup() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	v := defaultSetupValues(cfg)
	if err := newSetupForm(&v).Run(); err != nil {
		return "", err
	}
	if err := applySetup(&cfg, v); err != nil {
		return "", err
	}
	if err := config.Save(cfg); err != nil {
		return "", fmt.Errorf("saving config: %w", err)
	}
	return config.Path(), nil
}
