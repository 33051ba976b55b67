// Package main provides the CLI entrypoint for tarotquiz.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tarotquiz/internal/config"
	"github.com/verte-zerg/tarotquiz/internal/deck"
	"github.com/verte-zerg/tarotquiz/internal/generator"
	"github.com/verte-zerg/tarotquiz/internal/model"
	"github.com/verte-zerg/tarotquiz/internal/quiz"
	"github.com/verte-zerg/tarotquiz/internal/stats"
	"github.com/verte-zerg/tarotquiz/internal/store"
	"github.com/verte-zerg/tarotquiz/internal/tui"
)

const (
	defaultCount       = 15
	defaultReversed    = 0.5
	defaultCurveWindow = 5
	defaultTop         = 10
)

var (
	quizName     string
	quizEmail    string
	quizCount    int
	quizDeck     string
	quizReversed float64

	cardsDeck string
	showDeck  string

	statsEmail       string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsTop         int
	statsDeck        string
)

var (
	headingColor = color.New(color.FgYellow, color.Bold)
	labelColor   = color.New(color.FgCyan, color.Bold)
	mutedColor   = color.New(color.Faint)
	warnColor    = color.New(color.FgYellow)
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tarotquiz",
		Short:         "Tarot card meaning flashcards",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runQuizCmd,
	}

	rootCmd.Flags().StringVar(&quizName, "name", "", "prefill the name field")
	rootCmd.Flags().StringVar(&quizEmail, "email", "", "prefill the email field")
	rootCmd.Flags().IntVar(&quizCount, "count", defaultCount, "questions per session (15, 35 or 78)")
	rootCmd.Flags().StringVar(&quizDeck, "deck", "", "deck TOML file or name (default: bundled deck)")
	rootCmd.Flags().Float64Var(&quizReversed, "reversed", defaultReversed, "probability of asking for the reversed meaning (0-1)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCardsCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "name", &quizName, fileCfg.Quiz.Name)
	applyStringConfig(cmd, "email", &quizEmail, fileCfg.Quiz.Email)
	applyIntConfig(cmd, "count", &quizCount, fileCfg.Quiz.Count)
	applyStringConfig(cmd, "deck", &quizDeck, fileCfg.Quiz.Deck)
	applyFloatConfig(cmd, "reversed", &quizReversed, fileCfg.Quiz.ReversedPct)

	cfg := model.Config{
		Name:        quizName,
		Email:       quizEmail,
		Count:       quizCount,
		DeckPath:    quizDeck,
		ReversedPct: quizReversed,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	d, err := loadDeck(cfg.DeckPath)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	runner := quiz.NewRunner(d, st.Progress(d), generator.New(),
		quiz.WithHistory(st),
		quiz.WithReversedPct(cfg.ReversedPct),
	)
	profile := model.Profile{Name: cfg.Name, Email: cfg.Email, Count: cfg.Count}
	m := tui.NewModel(runner, d, st, profile)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadDeck returns the bundled deck for an empty path, otherwise the named
// deck file. Validation warnings are printed and do not stop the quiz.
func loadDeck(path string) (*deck.Deck, error) {
	if path == "" {
		d, err := deck.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load bundled deck: %w", err)
		}
		return d, nil
	}
	resolved := config.ResolveDeckPath(path)
	d, err := deck.LoadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to load deck: %w", err)
	}
	for _, w := range d.Validate().Warnings {
		logErrln(warnColor.Sprint("warning: " + w))
	}
	return d, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the config file unless it already exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func newCardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List the deck",
		Args:  cobra.NoArgs,
		RunE:  runCardsCmd,
	}
	cmd.Flags().StringVar(&cardsDeck, "deck", "", "deck TOML file or name (default: bundled deck)")
	return cmd
}

func runCardsCmd(cmd *cobra.Command, _ []string) error {
	d, err := loadDeck(cardsDeck)
	if err != nil {
		return err
	}
	return renderCards(cmd.OutOrStdout(), d)
}

func renderCards(w io.Writer, d *deck.Deck) error {
	title := d.Name
	if title == "" {
		title = "Deck"
	}
	if _, err := fmt.Fprintln(w, headingColor.Sprintf("%s (%d cards)", title, d.Len())); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	headers := []string{"ID", "Name", "Element", "Sign"}
	rows := make([][]string, 0, d.Len())
	for _, c := range d.Cards() {
		rows = append(rows, []string{strconv.Itoa(c.ID), c.Name, c.Element, c.Sign})
	}
	for _, line := range stats.FormatTable(headers, rows, map[int]bool{0: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show everything about a card",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runShowCmd,
	}
	cmd.Flags().StringVar(&showDeck, "deck", "", "deck TOML file or name (default: bundled deck)")
	return cmd
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	d, err := loadDeck(showDeck)
	if err != nil {
		return err
	}
	card, err := d.Find(strings.Join(args, " "))
	if err != nil {
		return err
	}
	return renderCard(cmd.OutOrStdout(), d, card)
}

func renderCard(w io.Writer, d *deck.Deck, c model.Card) error {
	lines := []string{headingColor.Sprintf("%s (#%d)", c.Name, c.ID)}
	for _, f := range d.Explain(c) {
		lines = append(lines, "", labelColor.Sprint(f.Label), f.Value)
		if f.Description != "" {
			lines = append(lines, mutedColor.Sprint(f.Description))
		}
	}
	if c.Image != "" {
		lines = append(lines, "", labelColor.Sprint("Image"), c.Image)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsEmail, "email", "", "limit to one user (also shows weakest cards)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsTop, "top", defaultTop, "number of weakest cards to list")
	cmd.Flags().StringVar(&statsDeck, "deck", "", "deck TOML file or name (default: bundled deck)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}
	if statsTop < 0 {
		return fmt.Errorf("--top must be >= 0")
	}

	cfg := model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Top:         statsTop,
	}
	if strings.TrimSpace(statsEmail) != "" {
		cfg.UserKey = store.UserKey(statsEmail)
	}

	d, err := loadDeck(statsDeck)
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, st.Progress(d), cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	return renderStats(cmd.OutOrStdout(), d, report, cfg, stats.TerminalWidth())
}

func renderStats(w io.Writer, d *deck.Deck, report stats.Report, cfg model.StatsConfig, width int) error {
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderTrend(w, report.Sessions, cfg.CurveWindow, width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if cfg.UserKey == "" {
		return nil
	}

	shown, total := stats.Coverage(report.Records)
	if _, err := fmt.Fprintf(w, "Cards seen: %d of %d\n\n", shown, total); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	name := func(id int) string {
		c, err := d.Card(id)
		if err != nil {
			return ""
		}
		return c.Name
	}
	if err := stats.RenderCardTable(w, report.Records, name, cfg.Top); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	practised := stats.TopCardsByExposure(report.Records, 3)
	if len(practised) == 0 {
		return nil
	}
	names := make([]string, len(practised))
	for i, id := range practised {
		names[i] = name(id)
	}
	_, err := fmt.Fprintf(w, "Most practised: %s\n", strings.Join(names, ", "))
	return err
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tarotquiz configuration
# Uncomment a value to enable it. CLI flags override config values.

[quiz]
# name = ""               # Prefill the name field
# email = ""              # Prefill the email field
# count = %d              # Questions per session (15, 35 or 78)
# deck = ""               # Deck TOML file or name (default: bundled deck)
# reversed = %.2f         # Probability of asking for the reversed meaning (0-1)
`,
		defaultCount,
		defaultReversed,
	)
}

func validateConfig(cfg model.Config) error {
	valid := false
	for _, n := range model.SessionLengths {
		if cfg.Count == n {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("--count must be one of 15, 35, 78")
	}
	if cfg.ReversedPct < 0 || cfg.ReversedPct > 1 {
		return fmt.Errorf("--reversed must be between 0 and 1")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
