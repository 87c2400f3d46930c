package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/alexmorbo/bttn-relay/domain/token"
	"github.com/alexmorbo/bttn-relay/infrastructure/config"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#01cdfe"))
	tokenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff71ce"))
)

type options struct {
	settingsPath string
	buttonsDir   string
	key          string
	tokensPath   string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   "bttn-tokens",
		Short: "Print the signed token of every button",
		Long: `Print the signed token of every button found in the buttons directory,
together with the call, delete and initialise tokens and the index token.

The signing key comes from --key, then SIGNING_KEY, then server.key in the
settings file.

Example:
  bttn-tokens --config settings.yaml --buttons buttons`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.settingsPath, "config", envOr("CONFIG_PATH", "settings.yaml"), "settings file")
	cmd.Flags().StringVar(&opts.buttonsDir, "buttons", envOr("BUTTONS_DIR", "buttons"), "directory of per-button override files")
	cmd.Flags().StringVar(&opts.key, "key", os.Getenv("SIGNING_KEY"), "signing key")
	cmd.Flags().StringVar(&opts.tokensPath, "write", "", "also write the tokens to this YAML file")

	return cmd
}

func run(out io.Writer, opts options) error {
	settings, err := config.LoadSettings(opts.settingsPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	key := opts.key
	if key == "" {
		key = settings.Server.Key
	}
	if key == "" {
		_, _ = fmt.Fprintln(out, warnStyle.Render("Add a secret key to the settings if you want security"))
		_, _ = fmt.Fprintln(out, "No security token has been generated")
		return nil
	}

	loader := config.NewButtonLoader(settings, opts.buttonsDir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	names, err := loader.ListButtons()
	if err != nil {
		return fmt.Errorf("list buttons: %w", err)
	}

	tokens := token.NewCodec(key).Tokens(names)

	labels := make([]string, 0, len(tokens))
	for label := range tokens {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		_, _ = fmt.Fprintf(out, "%s: %s\n", labelStyle.Render(label), tokenStyle.Render(tokens[label]))
	}

	if opts.tokensPath != "" {
		if err := config.NewTokenFile(opts.tokensPath).WriteTokens(tokens); err != nil {
			return fmt.Errorf("write tokens: %w", err)
		}
	}
	return nil
}

func envOr(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return fallback
}

