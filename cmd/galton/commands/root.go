package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xtding233/galton-board/internal/printer"
	"github.com/xtding233/galton-board/internal/profile"
)

var (
	configDir   string
	profileName string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "galton",
	Short: "Galton board simulator",
	Long: `galton drops balls through a board of pegs, each peg deflecting the
ball right with a configurable bias, and draws the resulting histogram.

Balls are split across goroutines, one independent random stream each.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", os.Getenv("GALTON_CONFIG_DIR"), "directory holding boards/default.yaml and profiles")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "board profile to load on top of the defaults")
}

func newPrinter(cmd *cobra.Command) *printer.Printer {
	return printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// loadSettings resolves the active profile plus overrides.
func loadSettings(p *printer.Printer, o profile.Overrides) (profile.Settings, error) {
	_, s, err := profile.NewLoader(configDir).Resolve(profileName, o)
	if err != nil {
		return profile.Settings{}, p.Error(
			"Invalid board configuration",
			err.Error(),
			[]string{
				"Check the values passed on the command line",
				fmt.Sprintf("Check %s/boards/*.yaml", configDir),
			},
		)
	}
	return s, nil
}
