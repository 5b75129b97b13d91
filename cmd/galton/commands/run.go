package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/xtding233/galton-board/internal/galton"
	"github.com/xtding233/galton-board/internal/history"
	"github.com/xtding233/galton-board/internal/printer"
	"github.com/xtding233/galton-board/internal/profile"
	"github.com/xtding233/galton-board/internal/render"
)

var (
	runBoard boardFlags
	runStore storeFlags
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate one board and print its histogram",
	Example: `  galton run --slots 11 --balls 1000000
  galton run --profile wide --bias 0.3 --style table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPrinter(cmd)
		s, err := loadSettings(p, runBoard.overrides(cmd))
		if err != nil {
			return err
		}
		store, err := runStore.open(p)
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
		}
		return runOnce(cmd.Context(), p, s, store)
	},
}

func init() {
	runBoard.register(runCmd)
	runStore.register(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

// runOnce simulates s.Board, prints chart and timing and records the run.
func runOnce(ctx context.Context, p *printer.Printer, s profile.Settings, store *history.Store) error {
	p.Step("Simulating %d balls over %d slots...\n", s.Board.Balls, s.Board.Slots)
	res, err := galton.Run(s.Board)
	if err != nil {
		return p.Error("Simulation failed", err.Error(), nil)
	}
	p.Success("Finished Simulation!\n\n")

	if err := reportRun(p, s, res); err != nil {
		return err
	}

	if store != nil {
		rec := history.NewRecord(s.Board, res)
		if err := store.Save(ctx, rec); err != nil {
			return p.Error("Cannot save run", err.Error(), []string{"Check that Redis is reachable"})
		}
		p.Info("Run id: %s\n", rec.ID)
	}
	return nil
}

// reportRun prints the chart and timing, and warns when the remainder policy
// dropped balls.
func reportRun(p *printer.Printer, s profile.Settings, res galton.Result) error {
	if err := printResult(p.Out(), s, res); err != nil {
		return p.Error("Cannot draw histogram", err.Error(), nil)
	}
	if dropped := res.Dropped(s.Board.Balls); dropped > 0 {
		p.Warning("%d balls were not simulated (%d balls do not split evenly over %d workers); use --remainder assign to keep them\n",
			dropped, s.Board.Balls, res.Plan.Workers)
	}
	return nil
}

func printResult(w io.Writer, s profile.Settings, res galton.Result) error {
	if err := render.Chart(w, res.Counts, s.Render.Style, s.Render.Height, s.Render.Width); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n"+render.NewReport(res, s.Board.Balls).String()+"\n")
	return err
}
