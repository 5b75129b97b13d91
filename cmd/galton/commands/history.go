package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/xtding233/galton-board/internal/history"
	"github.com/xtding233/galton-board/internal/render"
)

var (
	historyStore storeFlags
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect runs stored in Redis",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPrinter(cmd)
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Recent(ctxOf(cmd), historyLimit)
		if err != nil {
			return p.Error("Cannot list runs", err.Error(), []string{"Check that Redis is reachable"})
		}
		if len(runs) == 0 {
			p.Info("No runs recorded in namespace %q\n", historyStore.namespace)
			return nil
		}

		table := tablewriter.NewWriter(p.Out())
		table.Header("ID", "Created", "Slots", "Balls", "Bias", "Workers", "Elapsed")
		for _, r := range runs {
			if err := table.Append([]string{
				r.ID,
				r.CreatedAt.Format("2006-01-02 15:04:05"),
				strconv.Itoa(r.Slots),
				strconv.Itoa(r.Balls),
				strconv.FormatFloat(r.Bias, 'g', -1, 64),
				strconv.Itoa(r.Workers),
				r.Elapsed.String(),
			}); err != nil {
				return err
			}
		}
		return table.Render()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Redraw a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPrinter(cmd)
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		r, err := store.Get(ctxOf(cmd), args[0])
		if history.IsNotFound(err) {
			return p.Error(
				fmt.Sprintf("Run %s not found", args[0]),
				fmt.Sprintf("No run with that id in namespace %q.", historyStore.namespace),
				[]string{"List stored runs with: galton history list"},
			)
		}
		if err != nil {
			return p.Error("Cannot read run", err.Error(), nil)
		}

		p.Info("Run %s (%d slots, bias %g, %s strategy)\n\n", r.ID, r.Slots, r.Bias, r.Strategy)
		if err := render.Table(p.Out(), r.Counts); err != nil {
			return err
		}
		p.Info("\n%s\n", render.Report{Requested: r.Requested, Balls: r.Balls, Workers: r.Workers, Elapsed: r.Elapsed})
		return nil
	},
}

func init() {
	historyStore.register(historyCmd.PersistentFlags())
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list")
	historyCmd.AddCommand(historyListCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	p := newPrinter(cmd)
	if historyStore.addr == "" {
		return nil, p.Error("No Redis address", "Run history lives in Redis.", []string{"Pass --redis host:port"})
	}
	return historyStore.open(p)
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
