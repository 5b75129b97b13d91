package commands

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xtding233/galton-board/internal/printer"
	"github.com/xtding233/galton-board/internal/profile"
)

var interactiveBoard boardFlags

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Prompt for slots and balls and simulate until end of input",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPrinter(cmd)
		base := interactiveBoard.overrides(cmd)
		// validate the profile before the first prompt
		if _, err := loadSettings(p, base); err != nil {
			return err
		}
		return promptLoop(cmd, p, base)
	},
}

func init() {
	interactiveBoard.register(interactiveCmd)
	rootCmd.AddCommand(interactiveCmd)
}

func promptLoop(cmd *cobra.Command, p *printer.Printer, base profile.Overrides) error {
	in := bufio.NewScanner(cmd.InOrStdin())
	for {
		slots, err := prompt(in, p, "Input slots: ")
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		balls, err := prompt(in, p, "Input balls: ")
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		o := base
		o.Slots, o.Balls = &slots, &balls
		s, err := loadSettings(p, o)
		if err != nil {
			return err
		}
		if err := runOnce(cmd.Context(), p, s, nil); err != nil {
			return err
		}
		p.Info("\n")
	}
}

// prompt reads one integer, asking again after malformed input.
func prompt(in *bufio.Scanner, p *printer.Printer, label string) (int, error) {
	for {
		p.Info("%s", label)
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return 0, fmt.Errorf("read input: %w", err)
			}
			return 0, io.EOF
		}
		n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err != nil {
			p.Warning("%q is not a whole number\n", in.Text())
			continue
		}
		return n, nil
	}
}
