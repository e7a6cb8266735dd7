package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"carcompare-api/internal/model"
	"carcompare-api/internal/service"
)

const shellHelp = `type a model or brand to search, or a command:
  :set <key> <value>   change a preference (minPower, maxConsumption, maxPrice, traction)
  :prefs               show the current preferences
  :list                show the current results
  :compare [ids...]    compare results, the best three when no id is given
  :help                show this help
  :quit                leave`

var errQuit = errors.New("quit")

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive search session",
	RunE: func(cmd *cobra.Command, args []string) error {
		sh := &shell{
			state: service.NewSearchState(stack.Cars, model.DefaultPreferences()),
			cars:  stack.Cars,
			out:   cmd.OutOrStdout(),
		}
		return sh.run(cmd.Context(), cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

type shell struct {
	state *service.SearchState
	cars  *service.CarService
	out   io.Writer
}

func (sh *shell) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(sh.out, shellHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, heading.Sprint("> "))
		if !scanner.Scan() {
			fmt.Fprintln(sh.out)
			return scanner.Err()
		}

		err := sh.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(sh.out, poor.Sprint(err))
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (sh *shell) exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, ":") {
		resp, err := sh.state.Search(ctx, line)
		if err != nil {
			return err
		}
		printResults(sh.out, resp.Results)
		printSources(sh.out, resp)
		return nil
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return fmt.Errorf("empty command, try :help")
	}

	switch fields[0] {
	case "quit", "q", "exit":
		return errQuit
	case "help", "h":
		fmt.Fprintln(sh.out, shellHelp)
	case "prefs":
		printPreferences(sh.out, sh.state.Preferences())
	case "list":
		printResults(sh.out, sh.state.Results())
	case "set":
		if len(fields) != 3 {
			return fmt.Errorf("usage: :set <key> <value>")
		}
		prefs, err := setPreference(sh.state.Preferences(), fields[1], fields[2])
		if err != nil {
			return err
		}
		printResults(sh.out, sh.state.UpdatePreferences(prefs))
	case "compare":
		selection, err := selectForComparison(sh.state, fields[1:], 3)
		if err != nil {
			return err
		}
		cmp, err := sh.cars.Compare(selection)
		if err != nil {
			return err
		}
		printComparison(sh.out, selection, cmp)
	default:
		return fmt.Errorf("unknown command %q, try :help", fields[0])
	}
	return nil
}
