package main

import (
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"carcompare-api/internal/model"
)

var searchPrefs prefFlags

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search cars and score them against preferences",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := searchPrefs.preferences()
		if err != nil {
			return err
		}

		resp, err := runSearch(cmd, strings.Join(args, " "), prefs)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printResults(out, resp.Results)
		printSources(out, resp)
		return nil
	},
}

func init() {
	searchPrefs.bind(searchCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, term string, prefs model.Preferences) (*model.SearchResponse, error) {
	s := newSpinner("searching " + term)
	s.Start()
	defer s.Stop()

	return stack.Cars.FetchAndScore(cmd.Context(), term, prefs)
}

func newSpinner(message string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr
	return s
}
