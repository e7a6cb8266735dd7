package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"carcompare-api/internal/model"
	"carcompare-api/internal/service"
)

var (
	comparePrefs prefFlags
	compareIDs   []string
	compareTop   int
)

var compareCmd = &cobra.Command{
	Use:   "compare <term>",
	Short: "Compare cars of a search across eco, sport and family profiles",
	Long: `compare runs a search and ranks a selection of its results. Without --ids
the best scoring results are compared.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := comparePrefs.preferences()
		if err != nil {
			return err
		}

		state := service.NewSearchState(stack.Cars, prefs)
		s := newSpinner("searching")
		s.Start()
		_, err = state.Search(cmd.Context(), strings.Join(args, " "))
		s.Stop()
		if err != nil {
			return err
		}

		selection, err := selectForComparison(state, compareIDs, compareTop)
		if err != nil {
			return err
		}

		cmp, err := stack.Cars.Compare(selection)
		if err != nil {
			return err
		}
		printComparison(cmd.OutOrStdout(), selection, cmp)
		return nil
	},
}

func init() {
	comparePrefs.bind(compareCmd)
	compareCmd.Flags().StringSliceVar(&compareIDs, "ids", nil, "result ids to compare")
	compareCmd.Flags().IntVar(&compareTop, "top", 3, "number of best results to compare when --ids is not set")
	rootCmd.AddCommand(compareCmd)
}

func selectForComparison(state *service.SearchState, ids []string, top int) ([]model.VehicleSpec, error) {
	if len(ids) > 0 {
		return state.Find(ids)
	}

	results := state.Results()
	if len(results) == 0 {
		return nil, fmt.Errorf("nothing to compare")
	}
	if top > 0 && top < len(results) {
		results = results[:top]
	}
	return results, nil
}
