package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"pantry-cookbook/internal/core/matching"
	"pantry-cookbook/internal/pkg/common"
)

const missingColumnWidth = 60

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "List recipes the household pantry can make",
	Long: `Matches every recipe against the household pantry.

Examples:
  # Only recipes that can be made right now
  pantryctl match --strict

  # Include recipes below 50% and sort by difficulty
  pantryctl match --partial --sort easiest`,
	RunE: runMatch,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest recipes missing only a few ingredients",
	RunE:  runSuggest,
}

var shoppingCmd = &cobra.Command{
	Use:   "shopping <recipe-id>...",
	Short: "Print a shopping list for the given recipes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShopping,
}

func init() {
	f := matchCmd.Flags()
	f.Bool("strict", false, "only recipes with every required ingredient available")
	f.Bool("partial", false, "include recipes below the partial-match threshold")
	f.String("sort", "best_match", "best_match, easiest or name")

	suggestCmd.Flags().Int("max-missing", 3, "maximum number of missing ingredients")
	shoppingCmd.Flags().Bool("optional", false, "include optional ingredients")

	rootCmd.AddCommand(matchCmd, suggestCmd, shoppingCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	sortFlag, _ := f.GetString("sort")
	mode, ok := matching.ParseSortMode(sortFlag)
	if !ok {
		return eris.Errorf("unknown sort mode %q", sortFlag)
	}
	strict, _ := f.GetBool("strict")
	partial, _ := f.GetBool("partial")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	matches, err := a.Matching.MatchForHousehold(cmd.Context(), householdFlag(cmd),
		matching.Options{StrictMode: strict, IncludePartial: partial, Sort: mode}, nil)
	if err != nil {
		return err
	}
	return printMatches(cmd, matches)
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	maxMissing, _ := cmd.Flags().GetInt("max-missing")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	matches, err := a.Matching.SuggestForHousehold(cmd.Context(), householdFlag(cmd), maxMissing)
	if err != nil {
		return err
	}
	return printMatches(cmd, matches)
}

func printMatches(cmd *cobra.Command, matches []matching.RecipeMatch) error {
	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintln(out, "no matching recipes")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRECIPE\tMATCH\tTIME\tSTATUS\tMISSING")
	for _, m := range matches {
		fmt.Fprintf(w, "%d\t%s\t%.0f%%\t%s\t%s\t%s\n",
			m.Recipe.ID, m.Recipe.Name, m.MatchPercentage, common.FormatMinutes(m.Recipe.TotalTime()), m.Status,
			common.Truncate(strings.Join(m.MissingIngredients, ", "), missingColumnWidth))
	}
	return w.Flush()
}

func runShopping(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	optional, _ := cmd.Flags().GetBool("optional")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.Shopping.BuildForHousehold(cmd.Context(), householdFlag(cmd), ids, optional)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), list.Text())
	return nil
}

// parseIDs 解析正整數 id 參數
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, eris.Errorf("invalid recipe id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
