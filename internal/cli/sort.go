package cli

import (
	"strings"

	"inkwell-cli/internal/views"

	"github.com/spf13/cobra"
)

func addSortFlags(cmd *cobra.Command, key *string, desc *bool, allowed []views.SortKey) {
	names := make([]string, len(allowed))
	for i, k := range allowed {
		names[i] = string(k)
	}
	cmd.Flags().StringVar(key, "sort", "", "Sort column ("+strings.Join(names, "|")+")")
	cmd.Flags().BoolVar(desc, "desc", false, "Sort descending")
}

func parseSort(key string, desc bool, allowed []views.SortKey) (views.SortState, error) {
	k, err := views.ParseSortKey(key, allowed)
	if err != nil {
		return views.SortState{}, errFlag("sort", err.Error())
	}
	state := views.SortState{Key: k}
	if desc {
		state.Dir = views.Desc
	}
	return state, nil
}
