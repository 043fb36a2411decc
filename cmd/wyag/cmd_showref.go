package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wyag-go/wyag/internal/refs"
	"github.com/wyag-go/wyag/internal/repository"
)

func newShowRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-ref",
		Short: "List references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Find(".", true)
			if err != nil {
				return err
			}
			tree, err := refs.List(repo, "refs")
			if err != nil {
				return err
			}
			showRef(tree, "refs")
			return nil
		},
	}
}

func showRef(refs map[string]any, prefix string) {
	keys := make([]string, 0, len(refs))
	for k := range refs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := refs[k].(type) {
		case string:
			if v != "" {
				fmt.Printf("%s %s/%s\n", v, prefix, k)
			}
		case map[string]any:
			showRef(v, prefix+"/"+k)
		}
	}
}
