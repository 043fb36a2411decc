package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wyag-go/wyag/internal/ignore"
)

func newCheckIgnoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-ignore <path>...",
		Short: "Check path(s) against ignore rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, store, err := openStore()
			if err != nil {
				return err
			}
			rules, err := ignore.Read(store, repo)
			if err != nil {
				return err
			}
			for _, p := range args {
				ignored, err := ignore.CheckIgnore(rules, p)
				if err != nil {
					return err
				}
				if ignored {
					fmt.Println(p)
				}
			}
			return nil
		},
	}
}
