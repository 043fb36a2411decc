package main

import (
	"github.com/spf13/cobra"

	"github.com/wyag-go/wyag/internal/repository"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new, empty repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			_, err := repository.Init(path)
			return err
		},
	}
}
