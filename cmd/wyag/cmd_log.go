package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wyag-go/wyag/internal/objstore"
	"github.com/wyag-go/wyag/internal/revision"
	"github.com/wyag-go/wyag/internal/walker"
)

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log [commit]",
		Short: "Display history of a given commit as a Graphviz digraph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := "HEAD"
			if len(args) == 1 {
				start = args[0]
			}

			repo, store, err := openStore()
			if err != nil {
				return err
			}
			startSHA, err := revision.Find(store, repo, start, objstore.KindCommit, true)
			if err != nil {
				return err
			}

			it, err := walker.New(store, startSHA)
			if err != nil {
				return err
			}

			fmt.Println("digraph wyaglog{")
			fmt.Println("  node[shape=rect]")
			for {
				c, err := it.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
				fmt.Printf("  c_%s [label=\"%s: %s\"]\n", c.SHA, c.SHA[:7], walker.GraphvizMessage(c.Commit))
				for _, p := range c.Commit.Parents() {
					fmt.Printf("  c_%s -> c_%s;\n", c.SHA, p)
				}
			}
			fmt.Println("}")
			return nil
		},
	}
}
