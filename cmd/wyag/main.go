// Command wyag is the CLI front end for the object store: argument
// parsing and subcommand dispatch only — no object store semantics
// live here.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wyag-go/wyag/internal/objstore"
	"github.com/wyag-go/wyag/internal/repository"
)

var verbose bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wyag",
		Short:         "the stupidest content tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cobra.OnInitialize(func() {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
	})

	root.AddCommand(
		newInitCmd(),
		newHashObjectCmd(),
		newCatFileCmd(),
		newLogCmd(),
		newLsTreeCmd(),
		newCheckoutCmd(),
		newShowRefCmd(),
		newTagCmd(),
		newRevParseCmd(),
		newLsFilesCmd(),
		newCheckIgnoreCmd(),
		newServeCmd(),
	)
	return root
}

// openStore finds the enclosing repository and wraps it in an
// objstore.Store, the pair nearly every subcommand needs.
func openStore() (*repository.Repository, *objstore.Store, error) {
	repo, err := repository.Find(".", true)
	if err != nil {
		return nil, nil, err
	}
	store, err := objstore.NewStore(repo)
	if err != nil {
		return nil, nil, err
	}
	return repo, store, nil
}
