package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wyag-go/wyag/internal/index"
	"github.com/wyag-go/wyag/internal/repository"
)

func newLsFilesCmd() *cobra.Command {
	var verboseFlag bool
	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "List all the staged files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Find(".", true)
			if err != nil {
				return err
			}
			idx, err := index.Read(repo)
			if err != nil {
				return err
			}

			if verboseFlag {
				fmt.Printf("Index file format v%d, containing %d entries.\n", idx.Version, len(idx.Entries))
			}
			for _, e := range idx.Entries {
				fmt.Println(e.Name)
				if !verboseFlag {
					continue
				}
				fmt.Printf("  mode_type=%o perms=%o sha=%s\n", e.ModeType, e.ModePerms, e.SHA)
				fmt.Printf("  ctime=%d.%d mtime=%d.%d\n", e.CTime.Seconds, e.CTime.Nanoseconds, e.MTime.Seconds, e.MTime.Nanoseconds)
				fmt.Printf("  device=%d inode=%d uid=%d gid=%d\n", e.Dev, e.Ino, e.UID, e.GID)
				fmt.Printf("  flags: stage=%d assume_valid=%v\n", e.Stage, e.AssumeValid)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&verboseFlag, "verbose", false, "show everything")
	return cmd
}
