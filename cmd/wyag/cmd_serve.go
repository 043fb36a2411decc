package main

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/net/webdav"

	"github.com/wyag-go/wyag/internal/davfs"
	"github.com/wyag-go/wyag/internal/object"
	"github.com/wyag-go/wyag/internal/objstore"
	"github.com/wyag-go/wyag/internal/revision"
)

const defaultAddr = ":6060"

func newServeCmd() *cobra.Command {
	var httpAddr string
	var commitRef string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a commit's tree read-only over WebDAV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if commitRef == "" {
				return cmd.Usage()
			}

			repo, store, err := openStore()
			if err != nil {
				return err
			}

			treeSHA, err := revision.Find(store, repo, commitRef, objstore.KindTree, true)
			if err != nil {
				return err
			}
			obj, err := object.Read(store, treeSHA)
			if err != nil {
				return err
			}
			tree, ok := obj.(*object.Tree)
			if !ok {
				return errNotATree(treeSHA)
			}

			dav := &webdav.Handler{
				FileSystem: &davfs.FileSystem{Store: store, Root: tree},
				LockSystem: webdav.NewMemLS(),
				Logger: func(req *http.Request, err error) {
					if err != nil {
						logrus.WithError(err).Warn("webdav request failed")
						return
					}
					logrus.WithFields(logrus.Fields{"method": req.Method, "url": req.URL.String()}).Info("webdav request")
				},
			}

			logrus.WithFields(logrus.Fields{"worktree": repo.WorkTree, "commit": commitRef, "addr": httpAddr}).Info("serving commit tree over webdav")
			return http.ListenAndServe(httpAddr, dav)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", defaultAddr, "HTTP service address")
	cmd.Flags().StringVarP(&commitRef, "commit", "c", "", "commit to serve")
	return cmd
}
