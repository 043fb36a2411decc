package revision

import (
	"github.com/pkg/errors"

	"github.com/wyag-go/wyag/internal/kvlm"
	"github.com/wyag-go/wyag/internal/object"
	"github.com/wyag-go/wyag/internal/objstore"
	"github.com/wyag-go/wyag/internal/refs"
	"github.com/wyag-go/wyag/internal/repository"
)

// TagCreate resolves ref to a target sha, then either writes a
// lightweight ref directly at that sha or builds and writes an
// annotated tag object and points the ref at it.
func TagCreate(store *objstore.Store, repo *repository.Repository, name, ref string, annotated bool) (string, error) {
	target, err := Find(store, repo, ref, "", true)
	if err != nil {
		return "", errors.Wrapf(err, "resolve tag target %q", ref)
	}

	if !annotated {
		if err := refs.Create(repo, "tags/"+name, target); err != nil {
			return "", err
		}
		return target, nil
	}

	k := kvlm.New([]byte("A tag generated by wyag, which won't let you customize the message!\n"))
	k.Set("object", []byte(target))
	k.Set("type", []byte(objstore.KindCommit))
	k.Set("tag", []byte(name))
	k.Set("tagger", []byte("Wyag <wyag@example.com>"))

	tag := object.NewTag(k)
	tagSHA, err := object.Write(store, tag)
	if err != nil {
		return "", errors.Wrap(err, "write tag object")
	}
	if err := refs.Create(repo, "tags/"+name, tagSHA); err != nil {
		return "", err
	}
	return tagSHA, nil
}
