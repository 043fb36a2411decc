// Package revision resolves a user-supplied name into candidate object
// ids, and follows tag/commit chains down to a requested kind.
package revision

import (
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/wyag-go/wyag/internal/kvlm"
	"github.com/wyag-go/wyag/internal/objstore"
	"github.com/wyag-go/wyag/internal/refs"
	"github.com/wyag-go/wyag/internal/repository"
)

var log = logrus.WithField("component", "revision")

var (
	ErrNoSuchReference    = errors.New("no such reference")
	ErrAmbiguousReference = errors.New("ambiguous reference")
	ErrBadRevision        = errors.New("bad revision")
)

var hashPattern = regexp.MustCompile(`^[0-9A-Fa-f]{4,40}$`)

// Resolve maps name to a set (deduplicated, order-preserving) of
// candidate SHAs: HEAD always yields exactly one (possibly the
// unresolved sentinel ""), everything else accumulates matches from
// short-hash prefix, tag name, and branch name lookups.
func Resolve(repo *repository.Repository, name string) ([]string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, errors.Wrap(ErrBadRevision, "empty revision")
	}

	if trimmed == "HEAD" {
		sha, _, err := refs.Resolve(repo, "HEAD")
		if err != nil {
			return nil, err
		}
		return []string{sha}, nil
	}

	seen := map[string]bool{}
	var candidates []string
	add := func(sha string) {
		if sha == "" || seen[sha] {
			return
		}
		seen[sha] = true
		candidates = append(candidates, sha)
	}

	if hashPattern.MatchString(trimmed) {
		lower := strings.ToLower(trimmed)
		prefix, rest := lower[:2], lower[2:]
		dir, err := repo.EnsureDir(false, "objects", prefix)
		if err != nil {
			return nil, err
		}
		if dir != "" {
			entries, err := os.ReadDir(dir)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			for _, e := range entries {
				if strings.HasPrefix(e.Name(), rest) {
					add(prefix + e.Name())
				}
			}
		}
	}

	if sha, ok, err := refs.Resolve(repo, "refs/tags/"+trimmed); err != nil {
		return nil, err
	} else if ok {
		add(sha)
	}

	if sha, ok, err := refs.Resolve(repo, "refs/heads/"+trimmed); err != nil {
		return nil, err
	} else if ok {
		add(sha)
	}

	log.WithFields(logrus.Fields{"name": name, "candidates": candidates}).Debug("resolved candidates")
	return candidates, nil
}

// Find resolves name to exactly one candidate, then — if expectedKind is
// non-empty — follows tag -> commit -> tree chains until an object of
// that kind is reached. follow=false stops after one kind check and
// returns ("", nil) if it didn't already match.
func Find(store *objstore.Store, repo *repository.Repository, name string, expectedKind objstore.Kind, follow bool) (string, error) {
	candidates, err := Resolve(repo, name)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", errors.Wrapf(ErrNoSuchReference, "%q", name)
	}
	if len(candidates) > 1 {
		return "", errors.Wrapf(ErrAmbiguousReference, "%q: candidates %v", name, candidates)
	}
	sha := candidates[0]

	if expectedKind == "" {
		return sha, nil
	}

	for {
		raw, err := store.Read(sha)
		if err != nil {
			return "", err
		}
		if raw.Kind == expectedKind {
			return sha, nil
		}
		if !follow {
			return "", nil
		}

		switch {
		case raw.Kind == objstore.KindTag:
			obj, err := kvlm.Parse(raw.Payload)
			if err != nil {
				return "", errors.Wrapf(err, "parse %s %s", raw.Kind, sha)
			}
			next, ok := obj.Get("object")
			if !ok {
				return "", errors.Errorf("revision: tag %s missing object key", sha)
			}
			sha = next
		case raw.Kind == objstore.KindCommit && expectedKind == objstore.KindTree:
			obj, err := kvlm.Parse(raw.Payload)
			if err != nil {
				return "", errors.Wrapf(err, "parse %s %s", raw.Kind, sha)
			}
			next, ok := obj.Get("tree")
			if !ok {
				return "", errors.Errorf("revision: commit %s missing tree key", sha)
			}
			sha = next
		default:
			return "", nil
		}
	}
}
