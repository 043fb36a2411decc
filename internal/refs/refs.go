// Package refs resolves direct and indirect references under .git/,
// enumerates the ref tree, and writes new refs.
package refs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/wyag-go/wyag/internal/repository"
)

func splitRefName(refName string) []string {
	return strings.Split(refName, "/")
}

var log = logrus.WithField("component", "refs")

const indirectPrefix = "ref: "

// Resolve reads repo.GitDir/refPath and follows indirect references
// (`ref: <path>\n`) iteratively until a direct 40-hex sha is found.
// A missing file resolves to ("", false, nil): "unresolved", not an
// error. The loop is iterative rather than recursive so a long chain
// of indirect refs can't overflow the stack.
func Resolve(repo *repository.Repository, refPath string) (string, bool, error) {
	seen := map[string]bool{}
	current := refPath

	for {
		if seen[current] {
			return "", false, errors.Errorf("refs: cycle detected resolving %q", refPath)
		}
		seen[current] = true

		path := repo.Path(current)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				log.WithField("ref", current).Debug("ref unresolved: missing file")
				return "", false, nil
			}
			return "", false, errors.Wrapf(err, "read ref %q", current)
		}

		content := strings.TrimRight(string(data), "\n")
		if strings.HasPrefix(content, indirectPrefix) {
			current = strings.TrimSpace(content[len(indirectPrefix):])
			log.WithField("next", current).Debug("ref: following indirect reference")
			continue
		}
		return content, true, nil
	}
}

// List walks subdir (relative to .git) as a tree: directories become
// nested maps keyed by basename, files become their resolved values.
func List(repo *repository.Repository, subdir string) (map[string]any, error) {
	dir, err := repo.EnsureDir(false, subdir)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return map[string]any{}, nil
	}
	return listDir(repo, dir, subdir)
}

func listDir(repo *repository.Repository, absDir, relDir string) (map[string]any, error) {
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, errors.Wrapf(err, "list refs under %q", relDir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	ret := make(map[string]any, len(entries))
	for _, e := range entries {
		relChild := filepath.Join(relDir, e.Name())
		if e.IsDir() {
			child, err := listDir(repo, filepath.Join(absDir, e.Name()), relChild)
			if err != nil {
				return nil, err
			}
			ret[e.Name()] = child
			continue
		}
		sha, ok, err := Resolve(repo, relChild)
		if err != nil {
			return nil, err
		}
		if ok {
			ret[e.Name()] = sha
		} else {
			ret[e.Name()] = ""
		}
	}
	return ret, nil
}

// Create writes a direct reference refs/<refName> -> sha.
func Create(repo *repository.Repository, refName, sha string) error {
	segments := append([]string{"refs"}, splitRefName(refName)...)
	path, err := repo.EnsureFileParent(true, segments...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(sha+"\n"), 0o644); err != nil {
		return errors.WithStack(err)
	}
	log.WithFields(logrus.Fields{"ref": refName, "sha": sha}).Debug("created ref")
	return nil
}
