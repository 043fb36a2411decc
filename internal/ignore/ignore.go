// Package ignore loads scoped (per-directory .gitignore blobs tracked
// in the index) and absolute (.git/info/exclude, XDG global) ignore
// rules, and decides ignore status with nearest-scope precedence.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/wyag-go/wyag/internal/index"
	"github.com/wyag-go/wyag/internal/object"
	"github.com/wyag-go/wyag/internal/objstore"
	"github.com/wyag-go/wyag/internal/repository"
)

var log = logrus.WithField("component", "ignore")

var ErrAbsolutePathRejected = errors.New("check-ignore requires a relative path")

// Rule is one parsed gitignore line: a glob plus its polarity (true
// means "ignore", false means "unignore").
type Rule struct {
	Glob    string
	Ignores bool
}

// RuleSet is one source file's parsed rules, in file order.
type RuleSet []Rule

// Ignore holds every loaded ignore source. Absolute is an ordered
// collection of complete rulesets, one per source file — never
// flatten these into a single ruleset, since precedence runs source
// file by source file. Scoped maps a tracked directory path to the
// ruleset from its .gitignore blob.
type Ignore struct {
	Absolute []RuleSet
	Scoped   map[string]RuleSet
}

// parseLine parses one raw gitignore line into a rule, or nil for a
// blank/comment line.
func parseLine(raw string) *Rule {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}
	switch trimmed[0] {
	case '!':
		return &Rule{Glob: trimmed[1:], Ignores: false}
	case '\\':
		return &Rule{Glob: trimmed[1:], Ignores: true}
	default:
		return &Rule{Glob: trimmed, Ignores: true}
	}
}

func parseLines(lines []string) RuleSet {
	var rules RuleSet
	for _, line := range lines {
		if r := parseLine(line); r != nil {
			rules = append(rules, *r)
		}
	}
	return rules
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// Read loads .git/info/exclude, the XDG global gitignore, and every
// .gitignore tracked in the index.
func Read(store *objstore.Store, repo *repository.Repository) (*Ignore, error) {
	ig := &Ignore{Scoped: make(map[string]RuleSet)}

	localPath := repo.Path("info", "exclude")
	if lines, err := readLines(localPath); err == nil {
		ig.Absolute = append(ig.Absolute, parseLines(lines))
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "read %q", localPath)
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "resolve home directory")
		}
		configHome = filepath.Join(home, ".config")
	}
	globalPath := filepath.Join(configHome, "git", "ignore")
	if lines, err := readLines(globalPath); err == nil {
		ig.Absolute = append(ig.Absolute, parseLines(lines))
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "read %q", globalPath)
	}

	idx, err := index.Read(repo)
	if err != nil {
		return nil, err
	}
	for _, entry := range idx.Entries {
		if entry.Name != ".gitignore" && !strings.HasSuffix(entry.Name, "/.gitignore") {
			continue
		}
		obj, err := object.Read(store, entry.SHA)
		if err != nil {
			return nil, errors.Wrapf(err, "read .gitignore blob for %q", entry.Name)
		}
		blob, ok := obj.(*object.Blob)
		if !ok {
			return nil, errors.Errorf("%q: .gitignore entry is not a blob", entry.Name)
		}
		dir := filepath.Dir(entry.Name)
		if dir == "." {
			dir = ""
		}
		lines := strings.Split(string(blob.Data), "\n")
		ig.Scoped[dir] = parseLines(lines)
		log.WithField("dir", dir).Debug("loaded scoped gitignore")
	}

	return ig, nil
}

// match applies every rule in rules in order and returns the last
// matching rule's polarity, or nil if none matched.
func match(rules RuleSet, path string) *bool {
	var result *bool
	for _, r := range rules {
		if ok, _ := filepath.Match(r.Glob, path); ok {
			v := r.Ignores
			result = &v
		}
	}
	return result
}

func checkScoped(scoped map[string]RuleSet, path string) *bool {
	parent := filepath.Dir(path)
	if parent == "." {
		parent = ""
	}
	for {
		if rules, ok := scoped[parent]; ok {
			if result := match(rules, path); result != nil {
				return result
			}
		}
		if parent == "" {
			return nil
		}
		next := filepath.Dir(parent)
		if next == "." {
			next = ""
		}
		parent = next
	}
}

func checkAbsolute(absolute []RuleSet, path string) bool {
	for _, ruleset := range absolute {
		if result := match(ruleset, path); result != nil {
			return *result
		}
	}
	return false
}

// CheckIgnore decides ignore status for relativePath using nearest-
// scope precedence: scoped rules for the nearest tracked ancestor
// directory win, then absolute rules in source order, then false.
func CheckIgnore(ig *Ignore, relativePath string) (bool, error) {
	if filepath.IsAbs(relativePath) {
		return false, errors.Wrapf(ErrAbsolutePathRejected, "%q", relativePath)
	}

	if result := checkScoped(ig.Scoped, relativePath); result != nil {
		return *result, nil
	}
	return checkAbsolute(ig.Absolute, relativePath), nil
}
