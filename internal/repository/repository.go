// Package repository locates the .git directory for a working tree,
// validates and creates its on-disk layout, and resolves paths under
// it. It implements components A and B of the object store: the
// repository locator and the path helper.
package repository

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Sentinel error kinds, checked with errors.Is.
var (
	ErrNotARepository = errors.New("not a git repository")
	ErrUnsupportedFmt = errors.New("unsupported repositoryformatversion")
	ErrNotADirectory  = errors.New("path exists and is not a directory")
	ErrAlreadyExists  = errors.New("target already has a non-empty .git directory")
)

var log = logrus.WithField("component", "repository")

// Repository is an open .git directory plus its parsed core config.
type Repository struct {
	WorkTree string
	GitDir   string
	Config   *Config
}

// Config is the subset of .git/config this module reads: the single
// integer repositoryformatversion key, plus whatever else was present.
type Config struct {
	sections map[string]map[string]string
}

func newConfig() *Config {
	return &Config{sections: make(map[string]map[string]string)}
}

// Get returns the raw string value of section.key, or "" if absent.
func (c *Config) Get(section, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	kv, ok := c.sections[section]
	if !ok {
		return "", false
	}
	v, ok := kv[key]
	return v, ok
}

func (c *Config) set(section, key, value string) {
	kv, ok := c.sections[section]
	if !ok {
		kv = make(map[string]string)
		c.sections[section] = kv
	}
	kv[key] = value
}

// readConfig hand-parses the minimal INI dialect Git uses: `[section]`
// headers and `key = value` (or `key=value`) pairs, `#`/`;` comments.
// No INI library exists in the retrieved example corpus, and a
// TOML/YAML library would misparse this on-disk format.
func readConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	cfg := newConfig()
	section := ""
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		eq := strings.Index(line, "=")
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		cfg.set(section, key, value)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return cfg, nil
}

// Find walks from start upward until it finds an ancestor containing a
// .git directory. Root is reached when the parent's realpath equals the
// current realpath. If required is false, a failed search returns
// (nil, nil) instead of an error.
func Find(start string, required bool) (*Repository, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %q", start)
	}
	path, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Tolerate a not-yet-existing leaf (e.g. a checkout
		// destination); walk from its nearest existing ancestor.
		path = abs
	}

	for {
		gitdir := filepath.Join(path, ".git")
		if fi, statErr := os.Stat(gitdir); statErr == nil && fi.IsDir() {
			return Open(path, false)
		}
		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		path = parent
	}

	if required {
		return nil, errors.Wrapf(ErrNotARepository, "no .git above %q", abs)
	}
	return nil, nil
}

// Open opens an existing repository rooted at worktree. Unless force is
// set, worktree/.git must be a directory, worktree/.git/config must
// exist, and its core.repositoryformatversion must be 0.
func Open(worktree string, force bool) (*Repository, error) {
	gitdir := filepath.Join(worktree, ".git")

	if fi, err := os.Stat(gitdir); err != nil || !fi.IsDir() {
		if !force {
			return nil, errors.Wrapf(ErrNotARepository, "%q", worktree)
		}
	}

	repo := &Repository{WorkTree: worktree, GitDir: gitdir}

	configPath := filepath.Join(gitdir, "config")
	cfg, err := readConfig(configPath)
	switch {
	case err == nil:
		repo.Config = cfg
	case os.IsNotExist(err) || errors.Is(err, os.ErrNotExist):
		if !force {
			return nil, errors.Wrapf(ErrNotARepository, "missing config in %q", gitdir)
		}
		repo.Config = newConfig()
	default:
		return nil, err
	}

	if !force {
		raw, ok := repo.Config.Get("core", "repositoryformatversion")
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedFmt, "core.repositoryformatversion missing")
		}
		vers, convErr := strconv.Atoi(raw)
		if convErr != nil || vers != 0 {
			return nil, errors.Wrapf(ErrUnsupportedFmt, "core.repositoryformatversion=%s", raw)
		}
	}

	log.WithField("gitdir", gitdir).Debug("opened repository")
	return repo, nil
}

// Path joins segments under the repository's gitdir.
func (r *Repository) Path(segments ...string) string {
	return filepath.Join(append([]string{r.GitDir}, segments...)...)
}

// EnsureDir joins segments under the gitdir: if the joined path
// exists and is a directory it is returned; if it exists and is a file
// this is ErrNotADirectory; if absent and make is true it is created
// (including parents) and returned; if absent and make is false, ""
// is returned with no error.
func (r *Repository) EnsureDir(make_ bool, segments ...string) (string, error) {
	path := r.Path(segments...)
	if fi, err := os.Stat(path); err == nil {
		if fi.IsDir() {
			return path, nil
		}
		return "", errors.Wrapf(ErrNotADirectory, "%q", path)
	} else if !os.IsNotExist(err) {
		return "", errors.WithStack(err)
	}

	if !make_ {
		return "", nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", errors.WithStack(err)
	}
	return path, nil
}

// EnsureFileParent ensures the parent directory of segments exists (per
// EnsureDir) and returns the full path to segments' leaf.
func (r *Repository) EnsureFileParent(make_ bool, segments ...string) (string, error) {
	if len(segments) == 0 {
		return r.Path(), nil
	}
	if _, err := r.EnsureDir(make_, segments[:len(segments)-1]...); err != nil {
		return "", err
	}
	return r.Path(segments...), nil
}

// Init scaffolds a brand new repository at path: .git/{branches,
// objects,refs/tags,refs/heads}, description, HEAD, and config.
func Init(path string) (*Repository, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		if entries, rErr := os.ReadDir(filepath.Join(path, ".git")); rErr == nil && len(entries) > 0 {
			return nil, errors.Wrapf(ErrAlreadyExists, "%q", path)
		}
	} else if err != nil && !os.IsNotExist(err) {
		return nil, errors.WithStack(err)
	}

	repo := &Repository{WorkTree: path, GitDir: filepath.Join(path, ".git")}

	for _, d := range [][]string{{"branches"}, {"objects"}, {"refs", "tags"}, {"refs", "heads"}} {
		if _, err := repo.EnsureDir(true, d...); err != nil {
			return nil, err
		}
	}

	descPath, err := repo.EnsureFileParent(true, "description")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(descPath, []byte("Unnamed repository; edit this file 'description' to name the repository.\n"), 0o644); err != nil {
		return nil, errors.WithStack(err)
	}

	headPath, err := repo.EnsureFileParent(true, "HEAD")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(headPath, []byte("ref: refs/heads/master\n"), 0o644); err != nil {
		return nil, errors.WithStack(err)
	}

	configPath, err := repo.EnsureFileParent(true, "config")
	if err != nil {
		return nil, err
	}
	defaultConfig := "[core]\n\trepositoryformatversion = 0\n\tfilemode = false\n\tbare = false\n"
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return nil, errors.WithStack(err)
	}

	cfg, err := readConfig(configPath)
	if err != nil {
		return nil, err
	}
	repo.Config = cfg

	log.WithField("path", path).Info("initialized repository")
	return repo, nil
}
