package gitlog

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/igortacu/summer-hackathon-sub000/core"
)

var (
	// errors
	ErrNoRepository   = errors.New("no repository url")
	ErrInvalidRepoURL = errors.New("invalid repository url")
)

// Runner executes a command in dir and returns its standard output.
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// Fetcher clones repositories and reads their history.
type Fetcher struct {
	WorkDir     string // temp clones go here; os.TempDir() when empty
	Timeout     time.Duration
	Concurrency int
	Run         Runner
}

func NewFetcher(conf core.ActivityConfig) *Fetcher {
	return &Fetcher{
		WorkDir:     conf.GitWorkDir,
		Timeout:     conf.GitTimeout,
		Concurrency: conf.GitConcurrency,
		Run:         execRunner,
	}
}

func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Wrap(err, msg)
		}
		return nil, err
	}
	return out, nil
}

func checkURL(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrNoRepository
	}
	if strings.HasPrefix(url, "-") || strings.ContainsAny(url, " \t\n") {
		return ErrInvalidRepoURL
	}
	return nil
}

// Fetch bare-clones url into a temp dir, parses its log and removes the clone.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Commit, error) {
	if err := checkURL(url); err != nil {
		return nil, err
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	run := f.Run
	if run == nil {
		run = execRunner
	}

	dir, err := os.MkdirTemp(f.WorkDir, "gitlog-*")
	if err != nil {
		return nil, errors.Wrap(err, "creating clone dir")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	if _, err = run(ctx, "", "git", "clone", "--bare", "--quiet", "--", strings.TrimSpace(url), dir); err != nil {
		return nil, errors.Wrapf(err, "cloning %s", url)
	}
	out, err := run(ctx, dir, "git", "log", "--all", "--stat", "--pretty=fuller")
	if err != nil {
		return nil, errors.Wrapf(err, "reading log of %s", url)
	}
	commits, err := Parse(bytes.NewReader(out))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing log of %s", url)
	}
	return commits, nil
}

// FetchAll fetches every url concurrently and returns their commits de-duplicated by hash,
// newest first. Blank urls are skipped; the first failure cancels the rest.
func (f *Fetcher) FetchAll(ctx context.Context, urls ...string) ([]Commit, error) {
	uniq := make([]string, 0, len(urls))
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		uniq = append(uniq, u)
	}
	if len(uniq) == 0 {
		return nil, ErrNoRepository
	}

	results := make([][]Commit, len(uniq))
	g, ctx := errgroup.WithContext(ctx)
	if f.Concurrency > 0 {
		g.SetLimit(f.Concurrency)
	}
	for i, u := range uniq {
		i, u := i, u
		g.Go(func() error {
			commits, err := f.Fetch(ctx, u)
			if err != nil {
				return err
			}
			results[i] = commits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Commit
	for _, r := range results {
		all = append(all, r...)
	}
	all = Dedupe(all)
	sort.SliceStable(all, func(i, j int) bool { return all[i].AuthorDate.After(all[j].AuthorDate) })
	return all, nil
}
