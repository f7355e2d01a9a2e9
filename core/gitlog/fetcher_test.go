package gitlog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGit serves canned logs keyed by repository url.
type fakeGit struct {
	mu     sync.Mutex
	logs   map[string]string
	dirs   map[string]string // clone dir -> url
	clones []string
}

func newFakeGit(logs map[string]string) *fakeGit {
	return &fakeGit{logs: logs, dirs: make(map[string]string)}
}

func (g *fakeGit) run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if name != "git" || len(args) == 0 {
		return nil, fmt.Errorf("unexpected command %s %v", name, args)
	}
	switch args[0] {
	case "clone":
		url, dest := args[len(args)-2], args[len(args)-1]
		if args[len(args)-3] != "--" {
			return nil, errors.New("url must follow --")
		}
		if _, ok := g.logs[url]; !ok {
			return nil, errors.New("repository not found")
		}
		g.clones = append(g.clones, url)
		g.dirs[dest] = url
		return nil, nil
	case "log":
		url, ok := g.dirs[dir]
		if !ok {
			return nil, errors.New("not a git repository")
		}
		return []byte(g.logs[url]), nil
	}
	return nil, fmt.Errorf("unexpected git command %v", args)
}

func commitLog(hash, date string) string {
	return "commit " + hash + "\nAuthor: Ana <ana@test.md>\nAuthorDate: " + date + "\n\n    work\n\n"
}

func TestFetcher_Fetch(t *testing.T) {
	git := newFakeGit(map[string]string{
		"https://github.com/ana/pbl": commitLog("a1", "Fri Mar 8 18:00:00 2024 +0000"),
		"https://github.com/ana/bad": "not a log",
	})
	f := &Fetcher{WorkDir: t.TempDir(), Timeout: time.Minute, Run: git.run}
	ctx := context.Background()

	tests := []struct {
		name    string
		url     string
		want    int
		wantErr error
	}{
		{name: "blank", url: "  ", wantErr: ErrNoRepository},
		{name: "option injection", url: "--upload-pack=touch /tmp/x", wantErr: ErrInvalidRepoURL},
		{name: "whitespace", url: "https://github.com/ana/pbl extra", wantErr: ErrInvalidRepoURL},
		{name: "malformed log", url: "https://github.com/ana/bad", wantErr: ErrMalformed},
		{name: "ok", url: " https://github.com/ana/pbl ", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Fetch(ctx, tt.url)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	_, err := f.Fetch(ctx, "https://github.com/ana/missing")
	assert.EqualError(t, err, "cloning https://github.com/ana/missing: repository not found")
}

func TestFetcher_FetchAll(t *testing.T) {
	shared := commitLog("s1", "Thu Mar 7 10:00:00 2024 +0000")
	git := newFakeGit(map[string]string{
		"https://github.com/ana/pbl": commitLog("a1", "Fri Mar 8 18:00:00 2024 +0000") + shared,
		"https://github.com/ion/pbl": commitLog("i1", "Sat Mar 9 09:00:00 2024 +0000") + shared,
	})
	f := &Fetcher{WorkDir: t.TempDir(), Concurrency: 1, Run: git.run}
	ctx := context.Background()

	_, err := f.FetchAll(ctx, "", " ")
	assert.Equal(t, ErrNoRepository, err)

	commits, err := f.FetchAll(ctx, "https://github.com/ana/pbl", "", "https://github.com/ion/pbl", "https://github.com/ana/pbl")
	require.NoError(t, err)

	hashes := make([]string, len(commits))
	for i, c := range commits {
		hashes[i] = c.Hash
	}
	assert.Equal(t, []string{"i1", "a1", "s1"}, hashes)
	assert.ElementsMatch(t, []string{"https://github.com/ana/pbl", "https://github.com/ion/pbl"}, git.clones)

	_, err = f.FetchAll(ctx, "https://github.com/ana/pbl", "https://github.com/ana/missing")
	assert.Error(t, err)
}
