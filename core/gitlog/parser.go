// Package gitlog reads commit history as printed by `git log --stat --pretty=fuller`
// and turns it into daily activity samples.
package gitlog

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DateLayout is git's default date format.
const DateLayout = "Mon Jan 2 15:04:05 2006 -0700"

var (
	// errors
	ErrMalformed = errors.New("malformed git log")

	summaryRegex = regexp.MustCompile(`^\s*(\d+) files? changed(?:, (\d+) insertions?\(\+\))?(?:, (\d+) deletions?\(-\))?`)
)

type Signature struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type FileStat struct {
	Path    string `json:"path"`
	Changes int    `json:"changes"`
	Binary  bool   `json:"binary,omitempty"`
}

type Commit struct {
	Hash         string     `json:"hash"`
	Parents      []string   `json:"parents,omitempty"`
	Author       Signature  `json:"author"`
	AuthorDate   time.Time  `json:"author_date"`
	Committer    Signature  `json:"committer"`
	CommitDate   time.Time  `json:"commit_date"`
	Message      string     `json:"message"`
	Files        []FileStat `json:"files"`
	FilesChanged int        `json:"files_changed"`
	Insertions   int        `json:"insertions"`
	Deletions    int        `json:"deletions"`
}

// Subject is the first line of the commit message.
func (c Commit) Subject() string {
	return strings.SplitN(c.Message, "\n", 2)[0]
}

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

type parser struct {
	commits []Commit
	cur     *Commit
	msg     []string
	lineNo  int
}

// Parse reads `git log --stat --pretty=fuller` output. Commits keep the log order.
func Parse(r io.Reader) ([]Commit, error) {
	p := &parser{commits: make([]Commit, 0, 64)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.lineNo++
		if err := p.parseLine(strings.TrimRight(scanner.Text(), "\r")); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading git log")
	}
	p.flush()
	return p.commits, nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformed, "line %d: "+format, append([]interface{}{p.lineNo}, args...)...)
}

func (p *parser) flush() {
	if p.cur == nil {
		return
	}
	p.cur.Message = strings.TrimSpace(strings.Join(p.msg, "\n"))
	p.commits = append(p.commits, *p.cur)
	p.cur, p.msg = nil, nil
}

func (p *parser) parseLine(line string) error {
	if strings.HasPrefix(line, "commit ") {
		p.flush()
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return p.errorf("missing commit hash")
		}
		p.cur = &Commit{Hash: fields[1], Files: []FileStat{}}
		return nil
	}
	if p.cur == nil {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		return p.errorf("expected a commit line, got %q", line)
	}

	switch {
	case line == "":
		if len(p.msg) > 0 {
			p.msg = append(p.msg, "")
		}
	case strings.HasPrefix(line, "    "):
		p.msg = append(p.msg, line[4:])
	case strings.HasPrefix(line, "Merge:"):
		p.cur.Parents = strings.Fields(strings.TrimPrefix(line, "Merge:"))
	case strings.HasPrefix(line, "AuthorDate:"):
		t, err := parseDate(strings.TrimPrefix(line, "AuthorDate:"))
		if err != nil {
			return p.errorf("author date: %v", err)
		}
		p.cur.AuthorDate = t
	case strings.HasPrefix(line, "CommitDate:"):
		t, err := parseDate(strings.TrimPrefix(line, "CommitDate:"))
		if err != nil {
			return p.errorf("commit date: %v", err)
		}
		p.cur.CommitDate = t
	case strings.HasPrefix(line, "Author:"):
		p.cur.Author = parseSignature(strings.TrimPrefix(line, "Author:"))
	case strings.HasPrefix(line, "Commit:"):
		p.cur.Committer = parseSignature(strings.TrimPrefix(line, "Commit:"))
	case summaryRegex.MatchString(line):
		m := summaryRegex.FindStringSubmatch(line)
		p.cur.FilesChanged = atoi(m[1])
		p.cur.Insertions = atoi(m[2])
		p.cur.Deletions = atoi(m[3])
	case strings.HasPrefix(line, " ") && strings.Contains(line, " | "):
		p.cur.Files = append(p.cur.Files, parseFileStat(line))
	default:
		// unknown headers (eg. gpg output) are ignored
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// parseSignature parses "Name <email>".
func parseSignature(s string) Signature {
	s = strings.TrimSpace(s)
	lt := strings.LastIndex(s, "<")
	gt := strings.LastIndex(s, ">")
	if lt < 0 || gt < lt {
		return Signature{Name: s}
	}
	return Signature{
		Name:  strings.TrimSpace(s[:lt]),
		Email: strings.ToLower(strings.TrimSpace(s[lt+1 : gt])),
	}
}

// parseFileStat parses " path | 10 +++---" and " img.png | Bin 0 -> 12 bytes".
func parseFileStat(line string) FileStat {
	idx := strings.LastIndex(line, " | ")
	fs := FileStat{Path: strings.TrimSpace(line[:idx])}
	rest := strings.Fields(line[idx+3:])
	if len(rest) == 0 {
		return fs
	}
	if rest[0] == "Bin" {
		fs.Binary = true
		return fs
	}
	fs.Changes = atoi(rest[0])
	return fs
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
