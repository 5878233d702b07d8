package git

import (
	"context"
	"strings"
)

// CommitInfo describes a single commit in a range
type CommitInfo struct {
	SHA   string
	Title string
	Body  string
}

// Message returns the full commit message (title plus body)
func (c CommitInfo) Message() string {
	if c.Body == "" {
		return c.Title
	}
	return c.Title + "\n\n" + c.Body
}

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// CommitTitle returns the subject line of the commit at ref
func (r *Repo) CommitTitle(ctx context.Context, ref string) (string, error) {
	return r.runner.Run(ctx, "log", "-1", "--format=%s", ref)
}

// CommitsInRange returns the commits reachable from head but not from base,
// oldest first.
func (r *Repo) CommitsInRange(ctx context.Context, base, head string) ([]CommitInfo, error) {
	out, err := r.runner.Run(ctx, "log", "--reverse",
		"--format=%H"+fieldSep+"%s"+fieldSep+"%b"+recordSep,
		base+".."+head)
	if err != nil {
		return nil, err
	}

	var commits []CommitInfo
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, fieldSep, 3)
		if len(fields) != 3 {
			continue
		}
		commits = append(commits, CommitInfo{
			SHA:   fields[0],
			Title: fields[1],
			Body:  strings.TrimSpace(fields[2]),
		})
	}
	return commits, nil
}
