package git

import "context"

// AddNote attaches free-text annotation to a commit, replacing any existing
// note. Notes survive amendments to other commits and are the durable record
// of PR and workflow state per sha.
func (r *Repo) AddNote(ctx context.Context, sha, text string) error {
	_, err := r.runner.Run(ctx, "notes", "add", "-f", "-m", text, sha)
	return err
}

// ShowNote reads the annotation attached to a commit. Returns an empty string
// when the commit has no note.
func (r *Repo) ShowNote(ctx context.Context, sha string) (string, error) {
	out, err := r.runner.Run(ctx, "notes", "show", sha)
	if err != nil {
		return "", nil
	}
	return out, nil
}
