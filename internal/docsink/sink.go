// Package docsink persists approved decisions to the document store as
// markdown files via the GitHub contents API. Writes are conditional on
// the last-read file SHA, so a concurrent writer is rejected by the
// backend instead of being silently overwritten.
package docsink

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/fyrsmithlabs/minuted/internal/logging"
	"github.com/fyrsmithlabs/minuted/internal/meeting"
	"github.com/fyrsmithlabs/minuted/internal/project"
)

// contentsService is the narrow slice of the GitHub API the sink uses.
// *github.RepositoriesService satisfies it; tests substitute a mock.
type contentsService interface {
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
	CreateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
	UpdateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
}

// Sink commits decisions to a project's document repository.
type Sink struct {
	contents contentsService
	resolver project.Resolver
	logger   *logging.Logger
}

// NewSink creates a Sink from an authenticated GitHub token.
func NewSink(ctx context.Context, token string, resolver project.Resolver, logger *logging.Logger) (*Sink, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token not set")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))
	return &Sink{
		contents: client.Repositories,
		resolver: resolver,
		logger:   logger,
	}, nil
}

// newSinkWithContents wires an arbitrary contents implementation. Used
// by tests.
func newSinkWithContents(contents contentsService, resolver project.Resolver, logger *logging.Logger) *Sink {
	return &Sink{contents: contents, resolver: resolver, logger: logger}
}

// CommitDecisions persists a batch of decisions, one file each, under
// minutes/decisions/<date>-<slug>.md. Each decision is attempted
// independently; one failure never blocks the rest. An unresolved
// document destination fails the whole batch with zero attempts.
func (s *Sink) CommitDecisions(ctx context.Context, decisions []meeting.Decision, projectID, meetingDate string) meeting.CommitOutcome {
	outcome := meeting.CommitOutcome{Success: true}
	if len(decisions) == 0 {
		return outcome
	}

	dest, ok := s.resolver.ResolveDocDestination(projectID)
	if !ok {
		outcome.Success = false
		outcome.Failed = len(decisions)
		outcome.Errors = append(outcome.Errors, meeting.ItemError{
			Subject: projectID,
			Reason:  "no document destination configured for project",
		})
		return outcome
	}

	for _, d := range decisions {
		if err := s.commitOne(ctx, dest, d, meetingDate); err != nil {
			s.logger.Warn(ctx, "decision commit failed",
				zap.String("project_id", projectID),
				zap.Error(err),
			)
			outcome.AddError(d.Content, err.Error())
			continue
		}
		outcome.Committed++
	}
	return outcome
}

// commitOne reads the current version of the target file, then writes
// conditionally on the SHA it read. A 404 on read means the file is
// new; any other read failure is fatal for this one decision.
func (s *Sink) commitOne(ctx context.Context, dest project.DocDestination, d meeting.Decision, meetingDate string) error {
	path := DecisionPath(d, meetingDate)

	var sha *string
	file, _, resp, err := s.contents.GetContents(ctx, dest.Owner, dest.Repo, path, &github.RepositoryContentGetOptions{Ref: dest.Branch})
	switch {
	case err == nil && file != nil:
		sha = file.SHA
	case resp != nil && resp.StatusCode == http.StatusNotFound:
		// New file: write without a version token.
	case err != nil:
		return fmt.Errorf("reading current version: %w", err)
	}

	opts := &github.RepositoryContentFileOptions{
		Content: []byte(renderDecision(d, meetingDate)),
		Branch:  github.String(dest.Branch),
		SHA:     sha,
	}

	if sha != nil {
		opts.Message = github.String(fmt.Sprintf("Update decision: %s", meeting.Slugify(d.Content)))
		if _, _, err := s.contents.UpdateFile(ctx, dest.Owner, dest.Repo, path, opts); err != nil {
			return fmt.Errorf("updating %s: %w", path, err)
		}
		return nil
	}

	opts.Message = github.String(fmt.Sprintf("Add decision: %s", meeting.Slugify(d.Content)))
	if _, _, err := s.contents.CreateFile(ctx, dest.Owner, dest.Repo, path, opts); err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return nil
}

// DecisionPath derives the repository path for a decision. The slug is
// not unique on its own; pairing it with the meeting date is what keeps
// file names distinct, and same-day collisions fall through to the
// conditional write.
func DecisionPath(d meeting.Decision, meetingDate string) string {
	return fmt.Sprintf("minutes/decisions/%s-%s.md", meetingDate, meeting.Slugify(d.Content))
}

// renderDecision produces the markdown document body.
func renderDecision(d meeting.Decision, meetingDate string) string {
	var b strings.Builder
	b.WriteString("# 決定事項\n\n")
	b.WriteString(d.Content)
	b.WriteString("\n")
	if d.Context != "" {
		b.WriteString("\n## 背景\n\n")
		b.WriteString(d.Context)
		b.WriteString("\n")
	}
	b.WriteString("\n---\n")
	b.WriteString(fmt.Sprintf("- 会議日: %s\n", meetingDate))
	b.WriteString("- 記録: minuted\n")
	return b.String()
}
