package git

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotRepository is returned when a directory is not inside a git work tree
var ErrNotRepository = errors.New("not a git repository")

// RealClient implements Client using go-git
type RealClient struct{}

// NewClient creates a new RealClient
func NewClient() *RealClient {
	return &RealClient{}
}

// PlainOpenWithOptions calls git.PlainOpenWithOptions
func (c *RealClient) PlainOpenWithOptions(path string, o *git.PlainOpenOptions) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, o)
}

// RepoInfo describes the repository that holds a source directory
type RepoInfo struct {
	// Root is the work tree root
	Root string
	// Remote is the origin URL as configured
	Remote string
	// Host is the web host of the origin, e.g. https://github.com
	Host string
	// Ref is the origin repository as owner/repo
	Ref    string
	Head   string
	Branch string
}

// Inspect opens the repository containing dir, searching parent
// directories, and reads its origin remote and HEAD. Missing remotes or
// an unborn HEAD leave the corresponding fields empty.
func Inspect(client Client, dir string) (*RepoInfo, error) {
	repo, err := client.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	info := &RepoInfo{}
	if wt, err := repo.Worktree(); err == nil {
		info.Root = wt.Filesystem.Root()
	}

	remote, err := repo.Remote(git.DefaultRemoteName)
	switch {
	case err == nil:
		if urls := remote.Config().URLs; len(urls) > 0 {
			info.Remote = urls[0]
			info.Host, info.Ref, _ = ParseRemote(info.Remote)
		}
	case !errors.Is(err, git.ErrRemoteNotFound):
		return nil, fmt.Errorf("failed to read origin remote: %w", err)
	}

	head, err := repo.Head()
	switch {
	case err == nil:
		info.Head = head.Hash().String()
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		}
	case !errors.Is(err, plumbing.ErrReferenceNotFound):
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}

	return info, nil
}

// ParseRemote extracts the web host and owner/repo from a remote URL.
// It understands https, ssh and scp-like ("git@host:owner/repo") forms.
func ParseRemote(remote string) (host, ref string, ok bool) {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return "", "", false
	}

	var hostname, repoPath string
	if !strings.Contains(remote, "://") {
		// scp-like syntax
		userHost, p, found := strings.Cut(remote, ":")
		if !found {
			return "", "", false
		}
		if i := strings.LastIndex(userHost, "@"); i >= 0 {
			userHost = userHost[i+1:]
		}
		hostname, repoPath = userHost, p
	} else {
		u, err := url.Parse(remote)
		if err != nil || u.Hostname() == "" {
			return "", "", false
		}
		hostname, repoPath = u.Hostname(), u.Path
	}

	repoPath = strings.TrimSuffix(strings.Trim(repoPath, "/"), ".git")
	parts := strings.Split(repoPath, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return "https://" + hostname, parts[0] + "/" + parts[1], true
}
