package driver

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// Source provides module content by slash-separated path.
type Source interface {
	ReadFile(path string) ([]byte, error)
	Exists(path string) bool
}

// DirSource reads files below a directory of the local filesystem.
type DirSource struct {
	Root string
}

func NewDirSource(root string) *DirSource {
	return &DirSource{Root: root}
}

func (s *DirSource) resolve(p string) string {
	native := filepath.FromSlash(p)
	if filepath.IsAbs(native) || s.Root == "" {
		return native
	}
	return filepath.Join(s.Root, native)
}

func (s *DirSource) ReadFile(p string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(p))
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", p, err)
	}
	return data, nil
}

func (s *DirSource) Exists(p string) bool {
	info, err := os.Stat(s.resolve(p))
	return err == nil && !info.IsDir()
}

// GitSource reads files as they were at a revision of a git repository.
type GitSource struct {
	mu       sync.Mutex
	tree     *object.Tree
	revision string
	hash     plumbing.Hash
}

// OpenGitSource opens the repository at dir and pins revision (a branch, tag
// or commit; HEAD when empty).
func OpenGitSource(dir, revision string) (*GitSource, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("loader: open repository %s: %w", dir, err)
	}
	if strings.TrimSpace(revision) == "" {
		revision = "HEAD"
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("loader: resolve revision %s: %w", revision, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("loader: commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("loader: tree of %s: %w", hash, err)
	}
	return &GitSource{tree: tree, revision: revision, hash: *hash}, nil
}

// Commit returns the resolved commit hash.
func (s *GitSource) Commit() string { return s.hash.String() }

func (s *GitSource) ReadFile(p string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := s.tree.File(cleanGitPath(p))
	if err != nil {
		return nil, fmt.Errorf("loader: read %s@%s: %w", p, s.revision, err)
	}
	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("loader: read %s@%s: %w", p, s.revision, err)
	}
	return []byte(content), nil
}

func (s *GitSource) Exists(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.tree.File(cleanGitPath(p))
	return err == nil
}

func cleanGitPath(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// URLSource reads files below a base URL through afs, so file://, mem://
// and cloud storage URLs all work.
type URLSource struct {
	fs      afs.Service
	baseURL string
}

func NewURLSource(fs afs.Service, baseURL string) *URLSource {
	if fs == nil {
		fs = afs.New()
	}
	return &URLSource{fs: fs, baseURL: baseURL}
}

func (s *URLSource) location(p string) string {
	return url.Join(s.baseURL, strings.TrimPrefix(p, "/"))
}

func (s *URLSource) ReadFile(p string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(context.Background(), s.location(p))
	if err != nil {
		return nil, fmt.Errorf("loader: download %s: %w", s.location(p), err)
	}
	return data, nil
}

func (s *URLSource) Exists(p string) bool {
	ok, err := s.fs.Exists(context.Background(), s.location(p))
	return err == nil && ok
}
