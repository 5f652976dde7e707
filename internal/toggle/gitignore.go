package toggle

import (
	"fmt"
	"os/exec"

	lru "github.com/hashicorp/golang-lru/v2"
)

// GitIgnoreChecker answers "is this file excluded from version control"
// by shelling out to `git check-ignore`. Answers are cached: the same
// paths get probed on every toggle and git startup is not free.
//
// Read-only: this never creates or edits .gitignore files.
type GitIgnoreChecker struct {
	root  string
	cache *lru.Cache[string, bool]
}

func NewGitIgnoreChecker(root string) *GitIgnoreChecker {
	// Size covers any realistic project's dotfile count many times over.
	cache, _ := lru.New[string, bool](256)
	return &GitIgnoreChecker{root: root, cache: cache}
}

// Ignored reports whether path is git-ignored. Errors (no repo, no git
// binary) are returned rather than guessed at; callers decide whether
// that means "do not warn".
func (g *GitIgnoreChecker) Ignored(path string) (bool, error) {
	if v, ok := g.cache.Get(path); ok {
		return v, nil
	}

	cmd := exec.Command("git", "-C", g.root, "check-ignore", "-q", "--", path)
	err := cmd.Run()

	switch {
	case err == nil:
		g.cache.Add(path, true)
		return true, nil
	default:
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			// Exit 1 is git's documented "not ignored".
			g.cache.Add(path, false)
			return false, nil
		}
		return false, fmt.Errorf("git check-ignore: %w", err)
	}
}

// Invalidate drops the cached answer for path (e.g. after .gitignore
// itself changes).
func (g *GitIgnoreChecker) Invalidate(path string) {
	g.cache.Remove(path)
}
