package build

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// revisionLength is how many hex digits of the commit hash are kept.
const revisionLength = 12

// Revision returns the abbreviated HEAD commit of the git repository
// containing dir.
func Revision(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening repository at %s: %w", dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	return head.Hash().String()[:revisionLength], nil
}

// banner returns the header lines of a bundle.
func banner(name, revision string) []string {
	line := "// " + name
	if revision != "" {
		line += " @ " + revision
	}
	return []string{line, "// generated by stjs, do not edit"}
}
