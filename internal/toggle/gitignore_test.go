package toggle

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	root := t.TempDir()
	if out, err := exec.Command("git", "-C", root, "init", "-q").CombinedOutput(); err != nil {
		t.Skipf("git init failed: %v (%s)", err, out)
	}
	return root
}

func TestGitIgnoreChecker(t *testing.T) {
	root := initRepo(t)
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte(".env\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	g := NewGitIgnoreChecker(root)

	ignored, err := g.Ignored(filepath.Join(root, ".env"))
	if err != nil {
		t.Fatalf("Ignored(.env): %v", err)
	}
	if !ignored {
		t.Error(".env must be ignored per .gitignore")
	}

	tracked, err := g.Ignored(filepath.Join(root, "main.go"))
	if err != nil {
		t.Fatalf("Ignored(main.go): %v", err)
	}
	if tracked {
		t.Error("main.go must not be ignored")
	}

	// Cached answer survives a .gitignore rewrite until invalidated.
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if ignored, _ := g.Ignored(filepath.Join(root, ".env")); !ignored {
		t.Error("answer must come from the cache")
	}
	g.Invalidate(filepath.Join(root, ".env"))
	if ignored, _ := g.Ignored(filepath.Join(root, ".env")); ignored {
		t.Error("invalidation must force a fresh probe")
	}
}

func TestGitIgnoreCheckerOutsideRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	g := NewGitIgnoreChecker(dir)
	if _, err := g.Ignored(filepath.Join(dir, ".env")); err == nil {
		t.Error("a directory without a repository must report an error")
	}
}
