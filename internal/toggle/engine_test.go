package toggle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dotflip/internal/cycle"
	"dotflip/internal/index"
	"dotflip/internal/model"
)

func testTable() *cycle.Table {
	return cycle.NewTable([][]string{
		{"true", "false"},
		{"on", "off"},
		{"1", "0"},
	})
}

// notIgnored makes every path trigger the confirmation stage.
type notIgnored struct{}

func (notIgnored) Ignored(string) (bool, error) { return false, nil }

// allIgnored skips the confirmation stage for every path.
type allIgnored struct{}

func (allIgnored) Ignored(string) (bool, error) { return true, nil }

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readBack(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestToggleEditsOnlyTheValueSpan(t *testing.T) {
	t.Parallel()

	path := writeEnv(t, "DEBUG=true\n# comment\nPORT=8080\n")
	e := NewEngine(filepath.Dir(path), testTable(), nil, nil)

	out := e.ToggleSilently(path, 0)
	if !out.Success {
		t.Fatalf("toggle rejected: %s", out.Message)
	}
	if out.NewValue != "false" {
		t.Errorf("NewValue = %q, want false", out.NewValue)
	}
	if got, want := readBack(t, path), "DEBUG=false\n# comment\nPORT=8080\n"; got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
	if out.Diff == "" {
		t.Error("successful toggle must carry a diff")
	}
	if !strings.Contains(out.Message, "DEBUG") {
		t.Errorf("message %q must name the key", out.Message)
	}
}

func TestToggleNoEntryAtLine(t *testing.T) {
	t.Parallel()

	content := "DEBUG=true\n# comment\n"
	path := writeEnv(t, content)
	e := NewEngine(filepath.Dir(path), testTable(), nil, nil)

	out := e.ToggleSilently(path, 1)
	if out.Success || out.Kind != model.ErrNoEntryAtLine {
		t.Fatalf("outcome = %+v, want NoEntryAtLine rejection", out)
	}
	if readBack(t, path) != content {
		t.Error("a rejected toggle must not modify the file")
	}
}

func TestToggleNotToggleable(t *testing.T) {
	t.Parallel()

	content := "PORT=8080\n"
	path := writeEnv(t, content)
	e := NewEngine(filepath.Dir(path), testTable(), nil, nil)

	out := e.ToggleSilently(path, 0)
	if out.Success || out.Kind != model.ErrNotToggleable {
		t.Fatalf("outcome = %+v, want NotToggleable rejection", out)
	}
	if readBack(t, path) != content {
		t.Error("a rejected toggle must not modify the file")
	}
}

func TestToggleMissingFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	e := NewEngine(root, testTable(), nil, nil)

	out := e.ToggleSilently(filepath.Join(root, ".env"), 0)
	if out.Success || out.Kind != model.ErrParseIO {
		t.Fatalf("outcome = %+v, want ParseIO rejection", out)
	}
}

func TestTogglePreservesQuoteStyle(t *testing.T) {
	t.Parallel()

	path := writeEnv(t, `FLAG="on"`+"\nOTHER='true'\n")
	e := NewEngine(filepath.Dir(path), testTable(), nil, nil)

	if out := e.ToggleSilently(path, 0); !out.Success {
		t.Fatalf("line 0: %s", out.Message)
	}
	if out := e.ToggleSilently(path, 1); !out.Success {
		t.Fatalf("line 1: %s", out.Message)
	}
	if got, want := readBack(t, path), `FLAG="off"`+"\nOTHER='false'\n"; got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestToggleCRLFFileSurvivesByteExact(t *testing.T) {
	t.Parallel()

	path := writeEnv(t, "A=on\r\nB=1\r\n")
	e := NewEngine(filepath.Dir(path), testTable(), nil, nil)

	if out := e.ToggleSilently(path, 0); !out.Success {
		t.Fatalf("toggle rejected: %s", out.Message)
	}
	if got, want := readBack(t, path), "A=off\r\nB=1\r\n"; got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestTogglePreservesSurroundingWhitespace(t *testing.T) {
	t.Parallel()

	path := writeEnv(t, "  FLAG = true   \nNEXT=1\n")
	e := NewEngine(filepath.Dir(path), testTable(), nil, nil)

	if out := e.ToggleSilently(path, 0); !out.Success {
		t.Fatalf("toggle rejected: %s", out.Message)
	}
	if got, want := readBack(t, path), "  FLAG = false   \nNEXT=1\n"; got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestToggleIsInvolutionOnTwoCycles(t *testing.T) {
	t.Parallel()

	content := "DEBUG=true\n"
	path := writeEnv(t, content)
	e := NewEngine(filepath.Dir(path), testTable(), nil, nil)

	e.ToggleSilently(path, 0)
	e.ToggleSilently(path, 0)
	if readBack(t, path) != content {
		t.Errorf("two toggles of a two-member cycle must restore the file, got %q", readBack(t, path))
	}
}

func TestToggleRefreshesIndex(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, ".env")
	if err := os.WriteFile(path, []byte("DEBUG=true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ix := index.New(root, testTable(), []string{"**/.env"})
	defer ix.Close()
	if err := ix.RefreshAll(); err != nil {
		t.Fatal(err)
	}

	e := NewEngine(root, testTable(), nil, ix)
	if out := e.ToggleSilently(path, 0); !out.Success {
		t.Fatalf("toggle rejected: %s", out.Message)
	}

	pf, ok := ix.Get(path)
	if !ok {
		t.Fatal("file vanished from index")
	}
	if pf.Entries[0].Value != "false" {
		t.Errorf("index value = %q, want false", pf.Entries[0].Value)
	}
}

func TestToggleEditsCurrentContentNotCachedOffsets(t *testing.T) {
	t.Parallel()

	// The engine re-parses at toggle time, so an external edit between
	// indexing and toggling lands on the right span.
	path := writeEnv(t, "DEBUG=true\n")
	e := NewEngine(filepath.Dir(path), testTable(), nil, nil)

	if err := os.WriteFile(path, []byte("PREFIX_DEBUG=on\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := e.ToggleSilently(path, 0)
	if !out.Success {
		t.Fatalf("toggle rejected: %s", out.Message)
	}
	if got, want := readBack(t, path), "PREFIX_DEBUG=off\n"; got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestConfirmationDeclineCancelsBeforeAnyEdit(t *testing.T) {
	t.Parallel()

	content := "DEBUG=true\n"
	path := writeEnv(t, content)
	e := NewEngine(filepath.Dir(path), testTable(), notIgnored{}, nil)

	asked := 0
	e.SetConfirmer(func(string) bool { asked++; return false })

	out := e.ToggleSilently(path, 0)
	if out.Success || out.Kind != model.ErrUserCancelled {
		t.Fatalf("outcome = %+v, want UserCancelled", out)
	}
	if asked != 1 {
		t.Errorf("confirmer called %d times, want 1", asked)
	}
	if readBack(t, path) != content {
		t.Error("a cancelled toggle must leave the file untouched")
	}
}

func TestConfirmationAcceptedIsRememberedForSession(t *testing.T) {
	t.Parallel()

	path := writeEnv(t, "DEBUG=true\n")
	e := NewEngine(filepath.Dir(path), testTable(), notIgnored{}, nil)

	asked := 0
	e.SetConfirmer(func(string) bool { asked++; return true })

	if out := e.ToggleSilently(path, 0); !out.Success {
		t.Fatalf("first toggle: %s", out.Message)
	}
	if out := e.ToggleSilently(path, 0); !out.Success {
		t.Fatalf("second toggle: %s", out.Message)
	}
	if asked != 1 {
		t.Errorf("confirmer called %d times, want 1 (acknowledgement persists)", asked)
	}
}

func TestNoConfirmerMeansCancel(t *testing.T) {
	t.Parallel()

	path := writeEnv(t, "DEBUG=true\n")
	e := NewEngine(filepath.Dir(path), testTable(), notIgnored{}, nil)

	out := e.ToggleSilently(path, 0)
	if out.Success || out.Kind != model.ErrUserCancelled {
		t.Fatalf("outcome = %+v, want UserCancelled when nothing can ask", out)
	}
}

func TestNeedsAckAndAcknowledge(t *testing.T) {
	t.Parallel()

	path := writeEnv(t, "DEBUG=true\n")

	e := NewEngine(filepath.Dir(path), testTable(), notIgnored{}, nil)
	if !e.NeedsAck(path) {
		t.Fatal("not-ignored file must need an acknowledgement")
	}
	e.Acknowledge(path)
	if e.NeedsAck(path) {
		t.Error("acknowledged path must not ask again")
	}
	if out := e.ToggleSilently(path, 0); !out.Success {
		t.Errorf("toggle after Acknowledge rejected: %s", out.Message)
	}

	ignored := NewEngine(filepath.Dir(path), testTable(), allIgnored{}, nil)
	if ignored.NeedsAck(path) {
		t.Error("git-ignored file must not need an acknowledgement")
	}
}

func TestToggleReveals(t *testing.T) {
	t.Parallel()

	path := writeEnv(t, "DEBUG=true\n")
	e := NewEngine(filepath.Dir(path), testTable(), nil, nil)

	var gotPath string
	gotLine := -1
	out := e.Toggle(path, 0, func(p string, l int) { gotPath, gotLine = p, l })
	if !out.Success {
		t.Fatalf("toggle rejected: %s", out.Message)
	}
	if gotPath != path || gotLine != 0 {
		t.Errorf("revealer saw (%q, %d)", gotPath, gotLine)
	}

	// Rejections never reveal.
	gotLine = -1
	e.Toggle(path, 99, func(string, int) { gotLine = 99 })
	if gotLine != -1 {
		t.Error("revealer must not run on a rejection")
	}
}

func TestSpliceValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		line       string
		start, end int
		repl       string
		want       string
		wantErr    bool
	}{
		{"plain", "DEBUG=true", 6, 10, "false", "DEBUG=false", false},
		{"keeps_cr", "DEBUG=true\r", 6, 10, "false", "DEBUG=false\r", false},
		{"empty_span", "EMPTY=", 6, 6, "x", "EMPTY=x", false},
		{"out_of_range", "A=1", 2, 12, "0", "", true},
		{"inverted", "A=1", 3, 2, "0", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := spliceValue(tt.line, tt.start, tt.end, tt.repl)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteAtomicPreservesMode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DEBUG=true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := writeAtomic(path, "DEBUG=false\n"); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}
