package ignore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParsePatterns_BlankAndComments(t *testing.T) {
	m := ParsePatterns([]string{"", "  ", "# comment", "  # indented comment"})
	if len(m.patterns) != 0 {
		t.Fatalf("expected 0 patterns, got %d", len(m.patterns))
	}
}

func TestMatch_LiteralName(t *testing.T) {
	m := ParsePatterns([]string{"Generated.cs"})
	if !m.Match("Generated.cs", false) {
		t.Error("expected match on exact name")
	}
	if !m.Match("src/Generated.cs", false) {
		t.Error("expected match on nested path")
	}
	if m.Match("Generated.css", false) {
		t.Error("unexpected match on different name")
	}
}

func TestMatch_GlobPattern(t *testing.T) {
	m := ParsePatterns([]string{"*.Designer.cs"})
	if !m.Match("Form1.Designer.cs", false) {
		t.Error("expected match on designer file")
	}
	if !m.Match("ui/Main.Designer.cs", false) {
		t.Error("expected match on nested designer file")
	}
	if m.Match("Form1.cs", false) {
		t.Error("unexpected match on plain source file")
	}
}

func TestMatch_DirectoryPattern(t *testing.T) {
	m := ParsePatterns([]string{"build/"})
	if !m.Match("build", true) {
		t.Error("expected match on directory")
	}
	if m.Match("build", false) {
		t.Error("unexpected match on file named build")
	}
	if !m.Match("project/build", true) {
		t.Error("expected match on nested directory")
	}
}

func TestMatch_Negation(t *testing.T) {
	m := ParsePatterns([]string{"*.log", "!important.log"})
	if !m.Match("debug.log", false) {
		t.Error("expected match on debug.log")
	}
	if m.Match("important.log", false) {
		t.Error("unexpected match on negated important.log")
	}
}

func TestMatch_PathWithSlash(t *testing.T) {
	m := ParsePatterns([]string{"tests/fixtures/*"})
	if !m.Match("tests/fixtures/Broken.cs", false) {
		t.Error("expected match on path pattern")
	}
	if m.Match("tests/unit/Broken.cs", false) {
		t.Error("unexpected match on non-matching path")
	}
}

func TestMatch_NilMatcher(t *testing.T) {
	var m *Matcher
	if m.Match("anything", false) {
		t.Error("nil matcher should never match")
	}
}

func TestMatch_EmptyPatterns(t *testing.T) {
	m := ParsePatterns(nil)
	if m.Match("anything", false) {
		t.Error("empty matcher should never match")
	}
}

func TestDefault(t *testing.T) {
	m := Default("*.g.cs")
	if !m.Match("bin", true) || !m.Match("src/obj", true) {
		t.Error("expected build output directories to be excluded")
	}
	if !m.Match("src/Model.g.cs", false) {
		t.Error("expected extra pattern to apply")
	}
	if m.Match("src/Model.cs", false) {
		t.Error("unexpected match on plain source file")
	}
}

func TestExtend(t *testing.T) {
	m := Default().Extend(ParsePatterns([]string{"!bin/"}))
	if m.Match("bin", true) {
		t.Error("expected later negation to re-include bin")
	}
	if !m.Match("obj", true) {
		t.Error("expected obj to stay excluded")
	}
	var empty *Matcher
	if empty.Extend(nil).Match("bin", true) {
		t.Error("extending nil matchers should never match")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".csresolveignore")
	content := "*.log\n# comment\nbuild/\n!important.log\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if len(m.patterns) != 3 {
		t.Fatalf("expected 3 patterns, got %d", len(m.patterns))
	}
	if !m.Match("debug.log", false) {
		t.Error("expected match on .log")
	}
	if m.Match("important.log", false) {
		t.Error("unexpected match on negated pattern")
	}
	if !m.Match("build", true) {
		t.Error("expected match on build dir")
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/.csresolveignore")
	if err == nil {
		t.Error("expected error for missing file")
	}
}
