package docs

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/taxlots"
	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const (
	bashSetup = "bash setup"
	bashCheck = "bash check"
)

// TestReadmeListsTopics checks that the readme lists exactly the embedded
// topics.
func TestReadmeListsTopics(t *testing.T) {
	readme, err := Get(Readme)
	if err != nil {
		t.Fatal(err)
	}
	var listed []string
	for _, m := range regexp.MustCompile(`(?m)^\*\s+([^:]+):`).FindAllStringSubmatch(readme, -1) {
		listed = append(listed, strings.TrimSpace(m[1]))
	}
	slices.Sort(listed)

	names, err := Names()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(names, listed); diff != "" {
		t.Errorf("readme topics mismatch (-embedded +listed):\n%s", diff)
	}
}

func TestGet(t *testing.T) {
	all, err := Get("*")
	if err != nil {
		t.Fatalf("Get(*) error = %v", err)
	}
	names, _ := Names()
	var each strings.Builder
	for _, name := range names {
		content, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", name, err)
		}
		each.WriteString(content)
	}
	if all != each.String() {
		t.Error("Get(*) differs from every topic concatenated")
	}
	if _, err := Get("average"); err == nil {
		t.Error("Get(average) returned no error")
	}
}

// TestMethodsTopic checks that the methods topic lists every tax method with
// its description, in reporting order.
func TestMethodsTopic(t *testing.T) {
	content, err := Get("methods")
	if err != nil {
		t.Fatal(err)
	}
	source := []byte(content)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(source))

	var rows [][]string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if row, ok := n.(*extension.TableRow); ok && entering {
			var cells []string
			for c := row.FirstChild(); c != nil; c = c.NextSibling() {
				cells = append(cells, strings.TrimSpace(string(c.Text(source))))
			}
			rows = append(rows, cells)
		}
		return ast.WalkContinue, nil
	})

	var want [][]string
	for _, m := range taxlots.Methods() {
		want = append(want, []string{m.String(), m.Description()})
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("methods table mismatch (-want +got):\n%s", diff)
	}
}

// TestCodeBlocks runs the shell examples of every topic against a fresh
// taxer build.
func TestCodeBlocks(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			runBlocks(t, file)
		})
	}
}

// block is a fenced shell block of a topic.
type block struct {
	kind    string
	content string
	line    int
}

// shellBlocks returns the "bash setup" and "bash check" blocks of file.
func shellBlocks(t *testing.T, file string) []block {
	t.Helper()
	source, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	var blocks []block
	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		kind := string(fcb.Info.Segment.Value(source))
		if kind != bashSetup && kind != bashCheck {
			return ast.WalkContinue, nil
		}
		var content strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			content.Write(line.Value(source))
		}
		line := strings.Count(string(source[:fcb.Info.Segment.Start]), "\n") + 1
		blocks = append(blocks, block{kind: kind, content: content.String(), line: line})
		return ast.WalkContinue, nil
	})
	return blocks
}

// runBlocks runs the blocks of file in order. A setup block starts a new
// scenario in a fresh directory; check blocks must exit with status 0.
func runBlocks(t *testing.T, file string) {
	t.Helper()
	blocks := shellBlocks(t, file)
	if len(blocks) == 0 {
		return
	}

	bin := t.TempDir()
	build := exec.Command("go", "build", "-o", filepath.Join(bin, "taxer"), "../taxer/")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("failed to build taxer command: %v\n%s", err, out)
	}
	env := append(os.Environ(), fmt.Sprintf("PATH=%s%c%s", bin, os.PathListSeparator, os.Getenv("PATH")))

	dir := t.TempDir()
	for _, b := range blocks {
		if b.kind == bashSetup {
			dir = t.TempDir()
		}
		cmd := exec.Command("bash", "-c", "set -e; "+b.content)
		cmd.Dir = dir
		cmd.Env = env
		if out, err := cmd.CombinedOutput(); err != nil {
			if b.kind == bashSetup {
				t.Fatalf("%s:%d: %s failed: %v\n%s", file, b.line, b.kind, err, out)
			}
			t.Errorf("%s:%d: %s failed: %v\n%s", file, b.line, b.kind, err, out)
		}
	}
}
