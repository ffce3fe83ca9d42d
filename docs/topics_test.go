package docs

import (
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

func TestAll(t *testing.T) {
	topics, err := All()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.Join(topics, ","), "badges,ledger,returns"; got != want {
		t.Errorf("All() = %q, want %q", got, want)
	}
}

func TestTopic(t *testing.T) {
	if _, err := Topic("nope"); err == nil {
		t.Errorf("Topic(nope) expected an error")
	}
	all, err := Topic("*")
	if err != nil {
		t.Fatal(err)
	}
	for _, title := range []string{"# Ledger files", "# Returns", "# Weekly badges"} {
		if !strings.Contains(all, title) {
			t.Errorf("Topic(*) is missing %q", title)
		}
	}
	if strings.Contains(all, "# tkr\n") {
		t.Errorf("Topic(*) includes the readme")
	}
}

// TestTables checks that every table of every topic is well formed.
func TestTables(t *testing.T) {
	topics, err := All()
	if err != nil {
		t.Fatal(err)
	}
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	for _, topic := range slices.Concat([]string{"readme"}, topics) {
		t.Run(topic, func(t *testing.T) {
			content, err := Topic(topic)
			if err != nil {
				t.Fatal(err)
			}
			lines := 0
			for _, line := range strings.Split(content, "\n") {
				if strings.HasPrefix(line, "| ") {
					lines++
				}
			}
			rows := 0
			root := md.Parser().Parse(text.NewReader([]byte(content)))
			ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
				if entering && (n.Kind() == extast.KindTableRow || n.Kind() == extast.KindTableHeader) {
					rows++
				}
				return ast.WalkContinue, nil
			})
			if rows != lines {
				t.Errorf("%d table lines parsed as %d rows", lines, rows)
			}
		})
	}
}
