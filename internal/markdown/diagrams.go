package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// defaultDiagramLanguages are the fence info strings recognised as diagram
// definitions when the caller does not configure their own set.
var defaultDiagramLanguages = []string{"mermaid", "flowchart", "sequence"}

func diagramLanguages(names []string) []string {
	if len(names) == 0 {
		return append([]string(nil), defaultDiagramLanguages...)
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		out = append(out, key)
	}
	if len(out) == 0 {
		return append([]string(nil), defaultDiagramLanguages...)
	}
	return out
}

// DiagramExtension rewrites fenced code blocks whose language matches a
// diagram definition into passthrough containers. The definition text is
// escaped and re-emitted verbatim; interpreting it is left to the client-side
// viewer loaded by the page.
type DiagramExtension struct {
	Languages []string
}

// Extend registers the AST transformer and the HTML renderer with the engine.
func (e *DiagramExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&diagramTransformer{languages: languageSet(e.Languages)}, 200),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&diagramHTMLRenderer{}, 200),
	))
}

func languageSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range diagramLanguages(names) {
		set[name] = struct{}{}
	}
	return set
}

// kindDiagram identifies diagram container nodes within the goldmark AST.
var kindDiagram = gast.NewNodeKind("Diagram")

// diagramNode replaces a fenced code block that holds a diagram definition.
type diagramNode struct {
	gast.BaseBlock

	DiagramKind interfaces.DiagramKind
	Source      []byte
}

func (n *diagramNode) Kind() gast.NodeKind {
	return kindDiagram
}

func (n *diagramNode) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{
		"DiagramKind": string(n.DiagramKind),
	}, nil)
}

// diagramTransformer swaps matching fenced code blocks for diagram nodes. The
// swap happens at parse time so both rendering and inspection observe the
// same tree.
type diagramTransformer struct {
	languages map[string]struct{}
}

func (t *diagramTransformer) Transform(doc *gast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var matches []*gast.FencedCodeBlock
	_ = gast.Walk(doc, func(node gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		block, ok := node.(*gast.FencedCodeBlock)
		if !ok {
			return gast.WalkContinue, nil
		}
		language := strings.ToLower(string(block.Language(source)))
		if _, ok := t.languages[language]; ok {
			matches = append(matches, block)
		}
		return gast.WalkContinue, nil
	})

	for _, block := range matches {
		parent := block.Parent()
		if parent == nil {
			continue
		}

		definition := blockText(block, source)
		replacement := &diagramNode{
			DiagramKind: classifyDiagram(strings.ToLower(string(block.Language(source))), definition),
			Source:      definition,
		}
		parent.ReplaceChild(parent, block, replacement)
	}
}

func blockText(block *gast.FencedCodeBlock, source []byte) []byte {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(source))
	}
	return buf.Bytes()
}

// classifyDiagram maps a fence language, falling back to the first token of
// the definition, onto a diagram kind. The definition itself is never parsed
// beyond that first token.
func classifyDiagram(language string, definition []byte) interfaces.DiagramKind {
	switch language {
	case "flowchart":
		return interfaces.DiagramFlowchart
	case "sequence":
		return interfaces.DiagramSequence
	}

	switch firstToken(definition) {
	case "sequenceDiagram":
		return interfaces.DiagramSequence
	case "flowchart", "graph":
		return interfaces.DiagramFlowchart
	}
	return interfaces.DiagramGeneric
}

func firstToken(definition []byte) string {
	for _, line := range strings.Split(string(definition), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if strings.HasPrefix(fields[0], "%%") {
			continue
		}
		return fields[0]
	}
	return ""
}

// diagramHTMLRenderer emits diagram nodes as <div class="mermaid"> containers,
// the convention the client-side viewer scans for. The definition is HTML
// escaped; the browser restores it through textContent before handing it to
// the viewer.
type diagramHTMLRenderer struct{}

func (r *diagramHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(kindDiagram, r.renderDiagram)
}

func (r *diagramHTMLRenderer) renderDiagram(w util.BufWriter, _ []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		return gast.WalkContinue, nil
	}

	diagram, ok := node.(*diagramNode)
	if !ok {
		return gast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<div class="mermaid" data-diagram="`)
	_, _ = w.WriteString(string(diagram.DiagramKind))
	_, _ = w.WriteString("\">\n")
	_, _ = w.Write(util.EscapeHTML(diagram.Source))
	if len(diagram.Source) > 0 && diagram.Source[len(diagram.Source)-1] != '\n' {
		_ = w.WriteByte('\n')
	}
	_, _ = w.WriteString("</div>\n")
	return gast.WalkContinue, nil
}
