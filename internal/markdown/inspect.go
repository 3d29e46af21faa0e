package markdown

import (
	"path"
	"strings"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// inspectMarkdown parses the source once and reports both the embedded
// diagram fragments and any local asset references. The same engine
// configuration used for rendering drives the parse so inspection and output
// stay in sync.
func inspectMarkdown(markdown []byte, opts interfaces.ParseOptions) ([]interfaces.Diagram, []string) {
	engine := newGoldmarkEngine(opts)
	root := engine.Parser().Parse(text.NewReader(markdown))
	return collectDiagrams(root), collectAssetRefs(root)
}

func collectDiagrams(root gast.Node) []interfaces.Diagram {
	var diagrams []interfaces.Diagram

	_ = gast.Walk(root, func(node gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		diagram, ok := node.(*diagramNode)
		if !ok {
			return gast.WalkContinue, nil
		}
		diagrams = append(diagrams, interfaces.Diagram{
			Index:  len(diagrams),
			Kind:   diagram.DiagramKind,
			Source: string(diagram.Source),
		})
		return gast.WalkContinue, nil
	})

	return diagrams
}

// assetLinkExtensions limits which plain links count as asset references.
// Images always count; links only when they point at a downloadable file
// rather than another page.
var assetLinkExtensions = map[string]struct{}{
	".svg":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
	".pdf":  {},
}

func collectAssetRefs(root gast.Node) []string {
	var refs []string
	seen := map[string]struct{}{}

	record := func(dest string) {
		dest = strings.TrimSpace(dest)
		if dest == "" || !isLocalRef(dest) {
			return
		}
		if _, ok := seen[dest]; ok {
			return
		}
		seen[dest] = struct{}{}
		refs = append(refs, dest)
	}

	_ = gast.Walk(root, func(node gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		switch typed := node.(type) {
		case *gast.Image:
			record(string(typed.Destination))
		case *gast.Link:
			dest := string(typed.Destination)
			if _, ok := assetLinkExtensions[strings.ToLower(path.Ext(stripQuery(dest)))]; ok {
				record(dest)
			}
		}
		return gast.WalkContinue, nil
	})

	return refs
}

func isLocalRef(dest string) bool {
	if strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "//") {
		return false
	}
	if strings.Contains(dest, "://") {
		return false
	}
	for _, scheme := range []string{"mailto:", "tel:", "data:"} {
		if strings.HasPrefix(dest, scheme) {
			return false
		}
	}
	return true
}

func stripQuery(dest string) string {
	if idx := strings.IndexAny(dest, "?#"); idx >= 0 {
		return dest[:idx]
	}
	return dest
}
