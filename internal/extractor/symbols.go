package extractor

import (
	"context"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// identifier-ish node types tree-sitter grammars commonly use for a
// declaration's name child.
var nameNodeTypes = []string{"identifier", "type_identifier", "field_identifier", "property_identifier"}

// ExtractSymbols produces the named declarations in content. It attempts a
// structural parse via tree-sitter first; on failure or absence of a
// grammar for path's extension it falls back to the regex table. At most
// one symbol is recorded per line.
func ExtractSymbols(ctx context.Context, content []byte, path string) []Symbol {
	ext := strings.ToLower(filepath.Ext(path))

	if config, ok := DefaultRegistry().GetByExtension(ext); ok {
		if syms, ok := extractSymbolsStructural(ctx, content, config); ok {
			return syms
		}
	}

	return extractSymbolsRegex(content, ext)
}

func extractSymbolsStructural(ctx context.Context, content []byte, config *LanguageConfig) ([]Symbol, bool) {
	if _, ok := DefaultRegistry().GetTreeSitterLanguage(config.Name); !ok {
		return nil, false
	}

	parser := NewParserWithRegistry(DefaultRegistry())
	defer parser.Close()

	tree, err := parser.Parse(ctx, content, config.Name)
	if err != nil || tree == nil || tree.Root == nil {
		return nil, false
	}

	byLine := make(map[int]Symbol)
	tree.Root.Walk(func(n *Node) bool {
		if kind, ok := symbolKindFor(n.Type, config); ok {
			if name := findDeclName(n, content); name != "" {
				line := int(n.StartPoint.Row) + 1
				if _, exists := byLine[line]; !exists {
					byLine[line] = Symbol{Name: name, Kind: kind, Line: line}
				}
			}
		}
		return true
	})

	return symbolsSortedByLine(byLine), true
}

// symbolKindFor maps a node's grammar type to a SymbolKind, most-specific
// first: interface, class, type, method, function.
func symbolKindFor(nodeType string, config *LanguageConfig) (SymbolKind, bool) {
	if containsStr(config.InterfaceTypes, nodeType) {
		return KindInterface, true
	}
	if containsStr(config.ClassTypes, nodeType) {
		return KindClass, true
	}
	if containsStr(config.TypeDefTypes, nodeType) {
		return KindType, true
	}
	if containsStr(config.MethodTypes, nodeType) {
		return KindFunction, true
	}
	if containsStr(config.FunctionTypes, nodeType) {
		return KindFunction, true
	}
	return "", false
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func findDeclName(n *Node, source []byte) string {
	for _, child := range n.Children {
		if containsStr(nameNodeTypes, child.Type) {
			return child.GetContent(source)
		}
	}
	return ""
}

func symbolsSortedByLine(byLine map[int]Symbol) []Symbol {
	out := make([]Symbol, 0, len(byLine))
	for _, s := range byLine {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

// regexSymbolPattern is one candidate pattern for a language's regex
// fallback table. Kind is fixed per pattern (Go's RE2 has no named-group
// introspection the way Python's re does), and patterns are ordered
// specific-first so the first match on a line wins.
type regexSymbolPattern struct {
	re   *regexp.Regexp
	kind SymbolKind
}

var regexSymbolTable = map[string][]regexSymbolPattern{
	".py": {
		{regexp.MustCompile(`^\s*class\s+(\w+)[\s:(]`), KindClass},
		{regexp.MustCompile(`^\s*(?:async\s+)?def\s+(\w+)\s*\(`), KindFunction},
	},
	".js": {
		{regexp.MustCompile(`\bclass\s+(\w+)[\s{]`), KindClass},
		{regexp.MustCompile(`\bfunction\s+(\w+)\s*\(`), KindFunction},
		{regexp.MustCompile(`\bconst\s+(\w+)\s*=\s*(?:async\s*)?\(`), KindFunction},
	},
	".jsx": {
		{regexp.MustCompile(`\bclass\s+(\w+)[\s{]`), KindClass},
		{regexp.MustCompile(`\bfunction\s+(\w+)\s*\(`), KindFunction},
		{regexp.MustCompile(`\bconst\s+(\w+)\s*=\s*(?:async\s*)?\(`), KindFunction},
	},
	".ts": {
		{regexp.MustCompile(`\binterface\s+(\w+)[\s{<]`), KindInterface},
		{regexp.MustCompile(`\btype\s+(\w+)\s*=`), KindType},
		{regexp.MustCompile(`\bclass\s+(\w+)[\s{<]`), KindClass},
		{regexp.MustCompile(`\bfunction\s+(\w+)\s*[(<]`), KindFunction},
		{regexp.MustCompile(`\bconst\s+(\w+)\s*=\s*(?:async\s*)?\(`), KindFunction},
	},
	".tsx": {
		{regexp.MustCompile(`\binterface\s+(\w+)[\s{<]`), KindInterface},
		{regexp.MustCompile(`\bclass\s+(\w+)[\s{<]`), KindClass},
		{regexp.MustCompile(`\bfunction\s+(\w+)\s*[(<]`), KindFunction},
		{regexp.MustCompile(`\bconst\s+(\w+)\s*=\s*(?:async\s*)?\(`), KindFunction},
	},
	".go": {
		{regexp.MustCompile(`^type\s+(\w+)\s+interface`), KindInterface},
		{regexp.MustCompile(`^type\s+(\w+)\s+struct`), KindClass},
		{regexp.MustCompile(`^func\s+\(\w+\s+\*?\w+\)\s+(\w+)\s*\(`), KindFunction},
		{regexp.MustCompile(`^func\s+(\w+)\s*\(`), KindFunction},
	},
	".java": {
		{regexp.MustCompile(`\binterface\s+(\w+)[\s{<]`), KindInterface},
		{regexp.MustCompile(`\benum\s+(\w+)[\s{]`), KindClass},
		{regexp.MustCompile(`\brecord\s+(\w+)\s*[\s({]`), KindClass},
		{regexp.MustCompile(`\bclass\s+(\w+)[\s{<]`), KindClass},
		{regexp.MustCompile(`(?:public|private|protected|static|final|\s)+[\w<>\[\]]+\s+(\w+)\s*\(`), KindFunction},
	},
	".cs": {
		{regexp.MustCompile(`\binterface\s+(\w+)[\s:{<]`), KindInterface},
		{regexp.MustCompile(`\benum\s+(\w+)[\s{]`), KindClass},
		{regexp.MustCompile(`\brecord\s+(\w+)[\s({]`), KindClass},
		{regexp.MustCompile(`\bclass\s+(\w+)[\s:{<]`), KindClass},
		{regexp.MustCompile(`\bdelegate\s+[\w<>\[\]]+\s+(\w+)\s*\(`), KindFunction},
		{regexp.MustCompile(`(?:public|private|protected|internal|static|virtual|override|abstract|\s)+[\w<>\[\]?]+\s+(\w+)\s*\(`), KindFunction},
	},
	".rs": {
		{regexp.MustCompile(`^pub\s+trait\s+(\w+)[\s{<]`), KindInterface},
		{regexp.MustCompile(`^pub\s+enum\s+(\w+)[\s{<]`), KindClass},
		{regexp.MustCompile(`^pub\s+struct\s+(\w+)[\s{<]`), KindClass},
		{regexp.MustCompile(`^struct\s+(\w+)[\s{<]`), KindClass},
		{regexp.MustCompile(`^impl\s+(\w+)[\s{<]`), KindClass},
		{regexp.MustCompile(`^pub\s+(?:async\s+)?fn\s+(\w+)\s*[(<]`), KindFunction},
		{regexp.MustCompile(`^(?:async\s+)?fn\s+(\w+)\s*[(<]`), KindFunction},
	},
	".rb": {
		{regexp.MustCompile(`^\s*module\s+(\w+)`), KindClass},
		{regexp.MustCompile(`^\s*class\s+(\w+)`), KindClass},
		{regexp.MustCompile(`^\s*def\s+(\w+[?!]?)`), KindFunction},
	},
	".php": {
		{regexp.MustCompile(`\binterface\s+(\w+)[\s{]`), KindInterface},
		{regexp.MustCompile(`\btrait\s+(\w+)[\s{]`), KindClass},
		{regexp.MustCompile(`\bclass\s+(\w+)[\s{]`), KindClass},
		{regexp.MustCompile(`\bfunction\s+(\w+)\s*\(`), KindFunction},
	},
	".c": {
		{regexp.MustCompile(`^[\w\s*]+\s+(\w+)\s*\([^;]`), KindFunction},
	},
	".cpp": {
		{regexp.MustCompile(`\bclass\s+(\w+)[\s:{]`), KindClass},
		{regexp.MustCompile(`\bstruct\s+(\w+)[\s:{]`), KindClass},
		{regexp.MustCompile(`^[\w\s*:<>]+\s+(\w+)\s*\([^;]`), KindFunction},
	},
	".swift": {
		{regexp.MustCompile(`\bprotocol\s+(\w+)[\s{:]`), KindInterface},
		{regexp.MustCompile(`\benum\s+(\w+)[\s{:]`), KindClass},
		{regexp.MustCompile(`\bstruct\s+(\w+)[\s{:]`), KindClass},
		{regexp.MustCompile(`\bclass\s+(\w+)[\s{:]`), KindClass},
		{regexp.MustCompile(`\bfunc\s+(\w+)\s*[(<]`), KindFunction},
	},
}

func extractSymbolsRegex(content []byte, ext string) []Symbol {
	patterns, ok := regexSymbolTable[ext]
	if !ok {
		return nil
	}

	var symbols []Symbol
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		for _, p := range patterns {
			m := p.re.FindStringSubmatch(line)
			if m != nil && len(m) > 1 {
				symbols = append(symbols, Symbol{Name: m[1], Kind: p.kind, Line: i + 1})
				break
			}
		}
	}
	return symbols
}
