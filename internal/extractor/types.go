// Package extractor turns raw file bytes into the structural signal the
// retriever depends on: named declarations (symbols), a keyword bag, and an
// ordered list of retrievable chunks. Structural parsing is attempted first
// via tree-sitter; a regex table is the fallback for every other language.
package extractor

// SymbolKind is the kind of a named declaration.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindClass     SymbolKind = "class"
	KindInterface SymbolKind = "interface"
	KindType      SymbolKind = "type"
)

// Symbol is a named declaration occurrence, 1-based line pointing at its
// first line.
type Symbol struct {
	Name string
	Kind SymbolKind
	Line int
}

// Chunk is an atomic, retrievable unit of a file: a contiguous 1-based
// inclusive line range plus the exact substring of those lines.
type Chunk struct {
	StartLine int
	EndLine   int
	Content   string
	Symbol    string // empty when the chunk has no owning declaration
}

// Tree is a structural parse of one file, produced by tree-sitter.
type Tree struct {
	Root     *Node
	Source   []byte
	Language string
}

// Node is a single AST node, stripped down to what symbol extraction needs.
type Node struct {
	Type       string
	StartByte  uint32
	EndByte    uint32
	StartPoint Point
	EndPoint   Point
	Children   []*Node
	HasError   bool
}

// Point is a row/column position in the source (0-indexed row).
type Point struct {
	Row    uint32
	Column uint32
}

// LanguageConfig maps a tree-sitter grammar's node kinds to the symbol kinds
// the spec cares about.
type LanguageConfig struct {
	Name       string
	Extensions []string

	FunctionTypes  []string
	MethodTypes    []string
	ClassTypes     []string
	InterfaceTypes []string
	TypeDefTypes   []string

	NameField string
}

// GetContent returns the source substring spanned by the node.
func (n *Node) GetContent(source []byte) string {
	if n.StartByte >= n.EndByte || int(n.EndByte) > len(source) {
		return ""
	}
	return string(source[n.StartByte:n.EndByte])
}

// FindChildByType returns the first direct child with the given type.
func (n *Node) FindChildByType(nodeType string) *Node {
	for _, child := range n.Children {
		if child.Type == nodeType {
			return child
		}
	}
	return nil
}

// Walk traverses the tree depth-first, calling fn for every node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// FindAllByType recursively finds every node of the given type.
func (n *Node) FindAllByType(nodeType string) []*Node {
	var result []*Node
	if n.Type == nodeType {
		result = append(result, n)
	}
	for _, child := range n.Children {
		result = append(result, child.FindAllByType(nodeType)...)
	}
	return result
}
