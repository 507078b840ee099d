package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSymbols_GoStructuralParseFindsFunctionsAndTypes(t *testing.T) {
	src := `package sample

type Greeter interface {
	Greet() string
}

type server struct {
	name string
}

func (s *server) Greet() string {
	return s.name
}

func New(name string) *server {
	return &server{name: name}
}
`
	symbols := ExtractSymbols(context.Background(), []byte(src), "sample.go")

	names := make(map[string]SymbolKind)
	for _, s := range symbols {
		names[s.Name] = s.Kind
	}

	assert.Equal(t, KindType, names["Greeter"])
	assert.Equal(t, KindClass, names["server"])
	assert.Equal(t, KindFunction, names["Greet"])
	assert.Equal(t, KindFunction, names["New"])
}

func TestExtractSymbols_PythonStructuralParseFindsClassAndDef(t *testing.T) {
	src := "class Widget:\n    def render(self):\n        return 1\n"

	symbols := ExtractSymbols(context.Background(), []byte(src), "widget.py")

	var foundClass, foundFunc bool
	for _, s := range symbols {
		if s.Name == "Widget" && s.Kind == KindClass {
			foundClass = true
		}
		if s.Name == "render" && s.Kind == KindFunction {
			foundFunc = true
		}
	}
	assert.True(t, foundClass, "expected Widget class symbol")
	assert.True(t, foundFunc, "expected render function symbol")
}

func TestExtractSymbols_UnregisteredExtensionUsesRegexFallback(t *testing.T) {
	src := "pub struct Counter {\n}\n\npub fn increment(n: i32) -> i32 {\n    n + 1\n}\n"

	symbols := ExtractSymbols(context.Background(), []byte(src), "lib.rs")

	var foundStruct, foundFn bool
	for _, s := range symbols {
		if s.Name == "Counter" && s.Kind == KindClass {
			foundStruct = true
		}
		if s.Name == "increment" && s.Kind == KindFunction {
			foundFn = true
		}
	}
	assert.True(t, foundStruct)
	assert.True(t, foundFn)
}

func TestExtractSymbols_UnknownExtensionReturnsNil(t *testing.T) {
	symbols := ExtractSymbols(context.Background(), []byte("whatever"), "notes.xyz")

	assert.Empty(t, symbols)
}

func TestExtractSymbols_AtMostOneSymbolPerLine(t *testing.T) {
	src := "func A() {}; func B() {}\n"

	symbols := ExtractSymbols(context.Background(), []byte(src), "sample.go")

	lines := make(map[int]int)
	for _, s := range symbols {
		lines[s.Line]++
	}
	for line, count := range lines {
		assert.LessOrEqualf(t, count, 1, "line %d had %d symbols", line, count)
	}
}
