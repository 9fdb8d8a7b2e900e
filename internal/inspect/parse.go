// Package inspect parses Go source files into function descriptors and
// decides which functions are eligible for instrumentation.
package inspect

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"strings"

	"flowtrace/internal/marker"
)

// File is the parsed view of one source file. The AST and raw source
// are retained for the rewriting stages.
type File struct {
	Path      string
	Package   string
	Generated bool
	TestFile  bool
	Lines     int
	Functions []FunctionDescriptor

	Fset *token.FileSet
	AST  *ast.File
	Src  []byte

	decls []*ast.FuncDecl
}

// FuncDecls returns the declared functions in source order, aligned
// index-for-index with Functions.
func (f *File) FuncDecls() []*ast.FuncDecl {
	return f.decls
}

// ParseFile reads and parses one Go source file.
func ParseFile(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseSource(path, src)
}

// ParseSource parses in-memory source. The path is used for positions
// and error messages only.
func ParseSource(path string, src []byte) (*File, error) {
	fset := token.NewFileSet()
	astFile, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, newParseError(path, err)
	}

	f := &File{
		Path:      path,
		Package:   astFile.Name.Name,
		Generated: ast.IsGenerated(astFile),
		TestFile:  strings.HasSuffix(path, "_test.go"),
		Lines:     countLines(src),
		Fset:      fset,
		AST:       astFile,
		Src:       src,
	}

	for _, decl := range astFile.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		f.Functions = append(f.Functions, f.describe(fn))
		f.decls = append(f.decls, fn)
	}
	return f, nil
}

// describe builds the descriptor for one declared function or method.
func (f *File) describe(fn *ast.FuncDecl) FunctionDescriptor {
	d := FunctionDescriptor{
		Name:      fn.Name.Name,
		Module:    f.Package,
		Receiver:  receiverName(fn),
		Results:   fn.Type.Results.NumFields(),
		StartLine: f.Fset.Position(fn.Pos()).Line,
		EndLine:   f.Fset.Position(fn.End()).Line,
		Exported:  fn.Name.IsExported(),
		Marked:    marker.Has(fn.Doc),
		TestFile:  f.TestFile,
		Generated: f.Generated,
	}

	if fn.Type.Params != nil {
		for _, field := range fn.Type.Params.List {
			if len(field.Names) == 0 {
				d.Params = append(d.Params, "_")
				continue
			}
			for _, name := range field.Names {
				d.Params = append(d.Params, name.Name)
			}
		}
	}

	if fn.Body != nil {
		d.BodyStmts = len(fn.Body.List)
		ast.Inspect(fn.Body, func(n ast.Node) bool {
			if _, ok := n.(*ast.GoStmt); ok {
				d.LaunchesGo = true
				return false
			}
			return true
		})
	}
	return d
}

// receiverName returns the base type name of the receiver, stripping
// pointers and type parameters.
func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	expr := fn.Recv.List[0].Type
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
		case *ast.IndexExpr:
			expr = t.X
		case *ast.IndexListExpr:
			expr = t.X
		case *ast.Ident:
			return t.Name
		default:
			return ""
		}
	}
}

func countLines(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	n := bytes.Count(src, []byte("\n"))
	if src[len(src)-1] != '\n' {
		n++
	}
	return n
}
