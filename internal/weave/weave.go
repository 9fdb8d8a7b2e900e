// Package weave generates instrumented bodies for marked functions.
// The marker directive only tags a function; weaving is what makes it
// emit events, by prepending an Enter call and the two defers that
// terminate it. Output is rendered in canonical gofmt style.
package weave

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/printer"
	"go/token"
	"os"
	"strconv"

	"flowtrace/internal/inspect"
)

const (
	// ctxIdent names the call context local. Its presence as the
	// first statement of a body is how an already-woven function is
	// recognized.
	ctxIdent = "__ft_ctx"

	// resPrefix prefixes synthesized result names.
	resPrefix = "__ft_res"

	runtimePkg  = "flowtrace"
	runtimePath = `"flowtrace"`
)

// Options configures a weave. Semantics match the rewriter's.
type Options struct {
	DryRun bool
	Backup bool
}

// Result reports what a weave did, or would do for dry runs.
type Result struct {
	Count      int
	Functions  []string
	BackupPath string
	Changed    bool
}

// File weaves instrumentation into every marked, not-yet-woven
// function in path. Files without such functions stay untouched.
func File(path string, opts Options) (Result, error) {
	f, err := inspect.ParseFile(path)
	if err != nil {
		return Result{}, err
	}

	decls := f.FuncDecls()
	var names []string
	for i, d := range f.Functions {
		fn := decls[i]
		if !d.Marked || fn.Body == nil || woven(fn) {
			continue
		}
		instrument(f.Package, d, fn)
		names = append(names, d.QualifiedName())
	}
	if len(names) == 0 {
		return Result{}, nil
	}
	ensureImport(f.AST)

	out, err := render(f.Fset, f.AST)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}

	res := Result{Count: len(names), Functions: names, Changed: true}
	if opts.DryRun {
		return res, nil
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}

	if opts.Backup {
		backupPath := path + ".bak"
		if err := os.WriteFile(backupPath, f.Src, mode); err != nil {
			return Result{}, fmt.Errorf("write backup: %w", err)
		}
		res.BackupPath = backupPath
	}

	if err := os.WriteFile(path, out, mode); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", path, err)
	}
	return res, nil
}

// woven reports whether a body already starts with the context
// assignment.
func woven(fn *ast.FuncDecl) bool {
	if len(fn.Body.List) == 0 {
		return false
	}
	assign, ok := fn.Body.List[0].(*ast.AssignStmt)
	if !ok || assign.Tok != token.DEFINE || len(assign.Lhs) != 1 {
		return false
	}
	id, ok := assign.Lhs[0].(*ast.Ident)
	return ok && id.Name == ctxIdent
}

// instrument prepends the three generated statements:
//
//	__ft_ctx := flowtrace.Enter("pkg", "Fn", flowtrace.Args{...})
//	defer func() { __ft_ctx.Finish(res, err) }()
//	defer __ft_ctx.Recover()
//
// Recover is registered last so it runs first while a panic unwinds
// and the Finish defer then finds the context already terminated.
func instrument(pkg string, d inspect.FunctionDescriptor, fn *ast.FuncDecl) {
	results, trailingErr := ensureNamedResults(fn)
	stmts := []ast.Stmt{
		enterStmt(pkg, d.QualifiedName(), fn),
		finishDefer(results, trailingErr),
		recoverDefer(),
	}
	fn.Body.List = append(stmts, fn.Body.List...)
}

// ensureNamedResults names anonymous results so the finish defer can
// read them after assignment. It returns the flat result names in
// order and whether the last result has the error type.
func ensureNamedResults(fn *ast.FuncDecl) ([]string, bool) {
	rt := fn.Type.Results
	if rt == nil || len(rt.List) == 0 {
		return nil, false
	}

	// Go requires result names to be all present or all absent, so
	// one named field means nothing needs synthesizing.
	named := false
	for _, field := range rt.List {
		if len(field.Names) > 0 {
			named = true
			break
		}
	}

	var names []string
	for _, field := range rt.List {
		if !named {
			field.Names = []*ast.Ident{ast.NewIdent(fmt.Sprintf("%s%d", resPrefix, len(names)))}
		}
		for _, ident := range field.Names {
			names = append(names, ident.Name)
		}
	}

	last := rt.List[len(rt.List)-1].Type
	id, ok := last.(*ast.Ident)
	return names, ok && id.Name == "error"
}

func enterStmt(pkg, function string, fn *ast.FuncDecl) ast.Stmt {
	return &ast.AssignStmt{
		Lhs: []ast.Expr{ast.NewIdent(ctxIdent)},
		Tok: token.DEFINE,
		Rhs: []ast.Expr{&ast.CallExpr{
			Fun:  sel(runtimePkg, "Enter"),
			Args: []ast.Expr{strLit(pkg), strLit(function), argsExpr(fn)},
		}},
	}
}

// argsExpr builds the flowtrace.Args literal naming the receiver and
// every referable parameter, or nil when there is nothing to record.
func argsExpr(fn *ast.FuncDecl) ast.Expr {
	var elts []ast.Expr
	if fn.Recv != nil && len(fn.Recv.List) > 0 && len(fn.Recv.List[0].Names) > 0 {
		if name := fn.Recv.List[0].Names[0].Name; name != "_" {
			elts = append(elts, argElt("receiver", name))
		}
	}
	if fn.Type.Params != nil {
		for _, field := range fn.Type.Params.List {
			for _, ident := range field.Names {
				if ident.Name == "_" {
					continue
				}
				elts = append(elts, argElt(ident.Name, ident.Name))
			}
		}
	}
	if len(elts) == 0 {
		return ast.NewIdent("nil")
	}
	return &ast.CompositeLit{Type: sel(runtimePkg, "Args"), Elts: elts}
}

func argElt(label, ident string) ast.Expr {
	return &ast.CompositeLit{Elts: []ast.Expr{
		&ast.KeyValueExpr{Key: ast.NewIdent("Name"), Value: strLit(label)},
		&ast.KeyValueExpr{Key: ast.NewIdent("Value"), Value: ast.NewIdent(ident)},
	}}
}

// finishDefer builds the normal-return defer. Result values are read
// when the defer runs, so the call is wrapped in a closure; functions
// without results use ExitVoid directly since nothing is late-bound.
func finishDefer(results []string, trailingErr bool) ast.Stmt {
	if len(results) == 0 {
		return &ast.DeferStmt{Call: &ast.CallExpr{Fun: sel(ctxIdent, "ExitVoid")}}
	}

	errExpr := ast.Expr(ast.NewIdent("nil"))
	values := results
	if trailingErr {
		if name := results[len(results)-1]; name != "_" {
			errExpr = ast.NewIdent(name)
		}
		values = results[:len(results)-1]
	}

	var usable []string
	for _, name := range values {
		if name != "_" {
			usable = append(usable, name)
		}
	}

	var resultExpr ast.Expr
	switch len(usable) {
	case 0:
		resultExpr = ast.NewIdent("nil")
	case 1:
		resultExpr = ast.NewIdent(usable[0])
	default:
		lit := &ast.CompositeLit{Type: &ast.ArrayType{Elt: ast.NewIdent("any")}}
		for _, name := range usable {
			lit.Elts = append(lit.Elts, ast.NewIdent(name))
		}
		resultExpr = lit
	}

	return &ast.DeferStmt{Call: &ast.CallExpr{
		Fun: &ast.FuncLit{
			Type: &ast.FuncType{Params: &ast.FieldList{}},
			Body: &ast.BlockStmt{List: []ast.Stmt{&ast.ExprStmt{X: &ast.CallExpr{
				Fun:  sel(ctxIdent, "Finish"),
				Args: []ast.Expr{resultExpr, errExpr},
			}}}},
		},
	}}
}

func recoverDefer() ast.Stmt {
	return &ast.DeferStmt{Call: &ast.CallExpr{Fun: sel(ctxIdent, "Recover")}}
}

func sel(x, name string) *ast.SelectorExpr {
	return &ast.SelectorExpr{X: ast.NewIdent(x), Sel: ast.NewIdent(name)}
}

func strLit(s string) *ast.BasicLit {
	return &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(s)}
}

// ensureImport adds the runtime import when missing. The rendering
// pass sorts it into place.
func ensureImport(file *ast.File) {
	for _, imp := range file.Imports {
		if imp.Path.Value == runtimePath {
			return
		}
	}
	spec := &ast.ImportSpec{Path: &ast.BasicLit{Kind: token.STRING, Value: runtimePath}}
	file.Imports = append(file.Imports, spec)

	for _, decl := range file.Decls {
		if gen, ok := decl.(*ast.GenDecl); ok && gen.Tok == token.IMPORT {
			gen.Specs = append(gen.Specs, spec)
			return
		}
	}
	decl := &ast.GenDecl{Tok: token.IMPORT, Specs: []ast.Spec{spec}}
	file.Decls = append([]ast.Decl{decl}, file.Decls...)
}

// render prints the modified tree and normalizes it through
// format.Source, which also sorts the import block.
func render(fset *token.FileSet, file *ast.File) ([]byte, error) {
	var buf bytes.Buffer
	cfg := printer.Config{Mode: printer.UseSpaces | printer.TabIndent, Tabwidth: 8}
	if err := cfg.Fprint(&buf, fset, file); err != nil {
		return nil, err
	}
	return format.Source(buf.Bytes())
}
