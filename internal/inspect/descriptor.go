package inspect

// FunctionDescriptor captures everything the eligibility rules need to
// know about one declared function or method. Descriptors are built
// during parsing; classification never re-reads source.
type FunctionDescriptor struct {
	Name       string   // declared name, without receiver
	Module     string   // identity of the containing file, usually the package name
	Receiver   string   // receiver base type, "" for plain functions
	Params     []string // parameter names in declaration order, "_" for unnamed
	Results    int      // result arity
	BodyStmts  int      // top-level statements in the body
	StartLine  int      // first line of the declaration
	EndLine    int      // last line of the declaration
	Exported   bool
	Marked     bool // carries the marker directive
	TestFile   bool // declared in a _test.go file
	Generated  bool // declared in a generated file
	LaunchesGo bool // body contains a go statement
}

// QualifiedName returns "Receiver.Name" for methods, the plain name
// otherwise.
func (d FunctionDescriptor) QualifiedName() string {
	if d.Receiver == "" {
		return d.Name
	}
	return d.Receiver + "." + d.Name
}
