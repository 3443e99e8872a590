package ast

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"martianoff/stjs/internal/source"
)

// unitDoc is the interchange form of a compilation unit produced by the
// parser front end.
type unitDoc struct {
	File    string     `yaml:"file"`
	Package string     `yaml:"package"`
	Imports []*rawNode `yaml:"imports"`
	Type    *rawNode   `yaml:"type"`
}

// rawNode is the union of every key a node mapping may carry.
type rawNode struct {
	Kind       string     `yaml:"kind"`
	Pos        []int      `yaml:"pos"`
	Name       string     `yaml:"name"`
	Modifiers  []string   `yaml:"modifiers"`
	Static     bool       `yaml:"static"`
	Wildcard   bool       `yaml:"wildcard"`
	Type       *rawNode   `yaml:"type"`
	Result     *rawNode   `yaml:"result"`
	Extends    *rawNode   `yaml:"extends"`
	Implements []*rawNode `yaml:"implements"`
	Members    []*rawNode `yaml:"members"`
	Constants  []*rawNode `yaml:"constants"`
	Params     []*rawNode `yaml:"params"`
	Param      *rawNode   `yaml:"param"`
	Body       *rawNode   `yaml:"body"`
	Stmts      []*rawNode `yaml:"stmts"`
	Init       *rawNode   `yaml:"init"`
	Setup      []*rawNode `yaml:"setup"`
	Cond       *rawNode   `yaml:"cond"`
	Then       *rawNode   `yaml:"then"`
	Else       *rawNode   `yaml:"else"`
	Update     []*rawNode `yaml:"update"`
	X          *rawNode   `yaml:"x"`
	Recv       *rawNode   `yaml:"recv"`
	Args       []*rawNode `yaml:"args"`
	TypeArgs   []*rawNode `yaml:"typeArgs"`
	Dims       []*rawNode `yaml:"dims"`
	Rank       int        `yaml:"rank"`
	Elems      []*rawNode `yaml:"elems"`
	Op         string     `yaml:"op"`
	Left       *rawNode   `yaml:"left"`
	Right      *rawNode   `yaml:"right"`
	Value      string     `yaml:"value"`
	Lit        string     `yaml:"lit"`
	Postfix    bool       `yaml:"postfix"`
	Cases      []*rawNode `yaml:"cases"`
	Labels     []*rawNode `yaml:"labels"`
	Catches    []*rawNode `yaml:"catches"`
	Finally    *rawNode   `yaml:"finally"`
	Label      string     `yaml:"label"`
	Index      *rawNode   `yaml:"index"`
}

// DecodeError reports a malformed node in a unit document.
type DecodeError struct {
	Pos source.Position
	Msg string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Decode reads one unit document.
func Decode(r io.Reader) (*CompilationUnit, error) {
	var doc unitDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty unit document")
		}
		return nil, fmt.Errorf("decoding unit: %w", err)
	}
	d := &decoder{file: doc.File}
	u := &CompilationUnit{
		Base:    Base{At: source.At(doc.File, 1, 1)},
		File:    doc.File,
		Package: doc.Package,
	}
	for _, raw := range doc.Imports {
		if raw == nil || raw.Name == "" {
			continue
		}
		u.Imports = append(u.Imports, &Import{
			Base:     d.base(raw),
			Name:     raw.Name,
			Static:   raw.Static,
			Wildcard: raw.Wildcard,
		})
	}
	if doc.Type == nil {
		return nil, &DecodeError{Pos: u.At, Msg: "unit declares no type"}
	}
	td, ok := d.member(doc.Type).(TypeDecl)
	if d.err != nil {
		return nil, d.err
	}
	if !ok {
		return nil, &DecodeError{Pos: d.pos(doc.Type), Msg: fmt.Sprintf("top-level %q is not a type declaration", doc.Type.Kind)}
	}
	u.Type = td
	return u, nil
}

// DecodeFile reads the unit document at path.
func DecodeFile(path string) (*CompilationUnit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening unit: %w", err)
	}
	defer f.Close()
	u, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return u, nil
}

// decoder converts raw nodes, remembering the first error only.
type decoder struct {
	file string
	err  error
}

// pos reads a [line, column] pair. Reference sites are keyed by position,
// so anything coarser is rejected.
func (d *decoder) pos(r *rawNode) source.Position {
	switch len(r.Pos) {
	case 0:
		return source.Position{File: d.file}
	case 2:
		if r.Pos[0] > 0 && r.Pos[1] > 0 {
			return source.At(d.file, r.Pos[0], r.Pos[1])
		}
	}
	if d.err == nil {
		d.err = &DecodeError{Pos: source.Position{File: d.file}, Msg: fmt.Sprintf("invalid position %v: want [line, column]", r.Pos)}
	}
	return source.Position{File: d.file}
}

func (d *decoder) base(r *rawNode) Base {
	return Base{At: d.pos(r)}
}

func (d *decoder) fail(r *rawNode, format string, args ...any) {
	if d.err == nil {
		d.err = &DecodeError{Pos: d.pos(r), Msg: fmt.Sprintf(format, args...)}
	}
}

func (d *decoder) kind(r *rawNode) Kind {
	k, ok := ParseKind(r.Kind)
	if !ok {
		d.fail(r, "unknown node kind %q", r.Kind)
	}
	return k
}

// ---- declarations ----

func (d *decoder) member(r *rawNode) Member {
	if r == nil {
		return nil
	}
	b := d.base(r)
	switch d.kind(r) {
	case KindClass, KindInterface:
		decl := &ClassDecl{
			Base:       b,
			Name:       r.Name,
			Modifiers:  r.Modifiers,
			Interface:  r.Kind == KindInterface.String(),
			Extends:    d.typeRef(r.Extends),
			Implements: d.typeRefs(r.Implements),
		}
		for _, m := range r.Members {
			if mem := d.member(m); mem != nil {
				decl.Members = append(decl.Members, mem)
			}
		}
		return decl
	case KindEnum:
		decl := &EnumDecl{
			Base:       b,
			Name:       r.Name,
			Modifiers:  r.Modifiers,
			Implements: d.typeRefs(r.Implements),
		}
		for _, c := range r.Constants {
			if c == nil {
				continue
			}
			decl.Constants = append(decl.Constants, &EnumConstant{Base: d.base(c), Name: c.Name, Args: d.exprs(c.Args)})
		}
		for _, m := range r.Members {
			if mem := d.member(m); mem != nil {
				decl.Members = append(decl.Members, mem)
			}
		}
		return decl
	case KindField:
		return &FieldDecl{Base: b, Name: r.Name, Modifiers: r.Modifiers, Type: d.typeRef(r.Type), Init: d.expr(r.Init)}
	case KindMethod:
		return &MethodDecl{
			Base:      b,
			Name:      r.Name,
			Modifiers: r.Modifiers,
			Params:    d.params(r.Params),
			Result:    d.typeRef(r.Result),
			Body:      d.block(r.Body),
		}
	case KindConstructor:
		return &ConstructorDecl{Base: b, Modifiers: r.Modifiers, Params: d.params(r.Params), Body: d.block(r.Body)}
	case KindInitializer:
		return &Initializer{Base: b, Static: r.Static, Body: d.block(r.Body)}
	case KindInvalid:
		return nil
	}
	d.fail(r, "%q is not a member", r.Kind)
	return nil
}

func (d *decoder) typeRef(r *rawNode) *TypeRef {
	if r == nil {
		return nil
	}
	if r.Name == "" {
		d.fail(r, "type reference without a name")
	}
	return &TypeRef{Base: d.base(r), Name: r.Name, Args: d.typeRefs(r.TypeArgs), Rank: r.Rank}
}

func (d *decoder) typeRefs(rs []*rawNode) []*TypeRef {
	var out []*TypeRef
	for _, r := range rs {
		if t := d.typeRef(r); t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (d *decoder) param(r *rawNode) *Param {
	if r == nil {
		return nil
	}
	return &Param{Base: d.base(r), Name: r.Name, Type: d.typeRef(r.Type)}
}

func (d *decoder) params(rs []*rawNode) []*Param {
	var out []*Param
	for _, r := range rs {
		if p := d.param(r); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// ---- statements ----

func (d *decoder) block(r *rawNode) *Block {
	if r == nil {
		return nil
	}
	if r.Kind != KindBlock.String() {
		// a lone statement where a block is required
		s := d.stmt(r)
		if s == nil {
			return &Block{Base: d.base(r)}
		}
		return &Block{Base: d.base(r), Stmts: []Stmt{s}}
	}
	return &Block{Base: d.base(r), Stmts: d.stmts(r.Stmts)}
}

func (d *decoder) stmts(rs []*rawNode) []Stmt {
	var out []Stmt
	for _, r := range rs {
		if s := d.stmt(r); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (d *decoder) stmt(r *rawNode) Stmt {
	if r == nil {
		return nil
	}
	b := d.base(r)
	switch d.kind(r) {
	case KindBlock:
		return &Block{Base: b, Stmts: d.stmts(r.Stmts)}
	case KindLocalVar:
		return &LocalVar{Base: b, Type: d.typeRef(r.Type), Name: r.Name, Init: d.expr(r.Init)}
	case KindExprStmt:
		return &ExprStmt{Base: b, X: d.expr(r.X)}
	case KindIf:
		return &If{Base: b, Cond: d.expr(r.Cond), Then: d.stmt(r.Then), Else: d.stmt(r.Else)}
	case KindWhile:
		return &While{Base: b, Cond: d.expr(r.Cond), Body: d.stmt(r.Body)}
	case KindDoWhile:
		return &DoWhile{Base: b, Body: d.stmt(r.Body), Cond: d.expr(r.Cond)}
	case KindFor:
		return &For{Base: b, Init: d.stmts(r.Setup), Cond: d.expr(r.Cond), Update: d.exprs(r.Update), Body: d.stmt(r.Body)}
	case KindForEach:
		return &ForEach{Base: b, VarType: d.typeRef(r.Type), VarName: r.Name, Iterable: d.expr(r.X), Body: d.stmt(r.Body)}
	case KindSwitch:
		sw := &Switch{Base: b, Selector: d.expr(r.X)}
		for _, c := range r.Cases {
			if c == nil {
				continue
			}
			sw.Cases = append(sw.Cases, &Case{Base: d.base(c), Labels: d.exprs(c.Labels), Body: d.stmts(c.Stmts)})
		}
		return sw
	case KindReturn:
		return &Return{Base: b, X: d.expr(r.X)}
	case KindBreak:
		return &Break{Base: b, Label: r.Label}
	case KindContinue:
		return &Continue{Base: b, Label: r.Label}
	case KindThrow:
		return &Throw{Base: b, X: d.expr(r.X)}
	case KindTry:
		t := &Try{Base: b, Body: d.block(r.Body), Finally: d.block(r.Finally)}
		for _, c := range r.Catches {
			if c == nil {
				continue
			}
			t.Catches = append(t.Catches, &Catch{Base: d.base(c), Param: d.param(c.Param), Body: d.block(c.Body)})
		}
		return t
	case KindEmpty:
		return &Empty{Base: b}
	case KindInvalid:
		return nil
	}
	d.fail(r, "%q is not a statement", r.Kind)
	return nil
}

// ---- expressions ----

func (d *decoder) exprs(rs []*rawNode) []Expr {
	var out []Expr
	for _, r := range rs {
		if e := d.expr(r); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (d *decoder) arrayInit(r *rawNode) *ArrayInit {
	if r == nil {
		return nil
	}
	return &ArrayInit{Base: d.base(r), Elems: d.exprs(r.Elems)}
}

func (d *decoder) expr(r *rawNode) Expr {
	if r == nil {
		return nil
	}
	b := d.base(r)
	switch d.kind(r) {
	case KindName:
		return &Name{Base: b, Ident: r.Name}
	case KindFieldAccess:
		return &FieldAccess{Base: b, X: d.expr(r.X), Name: r.Name}
	case KindMethodCall:
		return &MethodCall{Base: b, Recv: d.expr(r.Recv), Name: r.Name, Args: d.exprs(r.Args)}
	case KindLiteral:
		lit := LitKind(r.Lit)
		switch lit {
		case LitInt, LitLong, LitFloat, LitDouble, LitChar, LitString, LitBool, LitNull:
		default:
			d.fail(r, "unknown literal kind %q", r.Lit)
		}
		return &Literal{Base: b, Lit: lit, Value: r.Value}
	case KindUnary:
		return &Unary{Base: b, Op: r.Op, X: d.expr(r.X), Postfix: r.Postfix}
	case KindBinary:
		return &Binary{Base: b, Op: r.Op, Left: d.expr(r.Left), Right: d.expr(r.Right)}
	case KindAssign:
		op := r.Op
		if op == "" {
			op = "="
		}
		return &Assign{Base: b, Op: op, Left: d.expr(r.Left), Right: d.expr(r.Right)}
	case KindConditional:
		return &Conditional{Base: b, Cond: d.expr(r.Cond), Then: d.expr(r.Then), Else: d.expr(r.Else)}
	case KindCast:
		return &Cast{Base: b, Type: d.typeRef(r.Type), X: d.expr(r.X)}
	case KindInstanceOf:
		return &InstanceOf{Base: b, X: d.expr(r.X), Type: d.typeRef(r.Type)}
	case KindNew:
		return &New{Base: b, Type: d.typeRef(r.Type), Args: d.exprs(r.Args)}
	case KindNewArray:
		return &NewArray{Base: b, Elem: d.typeRef(r.Type), Dims: d.exprs(r.Dims), Init: d.arrayInit(r.Init)}
	case KindArrayInit:
		return &ArrayInit{Base: b, Elems: d.exprs(r.Elems)}
	case KindIndex:
		return &Index{Base: b, X: d.expr(r.X), Index: d.expr(r.Index)}
	case KindLambda:
		l := &Lambda{Base: b, Params: d.params(r.Params)}
		if r.Body != nil {
			if r.Body.Kind == KindBlock.String() {
				l.Body = d.block(r.Body)
			} else {
				l.Body = d.expr(r.Body)
			}
		}
		return l
	case KindThis:
		return &This{Base: b}
	case KindSuper:
		return &Super{Base: b}
	case KindClassLit:
		return &ClassLit{Base: b, Type: d.typeRef(r.Type)}
	case KindParen:
		return &Paren{Base: b, X: d.expr(r.X)}
	case KindInvalid:
		return nil
	}
	d.fail(r, "%q is not an expression", r.Kind)
	return nil
}
