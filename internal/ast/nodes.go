package ast

// CompilationUnit is one source file holding a single top-level type.
type CompilationUnit struct {
	Base
	File    string
	Package string
	Imports []*Import
	Type    TypeDecl
}

func (*CompilationUnit) Kind() Kind { return KindUnit }

// QualifiedName returns the fully qualified name of the unit's type.
func (u *CompilationUnit) QualifiedName() string {
	if u.Type == nil {
		return ""
	}
	if u.Package == "" {
		return u.Type.DeclName()
	}
	return u.Package + "." + u.Type.DeclName()
}

// Import is a single or on-demand, plain or static import.
type Import struct {
	Base
	Name     string
	Static   bool
	Wildcard bool
}

func (*Import) Kind() Kind { return KindImport }

// ---- declarations ----

// ClassDecl is a class or interface declaration.
type ClassDecl struct {
	Base
	Name       string
	Modifiers  Modifiers
	Interface  bool
	Extends    *TypeRef
	Implements []*TypeRef
	Members    []Member
}

func (d *ClassDecl) Kind() Kind {
	if d.Interface {
		return KindInterface
	}
	return KindClass
}
func (*ClassDecl) memberNode()                {}
func (d *ClassDecl) DeclName() string         { return d.Name }
func (d *ClassDecl) DeclModifiers() Modifiers { return d.Modifiers }

// EnumDecl is an enumeration declaration.
type EnumDecl struct {
	Base
	Name       string
	Modifiers  Modifiers
	Implements []*TypeRef
	Constants  []*EnumConstant
	Members    []Member
}

func (*EnumDecl) Kind() Kind                  { return KindEnum }
func (*EnumDecl) memberNode()                 {}
func (d *EnumDecl) DeclName() string          { return d.Name }
func (d *EnumDecl) DeclModifiers() Modifiers  { return d.Modifiers }

// EnumConstant is one constant of an enumeration.
type EnumConstant struct {
	Base
	Name string
	Args []Expr
}

func (*EnumConstant) Kind() Kind { return KindEnumConstant }

// FieldDecl declares a single field.
type FieldDecl struct {
	Base
	Name      string
	Modifiers Modifiers
	Type      *TypeRef
	Init      Expr
}

func (*FieldDecl) Kind() Kind  { return KindField }
func (*FieldDecl) memberNode() {}

// MethodDecl declares a method. Result is nil for void; Body is nil for
// abstract and interface methods.
type MethodDecl struct {
	Base
	Name      string
	Modifiers Modifiers
	Params    []*Param
	Result    *TypeRef
	Body      *Block
}

func (*MethodDecl) Kind() Kind  { return KindMethod }
func (*MethodDecl) memberNode() {}

// ConstructorDecl declares a constructor.
type ConstructorDecl struct {
	Base
	Modifiers Modifiers
	Params    []*Param
	Body      *Block
}

func (*ConstructorDecl) Kind() Kind  { return KindConstructor }
func (*ConstructorDecl) memberNode() {}

// Initializer is an instance or static initializer block.
type Initializer struct {
	Base
	Static bool
	Body   *Block
}

func (*Initializer) Kind() Kind  { return KindInitializer }
func (*Initializer) memberNode() {}

// Param is a method, constructor, lambda or catch parameter.
type Param struct {
	Base
	Name string
	Type *TypeRef // nil for implicitly typed lambda parameters
}

func (*Param) Kind() Kind { return KindParam }

// TypeRef is a type as written in the source: simple or qualified name,
// type arguments and array rank.
type TypeRef struct {
	Base
	Name string
	Args []*TypeRef
	Rank int
}

func (*TypeRef) Kind() Kind { return KindTypeRef }

// ---- statements ----

type Block struct {
	Base
	Stmts []Stmt
}

type LocalVar struct {
	Base
	Type *TypeRef
	Name string
	Init Expr
}

type ExprStmt struct {
	Base
	X Expr
}

type If struct {
	Base
	Cond Expr
	Then Stmt
	Else Stmt
}

type While struct {
	Base
	Cond Expr
	Body Stmt
}

type DoWhile struct {
	Base
	Body Stmt
	Cond Expr
}

type For struct {
	Base
	Init   []Stmt
	Cond   Expr
	Update []Expr
	Body   Stmt
}

// ForEach is `for (T name : iterable) body`.
type ForEach struct {
	Base
	VarType  *TypeRef
	VarName  string
	Iterable Expr
	Body     Stmt
}

type Switch struct {
	Base
	Selector Expr
	Cases    []*Case
}

// Case is one switch arm. No labels means default.
type Case struct {
	Base
	Labels []Expr
	Body   []Stmt
}

type Return struct {
	Base
	X Expr
}

type Break struct {
	Base
	Label string
}

type Continue struct {
	Base
	Label string
}

type Throw struct {
	Base
	X Expr
}

type Try struct {
	Base
	Body    *Block
	Catches []*Catch
	Finally *Block
}

type Catch struct {
	Base
	Param *Param
	Body  *Block
}

type Empty struct {
	Base
}

func (*Block) Kind() Kind    { return KindBlock }
func (*LocalVar) Kind() Kind { return KindLocalVar }
func (*ExprStmt) Kind() Kind { return KindExprStmt }
func (*If) Kind() Kind       { return KindIf }
func (*While) Kind() Kind    { return KindWhile }
func (*DoWhile) Kind() Kind  { return KindDoWhile }
func (*For) Kind() Kind      { return KindFor }
func (*ForEach) Kind() Kind  { return KindForEach }
func (*Switch) Kind() Kind   { return KindSwitch }
func (*Case) Kind() Kind     { return KindCase }
func (*Return) Kind() Kind   { return KindReturn }
func (*Break) Kind() Kind    { return KindBreak }
func (*Continue) Kind() Kind { return KindContinue }
func (*Throw) Kind() Kind    { return KindThrow }
func (*Try) Kind() Kind      { return KindTry }
func (*Catch) Kind() Kind    { return KindCatch }
func (*Empty) Kind() Kind    { return KindEmpty }

func (*Block) stmtNode()    {}
func (*LocalVar) stmtNode() {}
func (*ExprStmt) stmtNode() {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*DoWhile) stmtNode()  {}
func (*For) stmtNode()      {}
func (*ForEach) stmtNode()  {}
func (*Switch) stmtNode()   {}
func (*Return) stmtNode()   {}
func (*Break) stmtNode()    {}
func (*Continue) stmtNode() {}
func (*Throw) stmtNode()    {}
func (*Try) stmtNode()      {}
func (*Empty) stmtNode()    {}

// ---- expressions ----

// LitKind classifies literals.
type LitKind string

const (
	LitInt    LitKind = "int"
	LitLong   LitKind = "long"
	LitFloat  LitKind = "float"
	LitDouble LitKind = "double"
	LitChar   LitKind = "char"
	LitString LitKind = "string"
	LitBool   LitKind = "boolean"
	LitNull   LitKind = "null"
)

// Name is a simple identifier in expression position.
type Name struct {
	Base
	Ident string
}

// FieldAccess is `x.name`. Its position is the position of name.
type FieldAccess struct {
	Base
	X    Expr
	Name string
}

// MethodCall is `recv.name(args)` or `name(args)`. Its position is the
// position of name.
type MethodCall struct {
	Base
	Recv Expr
	Name string
	Args []Expr
}

type Literal struct {
	Base
	Lit   LitKind
	Value string // unquoted for strings and chars
}

type Unary struct {
	Base
	Op      string
	X       Expr
	Postfix bool
}

type Binary struct {
	Base
	Op    string
	Left  Expr
	Right Expr
}

type Assign struct {
	Base
	Op    string
	Left  Expr
	Right Expr
}

type Conditional struct {
	Base
	Cond Expr
	Then Expr
	Else Expr
}

type Cast struct {
	Base
	Type *TypeRef
	X    Expr
}

type InstanceOf struct {
	Base
	X    Expr
	Type *TypeRef
}

type New struct {
	Base
	Type *TypeRef
	Args []Expr
}

// NewArray is `new T[d1][d2]` or `new T[]{...}`.
type NewArray struct {
	Base
	Elem *TypeRef
	Dims []Expr
	Init *ArrayInit
}

type ArrayInit struct {
	Base
	Elems []Expr
}

type Index struct {
	Base
	X     Expr
	Index Expr
}

// Lambda body is either an Expr or a *Block.
type Lambda struct {
	Base
	Params []*Param
	Body   Node
}

type This struct {
	Base
}

type Super struct {
	Base
}

type ClassLit struct {
	Base
	Type *TypeRef
}

type Paren struct {
	Base
	X Expr
}

func (*Name) Kind() Kind        { return KindName }
func (*FieldAccess) Kind() Kind { return KindFieldAccess }
func (*MethodCall) Kind() Kind  { return KindMethodCall }
func (*Literal) Kind() Kind     { return KindLiteral }
func (*Unary) Kind() Kind       { return KindUnary }
func (*Binary) Kind() Kind      { return KindBinary }
func (*Assign) Kind() Kind      { return KindAssign }
func (*Conditional) Kind() Kind { return KindConditional }
func (*Cast) Kind() Kind        { return KindCast }
func (*InstanceOf) Kind() Kind  { return KindInstanceOf }
func (*New) Kind() Kind         { return KindNew }
func (*NewArray) Kind() Kind    { return KindNewArray }
func (*ArrayInit) Kind() Kind   { return KindArrayInit }
func (*Index) Kind() Kind       { return KindIndex }
func (*Lambda) Kind() Kind      { return KindLambda }
func (*This) Kind() Kind        { return KindThis }
func (*Super) Kind() Kind       { return KindSuper }
func (*ClassLit) Kind() Kind    { return KindClassLit }
func (*Paren) Kind() Kind       { return KindParen }

func (*Name) exprNode()        {}
func (*FieldAccess) exprNode() {}
func (*MethodCall) exprNode()  {}
func (*Literal) exprNode()     {}
func (*Unary) exprNode()       {}
func (*Binary) exprNode()      {}
func (*Assign) exprNode()      {}
func (*Conditional) exprNode() {}
func (*Cast) exprNode()        {}
func (*InstanceOf) exprNode()  {}
func (*New) exprNode()         {}
func (*NewArray) exprNode()    {}
func (*ArrayInit) exprNode()   {}
func (*Index) exprNode()       {}
func (*Lambda) exprNode()      {}
func (*This) exprNode()        {}
func (*Super) exprNode()       {}
func (*ClassLit) exprNode()    {}
func (*Paren) exprNode()       {}
