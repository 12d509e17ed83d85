package database

import "strings"

// DefaultProcedureLanguage is the language procedures are created in.
const DefaultProcedureLanguage = "plpgsql"

// ProcedureBlueprint describes a stored procedure. Procedures are always
// replaced as a whole, never diffed.
type ProcedureBlueprint struct {
	name       string
	paramNames []string
	params     map[string]*Param

	// Body is the procedure SQL placed between BEGIN and END.
	Body string
	// BodyDelimiter is the dollar-quote tag around the body ("" gives $$).
	BodyDelimiter string
	// Language defaults to plpgsql.
	Language string
}

// NewProcedureBlueprint creates an empty procedure blueprint.
func NewProcedureBlueprint(name string) *ProcedureBlueprint {
	return &ProcedureBlueprint{
		name:     name,
		params:   make(map[string]*Param),
		Language: DefaultProcedureLanguage,
	}
}

func (sp *ProcedureBlueprint) Name() string {
	return sp.name
}

// ParamNames returns the lower-cased parameter keys in declaration order.
func (sp *ProcedureBlueprint) ParamNames() []string {
	return sp.paramNames
}

// Param looks up a parameter case-insensitively.
func (sp *ProcedureBlueprint) Param(name string) (*Param, bool) {
	p, ok := sp.params[strings.ToLower(name)]
	return p, ok
}

// Params returns the parameters in declaration order.
func (sp *ProcedureBlueprint) Params() []*Param {
	params := make([]*Param, 0, len(sp.paramNames))
	for _, name := range sp.paramNames {
		params = append(params, sp.params[name])
	}
	return params
}

// SetBody sets the procedure body and returns the blueprint for chaining.
func (sp *ProcedureBlueprint) SetBody(body string) *ProcedureBlueprint {
	sp.Body = body
	return sp
}

func (sp *ProcedureBlueprint) getOrAddParam(realName string, t ColumnType) *Param {
	key := strings.ToLower(realName)
	p, ok := sp.params[key]
	if !ok {
		p = NewParam(realName)
		sp.params[key] = p
		sp.paramNames = append(sp.paramNames, key)
	}
	p.setType(t)
	return p
}

// paramBuilder mirrors columnBuilder for procedure parameters.
type paramBuilder[T any] struct {
	param *Param
	self  *T
}

func (b *paramBuilder[T]) init(p *Param, self *T) {
	b.param = p
	b.self = self
}

// Param returns the underlying parameter.
func (b paramBuilder[T]) Param() *Param {
	return b.param
}

func (b paramBuilder[T]) Null() *T {
	b.param.Nullable = true
	return b.self
}

func (b paramBuilder[T]) NotNull() *T {
	b.param.Nullable = false
	return b.self
}

// In makes the parameter input-only.
func (b paramBuilder[T]) In() *T {
	b.param.In, b.param.Out = true, false
	return b.self
}

// Out makes the parameter output-only.
func (b paramBuilder[T]) Out() *T {
	b.param.In, b.param.Out = false, true
	return b.self
}

func (b paramBuilder[T]) InOut() *T {
	b.param.In, b.param.Out = true, true
	return b.self
}

// Default sets the parameter default; without an argument the type's
// natural default is used.
func (b paramBuilder[T]) Default(expr ...string) *T {
	if len(expr) > 0 {
		b.param.Default = expr[0]
	} else {
		b.param.Default = DefaultExpr(b.param.Type)
	}
	return b.self
}

func (b paramBuilder[T]) length(n int) *T {
	b.param.Length = n
	return b.self
}

func (b paramBuilder[T]) precision(n int) *T {
	b.param.Precision = n
	return b.self
}

func (b paramBuilder[T]) scale(n int) *T {
	b.param.Scale = n
	return b.self
}

type (
	BigIntParam    struct{ paramBuilder[BigIntParam] }
	IntegerParam   struct{ paramBuilder[IntegerParam] }
	SmallIntParam  struct{ paramBuilder[SmallIntParam] }
	NumericParam   struct{ paramBuilder[NumericParam] }
	BitParam       struct{ paramBuilder[BitParam] }
	CharParam      struct{ paramBuilder[CharParam] }
	VarcharParam   struct{ paramBuilder[VarcharParam] }
	BooleanParam   struct{ paramBuilder[BooleanParam] }
	DateParam      struct{ paramBuilder[DateParam] }
	TimestampParam struct{ paramBuilder[TimestampParam] }
	UUIDParam      struct{ paramBuilder[UUIDParam] }
	TextParam      struct{ paramBuilder[TextParam] }
)

func (b *NumericParam) Precision(n int) *NumericParam     { return b.precision(n) }
func (b *NumericParam) Scale(n int) *NumericParam         { return b.scale(n) }
func (b *BitParam) N(n int) *BitParam                     { return b.length(n) }
func (b *CharParam) Length(n int) *CharParam              { return b.length(n) }
func (b *VarcharParam) Length(n int) *VarcharParam        { return b.length(n) }
func (b *TimestampParam) Precision(n int) *TimestampParam { return b.precision(n) }

func (sp *ProcedureBlueprint) BigInt(name string) *BigIntParam {
	b := &BigIntParam{}
	b.init(sp.getOrAddParam(name, BigInt), b)
	return b
}

func (sp *ProcedureBlueprint) Integer(name string) *IntegerParam {
	b := &IntegerParam{}
	b.init(sp.getOrAddParam(name, Integer), b)
	return b
}

func (sp *ProcedureBlueprint) SmallInt(name string) *SmallIntParam {
	b := &SmallIntParam{}
	b.init(sp.getOrAddParam(name, SmallInt), b)
	return b
}

func (sp *ProcedureBlueprint) Numeric(name string) *NumericParam {
	b := &NumericParam{}
	b.init(sp.getOrAddParam(name, Numeric), b)
	return b
}

func (sp *ProcedureBlueprint) Bit(name string) *BitParam {
	b := &BitParam{}
	b.init(sp.getOrAddParam(name, Bit), b)
	return b
}

func (sp *ProcedureBlueprint) Char(name string) *CharParam {
	b := &CharParam{}
	b.init(sp.getOrAddParam(name, Char), b)
	return b
}

func (sp *ProcedureBlueprint) Varchar(name string) *VarcharParam {
	b := &VarcharParam{}
	b.init(sp.getOrAddParam(name, Varchar), b)
	return b
}

func (sp *ProcedureBlueprint) Boolean(name string) *BooleanParam {
	b := &BooleanParam{}
	b.init(sp.getOrAddParam(name, Boolean), b)
	return b
}

func (sp *ProcedureBlueprint) Date(name string) *DateParam {
	b := &DateParam{}
	b.init(sp.getOrAddParam(name, Date), b)
	return b
}

func (sp *ProcedureBlueprint) Timestamp(name string) *TimestampParam {
	b := &TimestampParam{}
	b.init(sp.getOrAddParam(name, Timestamp), b)
	return b
}

func (sp *ProcedureBlueprint) UUID(name string) *UUIDParam {
	b := &UUIDParam{}
	b.init(sp.getOrAddParam(name, UUID), b)
	return b
}

func (sp *ProcedureBlueprint) Text(name string) *TextParam {
	b := &TextParam{}
	b.init(sp.getOrAddParam(name, Text), b)
	return b
}
