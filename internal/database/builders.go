package database

// columnBuilder carries the modifiers every column type supports. Each
// per-type builder embeds it with itself as T so that chained calls keep the
// concrete builder type.
type columnBuilder[T any] struct {
	col  *Column
	self *T
}

func (b *columnBuilder[T]) init(col *Column, self *T) {
	b.col = col
	b.self = self
}

// Column returns the underlying column.
func (b columnBuilder[T]) Column() *Column {
	return b.col
}

// Null allows NULL values.
func (b columnBuilder[T]) Null() *T {
	b.col.Nullable = true
	return b.self
}

// NotNull forbids NULL values.
func (b columnBuilder[T]) NotNull() *T {
	b.col.Nullable = false
	return b.self
}

// Default sets the raw SQL default expression. Without an argument the
// type's natural default is used (see DefaultExpr).
func (b columnBuilder[T]) Default(expr ...string) *T {
	if len(expr) > 0 {
		b.col.Default = expr[0]
	} else {
		b.col.Default = DefaultExpr(b.col.Type)
	}
	return b.self
}

func (b columnBuilder[T]) identity() *T {
	b.col.Identity = true
	return b.self
}

func (b columnBuilder[T]) index() *T {
	b.col.Index = true
	return b.self
}

func (b columnBuilder[T]) unique() *T {
	b.col.Unique = true
	return b.self
}

func (b columnBuilder[T]) length(n int) *T {
	b.col.Length = n
	return b.self
}

func (b columnBuilder[T]) precision(n int) *T {
	b.col.Precision = n
	return b.self
}

func (b columnBuilder[T]) scale(n int) *T {
	b.col.Scale = n
	return b.self
}

type BigIntColumn struct{ columnBuilder[BigIntColumn] }

// Identity makes the column GENERATED ALWAYS AS IDENTITY.
func (b *BigIntColumn) Identity() *BigIntColumn { return b.identity() }
func (b *BigIntColumn) Index() *BigIntColumn    { return b.index() }
func (b *BigIntColumn) Unique() *BigIntColumn   { return b.unique() }

type IntegerColumn struct{ columnBuilder[IntegerColumn] }

func (b *IntegerColumn) Identity() *IntegerColumn { return b.identity() }
func (b *IntegerColumn) Index() *IntegerColumn    { return b.index() }
func (b *IntegerColumn) Unique() *IntegerColumn   { return b.unique() }

type SmallIntColumn struct{ columnBuilder[SmallIntColumn] }

func (b *SmallIntColumn) Identity() *SmallIntColumn { return b.identity() }
func (b *SmallIntColumn) Index() *SmallIntColumn    { return b.index() }
func (b *SmallIntColumn) Unique() *SmallIntColumn   { return b.unique() }

type NumericColumn struct{ columnBuilder[NumericColumn] }

func (b *NumericColumn) Precision(n int) *NumericColumn { return b.precision(n) }
func (b *NumericColumn) Scale(n int) *NumericColumn     { return b.scale(n) }

type BitColumn struct{ columnBuilder[BitColumn] }

// N sets the number of bits.
func (b *BitColumn) N(n int) *BitColumn { return b.length(n) }

type CharColumn struct{ columnBuilder[CharColumn] }

func (b *CharColumn) Length(n int) *CharColumn { return b.length(n) }
func (b *CharColumn) Index() *CharColumn       { return b.index() }
func (b *CharColumn) Unique() *CharColumn      { return b.unique() }

type VarcharColumn struct{ columnBuilder[VarcharColumn] }

func (b *VarcharColumn) Length(n int) *VarcharColumn { return b.length(n) }
func (b *VarcharColumn) Index() *VarcharColumn       { return b.index() }
func (b *VarcharColumn) Unique() *VarcharColumn      { return b.unique() }

type BooleanColumn struct{ columnBuilder[BooleanColumn] }

type DateColumn struct{ columnBuilder[DateColumn] }

func (b *DateColumn) Index() *DateColumn { return b.index() }

type TimestampColumn struct{ columnBuilder[TimestampColumn] }

// Precision sets the fractional seconds precision (0-6).
func (b *TimestampColumn) Precision(n int) *TimestampColumn { return b.precision(n) }
func (b *TimestampColumn) Index() *TimestampColumn          { return b.index() }

type UUIDColumn struct{ columnBuilder[UUIDColumn] }

// Identity marks the column as a generated key: unless another default is
// set, it defaults to uuidv7().
func (b *UUIDColumn) Identity() *UUIDColumn { return b.identity() }
func (b *UUIDColumn) Index() *UUIDColumn    { return b.index() }
func (b *UUIDColumn) Unique() *UUIDColumn   { return b.unique() }

type TextColumn struct{ columnBuilder[TextColumn] }

// EffectiveDefault is the default expression the column should carry in the
// database. UUID identity columns without an explicit default get uuidv7().
func (c *Column) EffectiveDefault() string {
	if c.Type == UUID && c.Identity && c.Default == "" {
		return DefaultExpr(UUID)
	}
	return c.Default
}
