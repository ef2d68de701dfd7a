// Package cparse - static type model.
//
// The instrumentation engine needs just enough typing to answer three
// questions about an expression: is it integer, is it floating point, and
// what is its exact written C type (for the synthesized temporary and the
// printf format code). The model below covers the builtin arithmetic types,
// pointers, arrays, struct/union types with typed fields, and function
// types; everything else classifies as "other" and is never instrumented.
package cparse

import "strings"

// TypeClass is the coarse classification the eligibility filter works with.
type TypeClass int

const (
	// ClassOther covers pointers, aggregates, void and functions.
	ClassOther TypeClass = iota
	// ClassInteger covers _Bool, the char/short/int/long family.
	ClassInteger
	// ClassFloating covers float, double and long double.
	ClassFloating
)

// BuiltinKind identifies one builtin arithmetic type. Plain char is kept
// distinct from signed char so the printf format table can mirror the
// distinct signed/unsigned codes per width.
type BuiltinKind int

const (
	Void BuiltinKind = iota
	Bool
	Char // plain char, treated as signed for formatting
	SChar
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LongLong
	ULongLong
	Float
	Double
	LongDouble
)

// TypeForm discriminates the closed set of type shapes.
type TypeForm int

const (
	FormBuiltin TypeForm = iota
	FormPointer
	FormArray
	FormRecord
	FormFunc
)

// Type is a C type. Types are compared structurally (TypesEqual); the
// parser does not intern them.
type Type struct {
	Form    TypeForm
	Builtin BuiltinKind // valid for FormBuiltin
	Elem    *Type       // pointee for FormPointer, element for FormArray
	Record  *Record     // valid for FormRecord
	Ret     *Type       // result type for FormFunc
}

// Record is a struct or union definition with its typed fields.
type Record struct {
	Tag    string
	Union  bool
	Fields []*Field
}

// Field is one struct/union member.
type Field struct {
	Name string
	Type *Type
}

// FindField returns the field with the given name, or nil.
func (r *Record) FindField(name string) *Field {
	for _, f := range r.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Singleton builtin types. Shared freely; Type values are immutable after
// construction.
var (
	TypeVoid       = &Type{Form: FormBuiltin, Builtin: Void}
	TypeBool       = &Type{Form: FormBuiltin, Builtin: Bool}
	TypeChar       = &Type{Form: FormBuiltin, Builtin: Char}
	TypeSChar      = &Type{Form: FormBuiltin, Builtin: SChar}
	TypeUChar      = &Type{Form: FormBuiltin, Builtin: UChar}
	TypeShort      = &Type{Form: FormBuiltin, Builtin: Short}
	TypeUShort     = &Type{Form: FormBuiltin, Builtin: UShort}
	TypeInt        = &Type{Form: FormBuiltin, Builtin: Int}
	TypeUInt       = &Type{Form: FormBuiltin, Builtin: UInt}
	TypeLong       = &Type{Form: FormBuiltin, Builtin: Long}
	TypeULong      = &Type{Form: FormBuiltin, Builtin: ULong}
	TypeLongLong   = &Type{Form: FormBuiltin, Builtin: LongLong}
	TypeULongLong  = &Type{Form: FormBuiltin, Builtin: ULongLong}
	TypeFloat      = &Type{Form: FormBuiltin, Builtin: Float}
	TypeDouble     = &Type{Form: FormBuiltin, Builtin: Double}
	TypeLongDouble = &Type{Form: FormBuiltin, Builtin: LongDouble}
)

// PointerTo returns a pointer type to elem.
func PointerTo(elem *Type) *Type {
	return &Type{Form: FormPointer, Elem: elem}
}

// ArrayOf returns an array type of elem. The length is not tracked; the
// engine only needs element types for subscript expressions.
func ArrayOf(elem *Type) *Type {
	return &Type{Form: FormArray, Elem: elem}
}

// FuncReturning returns a function type with the given result type.
// Parameter types are not tracked; calls are typed by the result alone.
func FuncReturning(ret *Type) *Type {
	return &Type{Form: FormFunc, Ret: ret}
}

// Class returns the coarse classification of the type.
func (t *Type) Class() TypeClass {
	if t == nil || t.Form != FormBuiltin {
		return ClassOther
	}
	switch t.Builtin {
	case Bool, Char, SChar, UChar, Short, UShort, Int, UInt,
		Long, ULong, LongLong, ULongLong:
		return ClassInteger
	case Float, Double, LongDouble:
		return ClassFloating
	}
	return ClassOther
}

// IsInteger reports whether the type is an integer type.
func (t *Type) IsInteger() bool { return t.Class() == ClassInteger }

// IsFloating reports whether the type is a floating-point type.
func (t *Type) IsFloating() bool { return t.Class() == ClassFloating }

// IsUnsigned reports whether the type is an unsigned integer type.
func (t *Type) IsUnsigned() bool {
	if t == nil || t.Form != FormBuiltin {
		return false
	}
	switch t.Builtin {
	case Bool, UChar, UShort, UInt, ULong, ULongLong:
		return true
	}
	return false
}

// Bits returns the width in bits of an integer type under the LP64 data
// model, or 0 for non-integer types. Used for integer-literal identity.
func (t *Type) Bits() int {
	if t == nil || t.Form != FormBuiltin {
		return 0
	}
	switch t.Builtin {
	case Bool:
		return 1
	case Char, SChar, UChar:
		return 8
	case Short, UShort:
		return 16
	case Int, UInt:
		return 32
	case Long, ULong, LongLong, ULongLong:
		return 64
	}
	return 0
}

// builtinNames maps builtin kinds to their canonical C spelling.
var builtinNames = map[BuiltinKind]string{
	Void:       "void",
	Bool:       "_Bool",
	Char:       "char",
	SChar:      "signed char",
	UChar:      "unsigned char",
	Short:      "short",
	UShort:     "unsigned short",
	Int:        "int",
	UInt:       "unsigned int",
	Long:       "long",
	ULong:      "unsigned long",
	LongLong:   "long long",
	ULongLong:  "unsigned long long",
	Float:      "float",
	Double:     "double",
	LongDouble: "long double",
}

// String renders the type in C syntax. The rendering is only used for
// builtin types (the synthesized temporary declaration) and diagnostics.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Form {
	case FormBuiltin:
		return builtinNames[t.Builtin]
	case FormPointer:
		return t.Elem.String() + " *"
	case FormArray:
		return t.Elem.String() + " []"
	case FormRecord:
		kw := "struct"
		if t.Record.Union {
			kw = "union"
		}
		if t.Record.Tag == "" {
			return kw
		}
		return kw + " " + t.Record.Tag
	case FormFunc:
		return t.Ret.String() + " ()"
	}
	return "<invalid>"
}

// TypesEqual reports structural type equality. Records compare by pointer
// identity (one *Record per definition), which matches how a type checker
// resolves a written type back to its declaration.
func TypesEqual(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Form != b.Form {
		return false
	}
	switch a.Form {
	case FormBuiltin:
		return a.Builtin == b.Builtin
	case FormPointer, FormArray:
		return TypesEqual(a.Elem, b.Elem)
	case FormRecord:
		return a.Record == b.Record
	case FormFunc:
		return TypesEqual(a.Ret, b.Ret)
	}
	return false
}

// integer conversion rank per C11 6.3.1.1, collapsed to what the usual
// arithmetic conversions below need.
func intRank(k BuiltinKind) int {
	switch k {
	case Bool:
		return 0
	case Char, SChar, UChar:
		return 1
	case Short, UShort:
		return 2
	case Int, UInt:
		return 3
	case Long, ULong:
		return 4
	case LongLong, ULongLong:
		return 5
	}
	return 3
}

func floatRank(k BuiltinKind) int {
	switch k {
	case Float:
		return 0
	case Double:
		return 1
	case LongDouble:
		return 2
	}
	return 0
}

// promote applies the integer promotions: anything below int becomes int.
func promote(t *Type) *Type {
	if t.IsInteger() && intRank(t.Builtin) < intRank(Int) {
		return TypeInt
	}
	return t
}

// UsualArithmetic applies a simplified form of the usual arithmetic
// conversions: floating point dominates by rank, otherwise the higher
// integer rank wins and unsignedness is sticky at equal rank. Non-arithmetic
// operands fall back to int, which keeps downstream typing total.
func UsualArithmetic(a, b *Type) *Type {
	if a.IsFloating() || b.IsFloating() {
		if a.IsFloating() && b.IsFloating() {
			if floatRank(a.Builtin) >= floatRank(b.Builtin) {
				return a
			}
			return b
		}
		if a.IsFloating() {
			return a
		}
		return b
	}
	if !a.IsInteger() || !b.IsInteger() {
		return TypeInt
	}
	a, b = promote(a), promote(b)
	ra, rb := intRank(a.Builtin), intRank(b.Builtin)
	switch {
	case ra > rb:
		return a
	case rb > ra:
		return b
	case a.IsUnsigned():
		return a
	default:
		return b
	}
}

// unsignedVariant returns the unsigned counterpart of an integer kind.
func unsignedVariant(k BuiltinKind) BuiltinKind {
	switch k {
	case Char, SChar:
		return UChar
	case Short:
		return UShort
	case Int:
		return UInt
	case Long:
		return ULong
	case LongLong:
		return ULongLong
	}
	return k
}

// suffixedIntType maps an integer-literal suffix to its type.
// The suffix is the trailing run of u/U/l/L characters, lowercased.
func suffixedIntType(suffix string) *Type {
	unsigned := strings.Contains(suffix, "u")
	ls := strings.Count(suffix, "l")
	var base *Type
	switch {
	case ls >= 2:
		base = TypeLongLong
	case ls == 1:
		base = TypeLong
	default:
		base = TypeInt
	}
	if unsigned {
		return &Type{Form: FormBuiltin, Builtin: unsignedVariant(base.Builtin)}
	}
	return base
}

// suffixedFloatType maps a floating-literal suffix to its type.
func suffixedFloatType(suffix string) *Type {
	switch suffix {
	case "f":
		return TypeFloat
	case "l":
		return TypeLongDouble
	default:
		return TypeDouble
	}
}
