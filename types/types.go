// Package types defines the compile-time data type lattice used to decide
// whether a value may be moved into a given storage slot.
//
// Types carry no runtime representation. The lattice is:
//
//	Number
//	├── WholeNumber: Byte, Short, Int, Long
//	└── FloatingPoint: Float, Double
//	String
//	List, List<T>
//	Compound
//	Any
//
// Any stands for "no static type is known". It is compatible with everything
// in a conversion, but it is not a supertype in the IsA sense: only Any IsA
// Any.
package types

import (
	"fmt"
	"strings"
)

// Kind identifies one node of the lattice.
type Kind uint8

const (
	KindAny Kind = iota
	KindNumber
	KindWholeNumber
	KindFloatingPoint
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindList
	KindCompound
)

var kindNames = map[Kind]string{
	KindAny:           "any",
	KindNumber:        "number",
	KindWholeNumber:   "whole_number",
	KindFloatingPoint: "floating_point",
	KindByte:          "byte",
	KindShort:         "short",
	KindInt:           "int",
	KindLong:          "long",
	KindFloat:         "float",
	KindDouble:        "double",
	KindString:        "string",
	KindList:          "list",
	KindCompound:      "compound",
}

// storageNames holds the canonical storage format of the concrete kinds.
var storageNames = map[Kind]string{
	KindByte:   "byte",
	KindShort:  "short",
	KindInt:    "int",
	KindLong:   "long",
	KindFloat:  "float",
	KindDouble: "double",
	KindString: "str",
}

var parents = map[Kind]Kind{
	KindWholeNumber:   KindNumber,
	KindFloatingPoint: KindNumber,
	KindByte:          KindWholeNumber,
	KindShort:         KindWholeNumber,
	KindInt:           KindWholeNumber,
	KindLong:          KindWholeNumber,
	KindFloat:         KindFloatingPoint,
	KindDouble:        KindFloatingPoint,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// DataType is a type tag. Lists optionally carry an element kind; a list with
// element KindAny is the unparametrized list. DataType values are comparable.
type DataType struct {
	kind Kind
	elem Kind
}

var (
	Any           = DataType{kind: KindAny}
	Number        = DataType{kind: KindNumber}
	WholeNumber   = DataType{kind: KindWholeNumber}
	FloatingPoint = DataType{kind: KindFloatingPoint}
	Byte          = DataType{kind: KindByte}
	Short         = DataType{kind: KindShort}
	Int           = DataType{kind: KindInt}
	Long          = DataType{kind: KindLong}
	Float         = DataType{kind: KindFloat}
	Double        = DataType{kind: KindDouble}
	String        = DataType{kind: KindString}
	List          = DataType{kind: KindList}
	Compound      = DataType{kind: KindCompound}
)

// ListOf returns the list type with the given element kind.
func ListOf(elem Kind) DataType {
	return DataType{kind: KindList, elem: elem}
}

// Kind returns the lattice node of the type.
func (t DataType) Kind() Kind {
	return t.kind
}

// Elem returns the element kind of a list type.
func (t DataType) Elem() Kind {
	return t.elem
}

func (t DataType) String() string {
	if t.kind == KindList && t.elem != KindAny {
		return fmt.Sprintf("list[%s]", t.elem)
	}
	return t.kind.String()
}

// IsConcrete reports whether the type denotes exactly one storage format.
func (t DataType) IsConcrete() bool {
	_, ok := storageNames[t.kind]
	return ok
}

// Storage returns the canonical storage format name of a concrete type, or ""
// for non-concrete types.
func (t DataType) Storage() string {
	return storageNames[t.kind]
}

// Parent returns the direct supertype. The second return value is false at
// the top of a chain.
func (t DataType) Parent() (DataType, bool) {
	if t.kind == KindList && t.elem != KindAny {
		return List, true
	}
	p, ok := parents[t.kind]
	if !ok {
		return DataType{}, false
	}
	return DataType{kind: p}, true
}

// IsA reports whether t is super or one of its subtypes.
func (t DataType) IsA(super DataType) bool {
	cur := t
	for {
		if cur == super {
			return true
		}
		next, ok := cur.Parent()
		if !ok {
			return false
		}
		cur = next
	}
}

// IsAny reports whether t is a subtype of at least one of the given types.
func (t DataType) IsAny(preds ...DataType) bool {
	for _, p := range preds {
		if t.IsA(p) {
			return true
		}
	}
	return false
}

// Parse returns the type named by s, e.g. "int", "double", "list[int]".
func Parse(s string) (DataType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return Any, nil
	}
	if strings.HasPrefix(name, "list[") && strings.HasSuffix(name, "]") {
		elem, err := Parse(name[len("list[") : len(name)-1])
		if err != nil {
			return DataType{}, err
		}
		if elem.kind == KindList {
			return DataType{}, fmt.Errorf("nested list type %q is not supported", s)
		}
		return ListOf(elem.kind), nil
	}
	switch name {
	case "str":
		return String, nil
	case "bool", "boolean":
		return Byte, nil
	}
	for k, n := range kindNames {
		if n == name {
			return DataType{kind: k}, nil
		}
	}
	return DataType{}, fmt.Errorf("unknown data type %q", s)
}
