package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Value is one typed cell of a record: INT, BOOLEAN or VARCHAR.
type Value struct {
	integer   *int32
	boolean   *bool
	varchar   *string
	valueType TypeID
}

func NewInteger(value int32) Value {
	return Value{&value, nil, nil, Integer}
}

func NewBoolean(value bool) Value {
	return Value{nil, &value, nil, Boolean}
}

func NewVarchar(value string) Value {
	return Value{nil, nil, &value, Varchar}
}

func (v Value) ValueType() TypeID { return v.valueType }

func (v Value) ToInteger() int32 { return *v.integer }

func (v Value) ToBoolean() bool { return *v.boolean }

func (v Value) ToVarchar() string { return *v.varchar }

// Size returns the serialized length in bytes.
func (v Value) Size() uint32 {
	switch v.valueType {
	case Integer:
		return 4
	case Boolean:
		return 1
	case Varchar:
		return 4 + uint32(len(*v.varchar))
	}
	return 0
}

// Serialize encodes the value in the on-disk form: integers big-endian,
// booleans one byte, varchars a big-endian u32 length prefix plus bytes.
func (v Value) Serialize() []byte {
	switch v.valueType {
	case Integer:
		buf := new(bytes.Buffer)
		binary.Write(buf, binary.BigEndian, *v.integer)
		return buf.Bytes()
	case Boolean:
		if *v.boolean {
			return []byte{1}
		}
		return []byte{0}
	case Varchar:
		data := []byte(*v.varchar)
		buf := new(bytes.Buffer)
		binary.Write(buf, binary.BigEndian, uint32(len(data)))
		buf.Write(data)
		return buf.Bytes()
	}
	return []byte{}
}

func (v Value) CompareEquals(right Value) bool {
	switch v.valueType {
	case Integer:
		return *v.integer == *right.integer
	case Boolean:
		return *v.boolean == *right.boolean
	case Varchar:
		return *v.varchar == *right.varchar
	}
	return false
}

func (v Value) CompareNotEquals(right Value) bool {
	return !v.CompareEquals(right)
}

func (v Value) CompareLessThan(right Value) bool {
	switch v.valueType {
	case Integer:
		return *v.integer < *right.integer
	case Varchar:
		return *v.varchar < *right.varchar
	}
	return false
}

func (v Value) CompareLessThanOrEqual(right Value) bool {
	return v.CompareLessThan(right) || v.CompareEquals(right)
}

func (v Value) CompareGreaterThan(right Value) bool {
	return !v.CompareLessThanOrEqual(right)
}

func (v Value) CompareGreaterThanOrEqual(right Value) bool {
	return !v.CompareLessThan(right)
}

func (v Value) String() string {
	switch v.valueType {
	case Integer:
		return fmt.Sprintf("%d", *v.integer)
	case Boolean:
		return fmt.Sprintf("%t", *v.boolean)
	case Varchar:
		return *v.varchar
	}
	return "<invalid>"
}

// Interface returns the native Go representation, mainly for CLI printing.
func (v Value) Interface() interface{} {
	switch v.valueType {
	case Integer:
		return *v.integer
	case Boolean:
		return *v.boolean
	case Varchar:
		return *v.varchar
	}
	return nil
}
