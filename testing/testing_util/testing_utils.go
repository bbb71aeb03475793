package testing_util

import (
	"github.com/ymakino/TsubameDB/types"
)

// GetValue converts plain Go data into an engine value, so fixtures
// can be written as untyped literals.
func GetValue(data interface{}) (value types.Value) {
	switch v := data.(type) {
	case int:
		value = types.NewInteger(int32(v))
	case int32:
		value = types.NewInteger(v)
	case string:
		value = types.NewVarchar(v)
	case bool:
		value = types.NewBoolean(v)
	case types.Value:
		return v
	}
	return
}

func GetValueType(data interface{}) types.TypeID {
	switch v := data.(type) {
	case int, int32:
		return types.Integer
	case string:
		return types.Varchar
	case bool:
		return types.Boolean
	case types.Value:
		return v.ValueType()
	}
	panic("not implemented")
}

// MakeRecord converts one fixture row.
func MakeRecord(data ...interface{}) []types.Value {
	values := make([]types.Value, 0, len(data))
	for _, d := range data {
		values = append(values, GetValue(d))
	}
	return values
}
