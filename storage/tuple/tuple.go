package tuple

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/storage/page"
	"github.com/ymakino/TsubameDB/storage/table/schema"
	"github.com/ymakino/TsubameDB/types"
)

/**
 * Tuple format (values laid out in schema order, no self-describing tags):
 * ------------------------------------------------
 * | INT: 4 bytes BE | BOOLEAN: 1 byte | VARCHAR: 4 byte BE length + bytes |
 * ------------------------------------------------
 */
type Tuple struct {
	rid  *page.RID
	data []byte
}

func NewTuple(rid *page.RID, data []byte) *Tuple {
	return &Tuple{rid, data}
}

// NewTupleFromValues serializes values in schema order.
func NewTupleFromValues(values []types.Value, schema_ *schema.Schema) *Tuple {
	tupleSize := uint32(0)
	for _, v := range values {
		tupleSize += v.Size()
	}

	tuple_ := &Tuple{}
	tuple_.data = make([]byte, 0, tupleSize)
	for i := uint32(0); i < schema_.GetColumnCount(); i++ {
		tuple_.data = append(tuple_.data, values[i].Serialize()...)
	}
	common.SH_Assert(uint32(len(tuple_.data)) == tupleSize,
		"serialized tuple length diverged from computed size")
	return tuple_
}

// GetValues deserializes the whole record driven by schema_. The byte
// stream carries no type tags: a wrong schema surfaces as ErrDecode only
// when it runs past the buffer or hits a negative length or invalid UTF-8;
// otherwise it decodes the bytes as the wrong types without error.
func (t *Tuple) GetValues(schema_ *schema.Schema) ([]types.Value, error) {
	values := make([]types.Value, 0, schema_.GetColumnCount())
	offset := uint32(0)
	for i := uint32(0); i < schema_.GetColumnCount(); i++ {
		col := schema_.GetColumn(i)
		switch col.GetType() {
		case types.Integer:
			if offset+4 > uint32(len(t.data)) {
				return nil, errors.Wrapf(errors.ErrDecode,
					"column %s: buffer underflow", col.GetColumnName())
			}
			v := int32(binary.BigEndian.Uint32(t.data[offset:]))
			values = append(values, types.NewInteger(v))
			offset += 4
		case types.Boolean:
			if offset+1 > uint32(len(t.data)) {
				return nil, errors.Wrapf(errors.ErrDecode,
					"column %s: buffer underflow", col.GetColumnName())
			}
			values = append(values, types.NewBoolean(t.data[offset] != 0))
			offset += 1
		case types.Varchar:
			if offset+4 > uint32(len(t.data)) {
				return nil, errors.Wrapf(errors.ErrDecode,
					"column %s: buffer underflow", col.GetColumnName())
			}
			declared := int32(binary.BigEndian.Uint32(t.data[offset:]))
			offset += 4
			if declared < 0 {
				return nil, errors.Wrapf(errors.ErrDecode,
					"column %s: negative length %d", col.GetColumnName(), declared)
			}
			if offset+uint32(declared) > uint32(len(t.data)) {
				return nil, errors.Wrapf(errors.ErrDecode,
					"column %s: buffer underflow", col.GetColumnName())
			}
			raw := t.data[offset : offset+uint32(declared)]
			if !utf8.Valid(raw) {
				return nil, errors.Wrapf(errors.ErrDecode,
					"column %s: invalid UTF-8", col.GetColumnName())
			}
			values = append(values, types.NewVarchar(string(raw)))
			offset += uint32(declared)
		default:
			return nil, errors.Wrapf(errors.ErrDecode,
				"column %s: unknown type", col.GetColumnName())
		}
	}
	return values, nil
}

// GetValue returns the value at colIndex. The tuple bytes must already
// be known to decode under schema_.
func (t *Tuple) GetValue(schema_ *schema.Schema, colIndex uint32) types.Value {
	values, err := t.GetValues(schema_)
	if err != nil {
		common.SH_Assert(false, "GetValue on malformed tuple: "+err.Error())
	}
	return values[colIndex]
}

func (t *Tuple) Size() uint32 {
	return uint32(len(t.data))
}

func (t *Tuple) Data() []byte {
	return t.data
}

func (t *Tuple) GetRID() *page.RID {
	return t.rid
}

func (t *Tuple) SetRID(rid *page.RID) {
	t.rid = rid
}
