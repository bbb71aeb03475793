package column

import (
	"github.com/ymakino/TsubameDB/types"
)

type Column struct {
	columnName string
	columnType types.TypeID
	length     uint32 // byte-length constraint for VARCHAR columns, 0 otherwise
}

func NewColumn(name string, columnType types.TypeID, length uint32) *Column {
	if columnType != types.Varchar {
		return &Column{name, columnType, 0}
	}
	return &Column{name, types.Varchar, length}
}

func (c *Column) GetColumnName() string {
	return c.columnName
}

func (c *Column) GetType() types.TypeID {
	return c.columnType
}

// Length is the declared byte-length constraint. Zero means unconstrained.
func (c *Column) Length() uint32 {
	return c.length
}
