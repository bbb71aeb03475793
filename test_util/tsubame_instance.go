package test_util

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ymakino/TsubameDB/storage/page"
	"github.com/ymakino/TsubameDB/storage/table/column"
	"github.com/ymakino/TsubameDB/storage/table/schema"
	"github.com/ymakino/TsubameDB/tsubame"
	"github.com/ymakino/TsubameDB/types"
)

// NewTsubameInstanceForTesting wires the engine stack onto the
// in-memory disk manager with a small cache, so cache eviction paths
// get exercised.
func NewTsubameInstanceForTesting() *tsubame.TsubameInstance {
	return tsubame.NewVirtualTsubameInstance(8)
}

func CreateTable(t *testing.T, instance *tsubame.TsubameInstance, name string, columns []*column.Column) {
	t.Helper()
	_, err := instance.GetStorageManager().CreateTable(name, schema.NewSchema(columns), name+".db")
	require.NoError(t, err)
}

func InsertRows(t *testing.T, instance *tsubame.TsubameInstance, name string, rows [][]types.Value) []page.RID {
	t.Helper()
	rids := make([]page.RID, 0, len(rows))
	for _, values := range rows {
		rid, err := instance.GetStorageManager().Insert(name, values)
		require.NoError(t, err)
		rids = append(rids, *rid)
	}
	return rids
}

// ScanAll collects every live record of a table in scan order.
func ScanAll(t *testing.T, instance *tsubame.TsubameInstance, name string) [][]types.Value {
	t.Helper()
	collected := make([][]types.Value, 0)
	err := instance.GetStorageManager().Scan(name, func(rid page.RID, values []types.Value) error {
		collected = append(collected, values)
		return nil
	})
	require.NoError(t, err)
	return collected
}
