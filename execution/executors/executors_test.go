package executors

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ymakino/TsubameDB/catalog"
	"github.com/ymakino/TsubameDB/execution/expression"
	"github.com/ymakino/TsubameDB/execution/plans"
	"github.com/ymakino/TsubameDB/storage/access"
	"github.com/ymakino/TsubameDB/storage/buffer"
	"github.com/ymakino/TsubameDB/storage/disk"
	"github.com/ymakino/TsubameDB/storage/index"
	"github.com/ymakino/TsubameDB/storage/table/column"
	"github.com/ymakino/TsubameDB/storage/table/schema"
	"github.com/ymakino/TsubameDB/testing/testing_util"
	"github.com/ymakino/TsubameDB/types"
)

func newContextForTesting() (*ExecutorContext, *ExecutionEngine) {
	diskManager := disk.NewVirtualDiskManagerImpl()
	catalog_ := catalog.NewCatalog()
	storageManager := access.NewStorageManager(catalog_, diskManager, buffer.NewBufferCache(diskManager, 8))
	indexManager := index.NewIndexManager(catalog_, storageManager)
	storageManager.SetIndexNotifier(indexManager)
	context := NewExecutorContext(catalog_, storageManager, indexManager)
	return context, NewExecutionEngine(context)
}

func studentsSchema() *schema.Schema {
	return schema.NewSchema([]*column.Column{
		column.NewColumn("id", types.Integer, 0),
		column.NewColumn("name", types.Varchar, 50),
		column.NewColumn("active", types.Boolean, 0),
	})
}

func createStudents(t *testing.T, context *ExecutorContext, rows [][]types.Value) {
	t.Helper()
	_, err := context.GetStorageManager().CreateTable("students", studentsSchema(), "students.db")
	require.NoError(t, err)
	for _, row := range rows {
		_, err := context.GetStorageManager().Insert("students", row)
		require.NoError(t, err)
	}
}

func student(id int32, name string, active bool) []types.Value {
	return testing_util.MakeRecord(id, name, active)
}

func createEnrollments(t *testing.T, context *ExecutorContext, rows [][]types.Value) {
	t.Helper()
	schema_ := schema.NewSchema([]*column.Column{
		column.NewColumn("enroll_id", types.Integer, 0),
		column.NewColumn("student_id", types.Integer, 0),
		column.NewColumn("course", types.Varchar, 50),
	})
	_, err := context.GetStorageManager().CreateTable("enrollments", schema_, "enrollments.db")
	require.NoError(t, err)
	for _, row := range rows {
		_, err := context.GetStorageManager().Insert("enrollments", row)
		require.NoError(t, err)
	}
}

func enrollment(id int32, studentID int32, course string) []types.Value {
	return testing_util.MakeRecord(id, studentID, course)
}

func drain(t *testing.T, iterator RowIterator) []*Row {
	t.Helper()
	defer iterator.Close()
	rows := make([]*Row, 0)
	for {
		row, err := iterator.Next()
		require.NoError(t, err)
		if row == nil {
			return rows
		}
		rows = append(rows, row)
	}
}

func TestSeqScanExecutor(t *testing.T) {
	context, engine := newContextForTesting()
	createStudents(t, context, [][]types.Value{
		student(1, "Alice", true),
		student(2, "Bob", false),
	})

	rows := drain(t, engine.Execute(plans.NewSeqScanPlanNode("students")))
	require.Len(t, rows, 2)
	require.Equal(t, "Alice", rows[0].GetValue(1).ToVarchar())
	require.Equal(t, "Bob", rows[1].GetValue(1).ToVarchar())
	require.NotNil(t, rows[0].GetRID())
	require.EqualValues(t, 3, rows[0].Schema().GetColumnCount())
}

func TestSeqScanMissingTable(t *testing.T) {
	_, engine := newContextForTesting()
	iterator := engine.Execute(plans.NewSeqScanPlanNode("missing"))
	defer iterator.Close()
	_, err := iterator.Next()
	require.Error(t, err)
}

func TestFilterNotAndOr(t *testing.T) {
	context, engine := newContextForTesting()
	createStudents(t, context, [][]types.Value{
		student(1, "A", true),
		student(2, "B", false),
		student(3, "C", true),
		student(4, "D", false),
	})

	schema_ := studentsSchema()
	// active = true OR id < 2
	activeIsTrue, err := expression.NewEqualityPredicate(schema_, 2, types.NewBoolean(true))
	require.NoError(t, err)
	idBelowTwo, err := expression.NewComparisonPredicate(schema_, 0, expression.LessThan, 2)
	require.NoError(t, err)
	predicate := expression.NewOrPredicate(activeIsTrue, idBelowTwo)

	rows := drain(t, engine.Execute(
		plans.NewFilterPlanNode(plans.NewSeqScanPlanNode("students"), predicate)))
	require.Len(t, rows, 2)
	require.EqualValues(t, 1, rows[0].GetValue(0).ToInteger())
	require.EqualValues(t, 3, rows[1].GetValue(0).ToInteger())

	// NOT (active = true) AND id >= 2
	idAtLeastTwo, err := expression.NewComparisonPredicate(schema_, 0, expression.GreaterThanOrEqual, 2)
	require.NoError(t, err)
	negated := expression.NewAndPredicate(expression.NewNotPredicate(activeIsTrue), idAtLeastTwo)

	rows = drain(t, engine.Execute(
		plans.NewFilterPlanNode(plans.NewSeqScanPlanNode("students"), negated)))
	require.Len(t, rows, 2)
	require.EqualValues(t, 2, rows[0].GetValue(0).ToInteger())
	require.EqualValues(t, 4, rows[1].GetValue(0).ToInteger())
}

func TestIndexScanExecutors(t *testing.T) {
	context, engine := newContextForTesting()
	createStudents(t, context, nil)
	require.NoError(t, context.GetIndexManager().CreateIndex("id_idx", "students", "id", "id_idx.idx"))
	for i := int32(0); i < 50; i++ {
		_, err := context.GetStorageManager().Insert("students", student(i, "s", true))
		require.NoError(t, err)
	}

	rows := drain(t, engine.Execute(plans.NewIndexEqualityScanPlanNode("id_idx", 7)))
	require.Len(t, rows, 1)
	require.EqualValues(t, 7, rows[0].GetValue(0).ToInteger())

	rows = drain(t, engine.Execute(plans.NewIndexRangeScanPlanNode("id_idx", 5, 12)))
	require.Len(t, rows, 8)
	for i, row := range rows {
		require.EqualValues(t, 5+int32(i), row.GetValue(0).ToInteger())
	}

	// contradictory bounds yield an empty iterator, not an error
	rows = drain(t, engine.Execute(plans.NewIndexRangeScanPlanNode("id_idx", 1, 0)))
	require.Empty(t, rows)
}

func TestHashJoinCardinality(t *testing.T) {
	context, engine := newContextForTesting()
	createStudents(t, context, [][]types.Value{
		student(1, "Alice", true),
		student(2, "Bob", false),
		student(2, "Bobby", true),
		student(3, "Eve", true),
	})
	createEnrollments(t, context, [][]types.Value{
		enrollment(100, 1, "Math"),
		enrollment(101, 1, "Physics"),
		enrollment(102, 2, "Chemistry"),
		enrollment(103, 2, "Biology"),
		enrollment(104, 3, "Math"),
	})

	join := plans.NewHashJoinPlanNode(
		plans.NewSeqScanPlanNode("students"), plans.NewSeqScanPlanNode("enrollments"),
		"id", "student_id")
	rows := drain(t, engine.Execute(join))
	require.Len(t, rows, 7)
	for _, row := range rows {
		require.EqualValues(t, 6, row.Schema().GetColumnCount())
		require.Equal(t, row.GetValue(0).ToInteger(), row.GetValue(4).ToInteger())
	}
	// probe-side order is preserved
	require.Equal(t, "Math", rows[0].GetValue(5).ToVarchar())
	require.Equal(t, "Math", rows[6].GetValue(5).ToVarchar())
}

func TestProjectionAfterJoin(t *testing.T) {
	context, engine := newContextForTesting()
	createStudents(t, context, [][]types.Value{
		student(1, "Alice", true),
		student(2, "Bob", false),
		student(2, "Bobby", true),
		student(3, "Eve", true),
	})
	createEnrollments(t, context, [][]types.Value{
		enrollment(100, 1, "Math"),
		enrollment(101, 1, "Physics"),
		enrollment(102, 2, "Chemistry"),
		enrollment(103, 2, "Biology"),
		enrollment(104, 3, "Math"),
	})

	combined := schema.NewSchema(append(studentsSchema().GetColumns(),
		column.NewColumn("enroll_id", types.Integer, 0),
		column.NewColumn("student_id", types.Integer, 0),
		column.NewColumn("course", types.Varchar, 50)))
	activeIsTrue, err := expression.NewEqualityPredicate(combined, 2, types.NewBoolean(true))
	require.NoError(t, err)

	plan := plans.NewProjectionPlanNode(
		plans.NewFilterPlanNode(
			plans.NewHashJoinPlanNode(
				plans.NewSeqScanPlanNode("students"), plans.NewSeqScanPlanNode("enrollments"),
				"id", "student_id"),
			activeIsTrue),
		[]uint32{1, 5})
	rows := drain(t, engine.Execute(plan))
	require.Len(t, rows, 5)
	for _, row := range rows {
		require.EqualValues(t, 2, row.Schema().GetColumnCount())
	}
	require.Equal(t, "name", rows[0].Schema().GetColumn(0).GetColumnName())
	require.Equal(t, "course", rows[0].Schema().GetColumn(1).GetColumnName())
	require.Equal(t, "Alice", rows[0].GetValue(0).ToVarchar())
}

func TestPlanIteratorLifecycle(t *testing.T) {
	context, engine := newContextForTesting()
	createStudents(t, context, [][]types.Value{student(1, "Alice", true)})

	iterator := engine.Execute(plans.NewSeqScanPlanNode("students"))
	row, err := iterator.Next()
	require.NoError(t, err)
	require.NotNil(t, row)

	// exhaustion closes the pipeline, further calls stay nil
	row, err = iterator.Next()
	require.NoError(t, err)
	require.Nil(t, row)
	row, err = iterator.Next()
	require.NoError(t, err)
	require.Nil(t, row)

	// Close is idempotent and safe before the first Next
	iterator.Close()
	iterator.Close()
	early := engine.Execute(plans.NewSeqScanPlanNode("students"))
	early.Close()
	row, err = early.Next()
	require.NoError(t, err)
	require.Nil(t, row)
}

func TestSliceIterator(t *testing.T) {
	schema_ := schema.NewSchema([]*column.Column{column.NewColumn("result", types.Varchar, 0)})
	rows := []*Row{NewRow([]types.Value{types.NewVarchar("INSERT")}, nil, schema_)}
	iterator := NewSliceIterator(rows)
	row, err := iterator.Next()
	require.NoError(t, err)
	require.Equal(t, "INSERT", row.GetValue(0).ToVarchar())
	row, err = iterator.Next()
	require.NoError(t, err)
	require.Nil(t, row)
}
