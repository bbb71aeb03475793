package tsubame

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ymakino/TsubameDB/errors"
)

func execute(t *testing.T, db *TsubameDB, sql string) [][]string {
	t.Helper()
	iterator, err := db.ExecuteSQL(sql)
	require.NoError(t, err, sql)
	defer iterator.Close()
	rows := make([][]string, 0)
	for {
		row, err := iterator.Next()
		require.NoError(t, err, sql)
		if row == nil {
			return rows
		}
		rendered := make([]string, 0, len(row.Values()))
		for _, value := range row.Values() {
			rendered = append(rendered, value.String())
		}
		rows = append(rows, rendered)
	}
}

func newPopulatedDB(t *testing.T) *TsubameDB {
	t.Helper()
	db := NewVirtualTsubameDB()
	execute(t, db, "CREATE TABLE students (id INT, name VARCHAR(50), active BOOLEAN, INDEX id_idx (id))")
	execute(t, db, "CREATE TABLE enrollments (enroll_id INT, student_id INT, course VARCHAR(50))")
	for _, row := range []string{
		"(1, 'Alice', TRUE)", "(2, 'Bob', FALSE)", "(2, 'Bobby', TRUE)", "(3, 'Eve', TRUE)",
	} {
		execute(t, db, "INSERT INTO students (id, name, active) VALUES "+row)
	}
	for _, row := range []string{
		"(100, 1, 'Math')", "(101, 1, 'Physics')", "(102, 2, 'Chemistry')",
		"(103, 2, 'Biology')", "(104, 3, 'Math')",
	} {
		execute(t, db, "INSERT INTO enrollments (enroll_id, student_id, course) VALUES "+row)
	}
	return db
}

func TestExecuteSQLRoundTrip(t *testing.T) {
	db := NewVirtualTsubameDB()
	defer db.Finalize()

	rows := execute(t, db, "CREATE TABLE students (id INT, name VARCHAR(50), active BOOLEAN)")
	require.Equal(t, [][]string{{"CREATE TABLE", "students"}}, rows)

	rows = execute(t, db, "INSERT INTO students (id, name, active) VALUES (1, 'Alice', TRUE)")
	require.Equal(t, [][]string{{"INSERT", "0", "0"}}, rows)
	rows = execute(t, db, "INSERT INTO students (id, name, active) VALUES (2, 'Bob', FALSE)")
	require.Equal(t, [][]string{{"INSERT", "0", "1"}}, rows)

	rows = execute(t, db, "SELECT * FROM students")
	require.Equal(t, [][]string{
		{"1", "Alice", "true"},
		{"2", "Bob", "false"},
	}, rows)

	rows = execute(t, db, "DELETE FROM students WHERE id = 2")
	require.Equal(t, [][]string{{"DELETE", "1"}}, rows)
	rows = execute(t, db, "SELECT name FROM students")
	require.Equal(t, [][]string{{"Alice"}}, rows)
}

func TestExecuteSQLIndexedEquality(t *testing.T) {
	db := newPopulatedDB(t)
	defer db.Finalize()

	rows := execute(t, db, "SELECT name FROM students WHERE id = 2")
	require.Equal(t, [][]string{{"Bob"}, {"Bobby"}}, rows)

	rows = execute(t, db, "SELECT name FROM students WHERE id = 99")
	require.Empty(t, rows)
}

func TestExecuteSQLRangeQuery(t *testing.T) {
	db := NewVirtualTsubameDB()
	defer db.Finalize()
	execute(t, db, "CREATE TABLE numbers (id INT, INDEX id_idx (id))")
	for i := 0; i < 50; i++ {
		execute(t, db, fmt.Sprintf("INSERT INTO numbers (id) VALUES (%d)", i))
	}

	rows := execute(t, db, "SELECT id FROM numbers WHERE id >= 5 AND id <= 12")
	require.Len(t, rows, 8)
	for i, row := range rows {
		require.Equal(t, fmt.Sprintf("%d", 5+i), row[0])
	}

	// contradictory bounds short-circuit to an empty result
	rows = execute(t, db, "SELECT id FROM numbers WHERE id > 10 AND id < 5")
	require.Empty(t, rows)

	rows = execute(t, db, "SELECT id FROM numbers WHERE id > 47")
	require.Len(t, rows, 2)
}

func TestExecuteSQLFilterNotAndOr(t *testing.T) {
	db := NewVirtualTsubameDB()
	defer db.Finalize()
	execute(t, db, "CREATE TABLE students (id INT, name VARCHAR(50), active BOOLEAN)")
	for _, row := range []string{
		"(1, 'A', TRUE)", "(2, 'B', FALSE)", "(3, 'C', TRUE)", "(4, 'D', FALSE)",
	} {
		execute(t, db, "INSERT INTO students (id, name, active) VALUES "+row)
	}

	rows := execute(t, db, "SELECT id FROM students WHERE active = TRUE OR id < 2")
	require.Equal(t, [][]string{{"1"}, {"3"}}, rows)

	rows = execute(t, db, "SELECT id FROM students WHERE NOT active = TRUE AND id >= 2")
	require.Equal(t, [][]string{{"2"}, {"4"}}, rows)

	// bare boolean column term
	rows = execute(t, db, "SELECT id FROM students WHERE active")
	require.Equal(t, [][]string{{"1"}, {"3"}}, rows)
}

func TestExecuteSQLJoin(t *testing.T) {
	db := newPopulatedDB(t)
	defer db.Finalize()

	rows := execute(t, db,
		"SELECT * FROM students JOIN enrollments ON students.id = enrollments.student_id")
	require.Len(t, rows, 7)
	for _, row := range rows {
		require.Len(t, row, 6)
		require.Equal(t, row[0], row[4])
	}
}

func TestExecuteSQLProjectionAfterJoin(t *testing.T) {
	db := newPopulatedDB(t)
	defer db.Finalize()

	rows := execute(t, db,
		"SELECT name, course FROM students JOIN enrollments ON students.id = enrollments.student_id WHERE active = TRUE")
	require.Len(t, rows, 5)
	require.Equal(t, []string{"Alice", "Math"}, rows[0])
	require.Equal(t, []string{"Alice", "Physics"}, rows[1])
	require.Equal(t, []string{"Bobby", "Chemistry"}, rows[2])
	require.Equal(t, []string{"Bobby", "Biology"}, rows[3])
	require.Equal(t, []string{"Eve", "Math"}, rows[4])
}

func TestExecuteSQLDeleteVariants(t *testing.T) {
	db := newPopulatedDB(t)
	defer db.Finalize()

	rows := execute(t, db, "DELETE FROM students WHERE active = FALSE")
	require.Equal(t, [][]string{{"DELETE", "1"}}, rows)

	// the index no longer serves the deleted row
	rows = execute(t, db, "SELECT name FROM students WHERE id = 2")
	require.Equal(t, [][]string{{"Bobby"}}, rows)

	rows = execute(t, db, "DELETE FROM students")
	require.Equal(t, [][]string{{"DELETE", "3"}}, rows)
	require.Empty(t, execute(t, db, "SELECT * FROM students"))
}

func TestExecuteSQLCreateIndexBulkBuild(t *testing.T) {
	db := NewVirtualTsubameDB()
	defer db.Finalize()
	execute(t, db, "CREATE TABLE students (id INT, name VARCHAR(50), active BOOLEAN)")
	execute(t, db, "INSERT INTO students (id, name, active) VALUES (7, 'Alice', TRUE)")

	rows := execute(t, db, "CREATE INDEX id_idx ON students (id)")
	require.Equal(t, [][]string{{"CREATE INDEX", "id_idx"}}, rows)

	rows = execute(t, db, "SELECT name FROM students WHERE id = 7")
	require.Equal(t, [][]string{{"Alice"}}, rows)
}

func TestExecuteSQLErrors(t *testing.T) {
	db := NewVirtualTsubameDB()
	defer db.Finalize()
	execute(t, db, "CREATE TABLE students (id INT, name VARCHAR(50), active BOOLEAN)")

	_, err := db.ExecuteSQL("SELECT * FROM missing")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = db.ExecuteSQL("SELECT missing FROM students")
	require.True(t, errors.Is(err, errors.ErrSchema))

	_, err = db.ExecuteSQL("INSERT INTO students (id, name) VALUES (1, 'x')")
	require.True(t, errors.Is(err, errors.ErrValue))

	_, err = db.ExecuteSQL("INSERT INTO students (id, id, active) VALUES (1, 2, TRUE)")
	require.True(t, errors.Is(err, errors.ErrValue))

	_, err = db.ExecuteSQL("INSERT INTO students (id, missing, active) VALUES (1, 'x', TRUE)")
	require.True(t, errors.Is(err, errors.ErrSchema))

	_, err = db.ExecuteSQL("SELEKT broken")
	require.True(t, errors.Is(err, errors.ErrParse))
}

func TestExecuteSQLPersistence(t *testing.T) {
	dir := t.TempDir()

	db, err := NewTsubameDB(dir, 256)
	require.NoError(t, err)
	execute(t, db, "CREATE TABLE students (id INT, name VARCHAR(50), active BOOLEAN, INDEX id_idx (id))")
	execute(t, db, "INSERT INTO students (id, name, active) VALUES (1, 'Alice', TRUE)")
	execute(t, db, "INSERT INTO students (id, name, active) VALUES (2, 'Bob', FALSE)")
	db.Finalize()

	// reopen: catalog reloads, indexes rebuild from the heap
	reopened, err := NewTsubameDB(dir, 256)
	require.NoError(t, err)
	defer reopened.Finalize()

	rows := execute(t, reopened, "SELECT name FROM students WHERE id = 2")
	require.Equal(t, [][]string{{"Bob"}}, rows)
	rows = execute(t, reopened, "SELECT * FROM students")
	require.Len(t, rows, 2)
}
