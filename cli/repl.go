package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/peterh/liner"

	"github.com/ymakino/TsubameDB/execution/executors"
	"github.com/ymakino/TsubameDB/tsubame"
)

const historyFile = ".tsubame_history"

// Repl reads one statement per line until EOF, ctrl-c or \q.
func Repl(db *tsubame.TsubameDB, w io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer saveHistory(line)

	for {
		input, err := line.Prompt("tsubame> ")
		if err == io.EOF || err == liner.ErrPromptAborted {
			fmt.Fprintln(w)
			return nil
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == `\q` || strings.EqualFold(input, "quit") || strings.EqualFold(input, "exit") {
			return nil
		}
		line.AppendHistory(input)

		iterator, err := db.ExecuteSQL(input)
		if err != nil {
			fmt.Fprintln(w, err)
			continue
		}
		if err := renderRows(w, iterator); err != nil {
			fmt.Fprintln(w, err)
		}
	}
}

func saveHistory(line *liner.State) {
	f, err := os.Create(historyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tsubame: cannot write %s: %v\n", historyFile, err)
		return
	}
	line.WriteHistory(f)
	f.Close()
}

func renderRows(w io.Writer, iterator executors.RowIterator) error {
	defer iterator.Close()

	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	count := 0
	for {
		row, err := iterator.Next()
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		if count == 0 {
			schema_ := row.Schema()
			header := make([]string, 0, schema_.GetColumnCount())
			for i := uint32(0); i < schema_.GetColumnCount(); i++ {
				header = append(header, schema_.GetColumn(i).GetColumnName())
			}
			tw.SetHeader(header)
		}
		cells := make([]string, 0, len(row.Values()))
		for _, value := range row.Values() {
			cells = append(cells, value.String())
		}
		tw.Append(cells)
		count++
	}
	if count > 0 {
		tw.Render()
	}
	fmt.Fprintf(w, "%d rows\n", count)
	return nil
}
