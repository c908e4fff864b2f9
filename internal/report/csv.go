package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// csvColumns is the frozen CSV column contract. Renaming or reordering these
// is a breaking change for every downstream consumer.
var csvColumns = []string{"index", "file_to_keep", "files_to_remove", "count"}

// WriteCSV writes the keep/remove relation. files_to_remove is serialized as
// a JSON array string so the full path list round-trips through the CSV cell.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for _, row := range rows {
		list := row.FilesToRemove
		if list == nil {
			list = []string{}
		}
		removeList, err := json.Marshal(list)
		if err != nil {
			return err
		}
		record := []string{
			strconv.Itoa(row.Index),
			row.FileToKeep,
			string(removeList),
			strconv.Itoa(row.Count),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a previously written keep/remove CSV back into rows.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv report has no header")
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < len(csvColumns) {
			return nil, fmt.Errorf("csv row %d has %d columns, want %d", i, len(record), len(csvColumns))
		}
		index, err := strconv.Atoi(record[0])
		if err != nil {
			index = i
		}
		var removeList []string
		if err := json.Unmarshal([]byte(record[2]), &removeList); err != nil {
			removeList = nil
		}
		count, err := strconv.Atoi(record[3])
		if err != nil {
			count = len(removeList)
		}
		rows = append(rows, Row{
			Index:         index,
			FileToKeep:    record[1],
			FilesToRemove: removeList,
			Count:         count,
		})
	}
	return rows, nil
}

// Marshal JSON arrays with empty slices as [] rather than null so the CSV
// cell always parses back as a list.
func (r Row) MarshalJSON() ([]byte, error) {
	type alias Row
	a := alias(r)
	if a.FilesToRemove == nil {
		a.FilesToRemove = []string{}
	}
	return json.Marshal(a)
}
