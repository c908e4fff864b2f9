package analyze

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Shell reads SQL from in and executes it against the session database until
// EOF or .quit. Statements end with ';'. User SQL is passed through verbatim;
// the shell never rewrites or filters queries.
func (s *Session) Shell(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pending strings.Builder
	prompt := func() {
		if pending.Len() == 0 {
			fmt.Fprint(out, "czk> ")
		} else {
			fmt.Fprint(out, "...> ")
		}
	}

	prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if pending.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := s.dotCommand(line, out); quit {
				return nil
			}
			prompt()
			continue
		}
		if line == "" && pending.Len() == 0 {
			prompt()
			continue
		}

		if pending.Len() > 0 {
			pending.WriteByte('\n')
		}
		pending.WriteString(line)

		if strings.HasSuffix(line, ";") {
			statement := strings.TrimSuffix(strings.TrimSpace(pending.String()), ";")
			pending.Reset()
			s.execute(statement, out)
		}
		prompt()
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

func (s *Session) dotCommand(line string, out io.Writer) (quit bool) {
	switch strings.Fields(line)[0] {
	case ".quit", ".exit":
		return true
	case ".tables":
		names, err := s.Tables()
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
	case ".schema":
		s.execute(`SELECT sql FROM sqlite_master WHERE type = 'table' ORDER BY name`, out)
	case ".help":
		fmt.Fprintln(out, "Commands: .tables  .schema  .help  .quit")
		fmt.Fprintln(out, "Any other input is executed as SQL; end statements with ';'.")
	default:
		fmt.Fprintf(out, "unknown command %q (try .help)\n", line)
	}
	return false
}

func (s *Session) execute(statement string, out io.Writer) {
	if returnsRows(statement) {
		s.query(statement, out)
		return
	}
	result, err := s.db.Exec(statement)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	if affected, err := result.RowsAffected(); err == nil {
		fmt.Fprintf(out, "ok (%d rows affected)\n", affected)
	} else {
		fmt.Fprintln(out, "ok")
	}
}

func returnsRows(statement string) bool {
	fields := strings.Fields(strings.ToLower(statement))
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "select", "with", "pragma", "explain", "values":
		return true
	}
	return false
}

func (s *Session) query(statement string, out io.Writer) {
	rows, err := s.db.Query(statement)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}

	var records [][]string
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		record := make([]string, len(columns))
		for i, v := range values {
			record[i] = formatValue(v)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, record := range records {
		for i, cell := range record {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Fprintln(out, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	writeRow(columns)
	separators := make([]string, len(columns))
	for i, w := range widths {
		separators[i] = strings.Repeat("-", w)
	}
	writeRow(separators)
	for _, record := range records {
		writeRow(record)
	}
	fmt.Fprintf(out, "(%d rows)\n", len(records))
}

func formatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
