package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	summaryKeys = 5
	csvSample   = 10
)

// renderJSON prefixes the re-indented document with a one-line summary of
// its top-level shape. Key order is kept as written.
func renderJSON(data []byte) (string, error) {
	summary, err := summarizeJSON(data)
	if err != nil {
		return "", err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, bytes.TrimSpace(data), "", "  "); err != nil {
		return "", fmt.Errorf("indenting json: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("JSON Data Structure:\n")
	if summary != "" {
		sb.WriteString(summary)
		sb.WriteString("\n\n")
	}
	sb.Write(pretty.Bytes())
	return sb.String(), nil
}

// summarizeJSON describes a top-level object or array. Scalars get no
// summary.
func summarizeJSON(data []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("parsing json: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return "", nil
	}

	var keys []string
	count := 0
	for dec.More() {
		if delim == '{' {
			keyTok, err := dec.Token()
			if err != nil {
				return "", fmt.Errorf("parsing json: %w", err)
			}
			if len(keys) < summaryKeys {
				keys = append(keys, keyTok.(string))
			}
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return "", fmt.Errorf("parsing json: %w", err)
		}
		count++
	}

	if delim == '{' {
		return fmt.Sprintf("Object with %d keys: %s", count, strings.Join(keys, ", ")), nil
	}
	return fmt.Sprintf("Array with %d items", count), nil
}

// renderCSV shows the columns, the header and a sample of rows.
func renderCSV(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("parsing csv: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "CSV Data with columns: %s\n\n", strings.Join(header, ", "))
	sb.WriteString(strings.Join(header, ","))
	sb.WriteString("\n")

	rows := 0
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing csv: %w", err)
		}
		if rows < csvSample {
			sb.WriteString(strings.Join(row, ","))
			sb.WriteString("\n")
		}
		rows++
	}
	if rows > csvSample {
		fmt.Fprintf(&sb, "... (%d more rows)\n", rows-csvSample)
	}
	return sb.String(), nil
}
