package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Row is a single spreadsheet row: column name -> scalar value.
// Column order from the uploaded file is preserved, so the type marshals
// to a JSON object whose keys appear in the original column order.
type Row struct {
	Columns []string
	Values  map[string]interface{}
}

// NewRow creates an empty row
func NewRow() Row {
	return Row{Values: make(map[string]interface{})}
}

// Set appends a column if not present and assigns its value
func (r *Row) Set(column string, value interface{}) {
	if r.Values == nil {
		r.Values = make(map[string]interface{})
	}
	if _, exists := r.Values[column]; !exists {
		r.Columns = append(r.Columns, column)
	}
	r.Values[column] = value
}

// Get returns the value for a column
func (r Row) Get(column string) (interface{}, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// MarshalJSON emits the row as an object in column order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.Values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, capturing key order from the token stream
func (r *Row) UnmarshalJSON(data []byte) error {
	values := make(map[string]interface{})
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}

	columns, err := objectKeyOrder(data)
	if err != nil {
		return err
	}

	r.Columns = columns
	r.Values = values
	return nil
}

// objectKeyOrder scans the top-level keys of a JSON object in order
func objectKeyOrder(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("row must be a JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token in row object: %v", tok)
		}
		keys = append(keys, key)

		// Skip the value, whatever shape it takes
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
	}

	return keys, nil
}

// Sheet is an uploaded trade sheet owned by a client. ProcessedRows holds
// the zero-based indexes of rows that currently have a stored rationale,
// kept sorted with no duplicates.
type Sheet struct {
	ID            string    `json:"id"`
	ClientID      string    `json:"client_id"`
	FileName      string    `json:"file_name"`
	UploadDate    string    `json:"upload_date"` // YYYY-MM-DD
	RowsData      []Row     `json:"rows_data"`
	ProcessedRows []int     `json:"processed_rows"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RowCount returns the number of data rows in the sheet
func (s *Sheet) RowCount() int {
	return len(s.RowsData)
}
