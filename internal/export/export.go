// Package export renders listings as downloadable CSV or pretty-printed
// JSON. The CSV header row comes from the struct's field names (overridable
// with a `csv` tag); fields containing commas or quotes are quoted and
// quote-escaped.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// ErrNoData is returned when there is nothing to export.
var ErrNoData = errors.New("no data to export")

// WriteCSV writes a slice of structs (or pointers to structs) as CSV.
func WriteCSV(w io.Writer, records any) error {
	v := reflect.ValueOf(records)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("export: expected a slice, got %s", v.Kind())
	}
	if v.Len() == 0 {
		return ErrNoData
	}

	first := deref(v.Index(0))
	if first.Kind() != reflect.Struct {
		return fmt.Errorf("export: expected a slice of structs, got slice of %s", first.Kind())
	}
	t := first.Type()

	var header []string
	var fields []int
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("csv")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		header = append(header, name)
		fields = append(fields, i)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < v.Len(); i++ {
		rec := deref(v.Index(i))
		row := make([]string, 0, len(fields))
		for _, fi := range fields {
			row = append(row, formatValue(rec.Field(fi)))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the records pretty-printed with two-space indentation.
func WriteJSON(w io.Writer, records any) error {
	v := reflect.ValueOf(records)
	if v.Kind() == reflect.Slice && v.Len() == 0 {
		return ErrNoData
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	return v
}

func formatValue(v reflect.Value) string {
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v.Interface())
}
