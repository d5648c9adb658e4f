package driver

import "fmt"

// Row is a single fetched result row. Values always carries the columns in
// select order; ByName is populated for the name-keyed fetch styles and is
// nil for FetchIndexed.
type Row struct {
	Columns []string
	Values  []any
	ByName  map[string]any
}

// First returns the first column's value, or nil for an empty row.
func (r Row) First() any {
	if len(r.Values) == 0 {
		return nil
	}
	return r.Values[0]
}

// Get looks up a column by name. It falls back to a positional scan of
// Columns when the row was fetched without a name-keyed view.
func (r Row) Get(name string) (any, bool) {
	if r.ByName != nil {
		v, ok := r.ByName[name]
		return v, ok
	}
	for i, col := range r.Columns {
		if col == name && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return nil, false
}

// shape builds a Row from raw column names and values per the given style.
func shape(cols []string, vals []any, style FetchStyle) Row {
	row := Row{Columns: cols, Values: vals}
	if !style.named() {
		return row
	}
	byName := make(map[string]any, len(cols))
	for i, col := range cols {
		if i >= len(vals) {
			break
		}
		if style == FetchAssocDup {
			if _, dup := byName[col]; dup {
				byName[fmt.Sprintf("%s_%d", col, i)] = vals[i]
				continue
			}
		}
		byName[col] = vals[i]
	}
	row.ByName = byName
	return row
}
