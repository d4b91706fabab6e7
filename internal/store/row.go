package store

// Row is one record destined for (or read from) a registered table,
// keyed by column name.
type Row map[string]any

// RowSource is a finite, single-pass producer of rows. Next returns the
// next row and true until the sequence is drained, then returns nil and
// false. A drained source is not restartable; re-invoke whatever
// produced it to get a fresh pass.
type RowSource interface {
	Next() (Row, bool)
}

// Batch pairs a logical table name with the rows to insert into it.
type Batch struct {
	Table string
	Rows  RowSource
}

// sliceSource adapts a slice of rows to the RowSource interface.
type sliceSource struct {
	rows []Row
	pos  int
}

// SliceRows returns a RowSource that yields the given rows in order.
func SliceRows(rows ...Row) RowSource {
	return &sliceSource{rows: rows}
}

func (s *sliceSource) Next() (Row, bool) {
	if s.pos >= len(s.rows) {
		return nil, false
	}
	row := s.rows[s.pos]
	s.pos++
	return row, true
}
