package memstore

// table keeps rows by key together with their insertion order. Rows are
// stored by value and any slice fields are copied on the way in, so a
// shallow map copy is a full snapshot.
type table[T any] struct {
	rows map[string]T
	seq  map[string]int64
	next int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[string]T{}, seq: map[string]int64{}}
}

func (t *table[T]) put(key string, row T) {
	if _, ok := t.seq[key]; !ok {
		t.next++
		t.seq[key] = t.next
	}
	t.rows[key] = row
}

func (t *table[T]) get(key string) (T, bool) {
	row, ok := t.rows[key]
	return row, ok
}

func (t *table[T]) del(key string) {
	delete(t.rows, key)
	delete(t.seq, key)
}

// newest returns the rows accepted by keep, most recently inserted first.
func (t *table[T]) newest(keep func(T) bool) []T {
	keys := make([]string, 0, len(t.rows))
	for k := range t.rows {
		keys = append(keys, k)
	}
	sortKeysBySeqDesc(keys, t.seq)

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		row := t.rows[k]
		if keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) first(keep func(T) bool) (T, bool) {
	rows := t.newest(keep)
	if len(rows) == 0 {
		var zero T
		return zero, false
	}
	return rows[0], true
}

func (t *table[T]) clone() *table[T] {
	c := &table[T]{
		rows: make(map[string]T, len(t.rows)),
		seq:  make(map[string]int64, len(t.seq)),
		next: t.next,
	}
	for k, v := range t.rows {
		c.rows[k] = v
	}
	for k, v := range t.seq {
		c.seq[k] = v
	}
	return c
}
