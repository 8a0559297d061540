package adaptor

// Unfold expands every array group of rec into separate records, one
// group at a time, until only scalar entries remain. Groups are expanded
// breadth-first from a FIFO queue, so two independent arrays of length m
// and n produce m*n records, ordered by the first array.
//
// Empty records are dropped, which is how a document holding nothing but
// an empty array yields no row.
func Unfold(rec Record) []Record {
	queue := []Record{rec}
	var out []Record

	for len(queue) > 0 {
		cur := queue[0]
		queue[0] = Record{}
		queue = queue[1:]

		if cur.Len() == 0 {
			continue
		}

		path, group, ok := cur.firstGroup()
		if !ok {
			out = append(out, cur)
			continue
		}

		base := cur.Clone()
		base.Delete(path)
		if len(group) == 0 {
			queue = append(queue, base)
			continue
		}
		for _, sub := range group {
			next := base.Clone()
			next.Merge(sub)
			queue = append(queue, next)
		}
	}
	return out
}
