package ecs

// Each2 iterates over entities that have both component A and B, in
// ascending id order. It walks the smaller store and probes the larger one.
// Entries removed by fn during the walk are skipped.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	var ids []EntityID
	if sa.Len() <= sb.Len() {
		ids = append(ids, sa.SortedIDs()...)
	} else {
		ids = append(ids, sb.SortedIDs()...)
	}
	for _, id := range ids {
		a, ok := sa.data[id]
		if !ok {
			continue
		}
		if b, ok := sb.data[id]; ok {
			fn(id, a, b)
		}
	}
}

// Each3 iterates over entities that have components A, B, and C.
func Each3[A, B, C any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], sc *PtrComponentStore[C], fn func(EntityID, *A, *B, *C)) {
	// Seed from the smallest store
	var ids []EntityID
	switch {
	case sa.Len() <= sb.Len() && sa.Len() <= sc.Len():
		ids = append(ids, sa.SortedIDs()...)
	case sb.Len() <= sc.Len():
		ids = append(ids, sb.SortedIDs()...)
	default:
		ids = append(ids, sc.SortedIDs()...)
	}
	for _, id := range ids {
		a, ok := sa.data[id]
		if !ok {
			continue
		}
		b, ok := sb.data[id]
		if !ok {
			continue
		}
		if c, ok := sc.data[id]; ok {
			fn(id, a, b, c)
		}
	}
}
