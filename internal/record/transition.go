package record

import (
	"fmt"

	"github.com/google/uuid"
)

// ApplyTransition returns a new collection where the record with the given id
// carries status to. The input slice and its records are never modified; every
// other record pointer is shared with the input. Unknown ids yield ErrNotFound
// and disallowed edges yield ErrInvalidTransition, both with the input returned
// unchanged.
func ApplyTransition(records []*Record, id uuid.UUID, to Status) ([]*Record, error) {
	idx := indexOf(records, id)
	if idx < 0 {
		return records, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	current := records[idx]
	if err := CanTransition(current.Kind, current.Status, to); err != nil {
		return records, err
	}

	updated := current.clone()
	updated.Status = to

	out := make([]*Record, len(records))
	copy(out, records)
	out[idx] = updated

	return out, nil
}

// Replace swaps the record sharing r's id for r, returning a new collection.
func Replace(records []*Record, r *Record) ([]*Record, error) {
	idx := indexOf(records, r.ID)
	if idx < 0 {
		return records, fmt.Errorf("%w: %s", ErrNotFound, r.ID)
	}

	out := make([]*Record, len(records))
	copy(out, records)
	out[idx] = r

	return out, nil
}

// Remove drops the record with the given id, returning a new collection.
func Remove(records []*Record, id uuid.UUID) ([]*Record, error) {
	idx := indexOf(records, id)
	if idx < 0 {
		return records, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	out := make([]*Record, 0, len(records)-1)
	out = append(out, records[:idx]...)
	out = append(out, records[idx+1:]...)

	return out, nil
}

// Lookup returns the record with the given id.
func Lookup(records []*Record, id uuid.UUID) (*Record, bool) {
	idx := indexOf(records, id)
	if idx < 0 {
		return nil, false
	}

	return records[idx], true
}

func indexOf(records []*Record, id uuid.UUID) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}

	return -1
}
