package item

import "fmt"

// PartQuota is the number of items a blueprint draws from one part.
type PartQuota struct {
	Part  Part
	Count int
}

// Blueprint fixes the composition of an assessment. Items are drawn per part
// in pool order; parts are concatenated in quota order.
type Blueprint struct {
	Quotas []PartQuota
}

// DefaultBlueprint is the 20-item reading form: 12 R5 followed by 8 R7.
func DefaultBlueprint() Blueprint {
	return Blueprint{Quotas: []PartQuota{
		{Part: PartR5, Count: 12},
		{Part: PartR7, Count: 8},
	}}
}

// Size returns the total number of items the blueprint selects.
func (b Blueprint) Size() int {
	n := 0
	for _, q := range b.Quotas {
		n += q.Count
	}
	return n
}

// Select draws the blueprint's items from the pool. It is deterministic: the
// same pool always yields the same ordered list.
func (b Blueprint) Select(pool []Item) ([]Item, error) {
	out := make([]Item, 0, b.Size())
	for _, q := range b.Quotas {
		taken := 0
		for _, it := range pool {
			if taken == q.Count {
				break
			}
			if it.Part == q.Part {
				out = append(out, it)
				taken++
			}
		}
		if taken < q.Count {
			return nil, fmt.Errorf("pool has %d items of part %s, blueprint needs %d", taken, q.Part, q.Count)
		}
	}
	return out, nil
}
