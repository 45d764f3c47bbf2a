package taxonomy

// Rank is one taxonomic level of the five-level bird tree.
type Rank string

const (
	RankClass   Rank = "class"
	RankOrder   Rank = "order"
	RankFamily  Rank = "family"
	RankGenus   Rank = "genus"
	RankSpecies Rank = "species"
)

// rankOrder lists all ranks in root-to-leaf order.
var rankOrder = []Rank{
	RankClass,
	RankOrder,
	RankFamily,
	RankGenus,
	RankSpecies,
}

// Ranks returns all ranks in root-to-leaf order. The slice is a copy,
// callers may reorder it freely.
func Ranks() []Rank {
	res := make([]Rank, len(rankOrder))
	copy(res, rankOrder)
	return res
}

// Depth returns the zero-based depth of the rank, class being 0 and
// species being 4. Unknown ranks return -1.
func (r Rank) Depth() int {
	for i, rank := range rankOrder {
		if r == rank {
			return i
		}
	}
	return -1
}

// Parent returns the rank one level above r. The second value is false
// for the class rank and for unknown ranks.
func (r Rank) Parent() (Rank, bool) {
	depth := r.Depth()
	if depth < 1 {
		return "", false
	}
	return rankOrder[depth-1], true
}

// IsValid reports whether r is one of the five known ranks.
func (r Rank) IsValid() bool {
	return r.Depth() >= 0
}

func (r Rank) String() string {
	return string(r)
}
