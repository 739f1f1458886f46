package model

type PageOptions struct {
	SortBy string
	Limit  int
	Page   int
}

func (p PageOptions) Skip() int64 {
	if p.Page <= 1 {
		return 0
	}
	return int64(p.Page-1) * int64(p.Limit)
}
