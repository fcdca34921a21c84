package pagination

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

type Pagination struct {
	Skip  int `form:"skip" json:"skip"`
	Limit int `form:"limit" json:"limit"`
}

// Normalize clamps skip to zero and limit into [1, MaxLimit], defaulting an
// unset limit to DefaultLimit.
func (p Pagination) Normalize() Pagination {
	if p.Skip < 0 {
		p.Skip = 0
	}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultLimit
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	return p
}
