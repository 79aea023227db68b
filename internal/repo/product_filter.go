package repo

import "strings"

// ProductFilter selects products by exact field match. Nil fields match everything.
type ProductFilter struct {
	Name     *string
	Category *string
	OrderBy  string
	Desc     bool
	Offset   *int
	Limit    *int
}

// orderColumns whitelists the columns FindBy may sort on.
var orderColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"price":      "price",
	"category":   "category",
	"created_at": "created_at",
}

func (pf ProductFilter) orderClause() string {
	col, ok := orderColumns[pf.OrderBy]
	if !ok {
		col = "id"
	}
	if pf.Desc {
		return col + " DESC"
	}
	return col + " ASC"
}

func (pf ProductFilter) offset() int {
	if pf.Offset == nil || *pf.Offset < 0 {
		return 0
	}
	return *pf.Offset
}

func (pf ProductFilter) limit() int {
	if pf.Limit == nil || *pf.Limit <= 0 {
		return 0
	}
	return *pf.Limit
}

// likePattern wraps query in % wildcards, escaping the LIKE metacharacters it contains.
func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(query) + "%"
}
