// Package query builds filtered, sorted and paginated listing queries on gorm.
//
// A Builder applies the same filter conditions to two queries: the count query
// used for pagination metadata and the row query that adds the select list,
// aggregate joins, sort and LIMIT/OFFSET. Values are always bound as
// arguments; only identifiers from a Resource definition reach the SQL text.
package query

import (
	"math"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Resource holds the fixed parts of a listing query.
type Resource struct {
	// Table is the base table, optionally aliased ("stores s").
	Table string
	// Joins apply to both queries, so they must not multiply rows.
	Joins []string
	// AggregateJoins feed aggregates in Columns and apply to the row query only.
	// Placeholders are bound from Builder.JoinArgs.
	AggregateJoins string
	// Columns is the select list of the row query.
	Columns string
	// GroupBy is required when Columns aggregates over AggregateJoins.
	GroupBy string
	// SortColumns maps the public sortBy key to a column or select alias.
	SortColumns map[string]string
	// DefaultSort is the sortBy key used when none or an unknown one is given.
	DefaultSort string
	// TieBreaker is a unique column appended to ORDER BY so pages are stable.
	TieBreaker string
}

type Builder struct {
	res        Resource
	joinArgs   []interface{}
	conditions []clause.Expression
	sortColumn string
	order      SortOrder
	page       int
	limit      int
}

func New(res Resource) *Builder {
	return &Builder{
		res:        res,
		sortColumn: res.SortColumns[res.DefaultSort],
		order:      Asc,
		page:       DefaultPage,
		limit:      DefaultLimit,
	}
}

// JoinArgs binds arguments referenced by placeholders inside Resource.AggregateJoins.
func (b *Builder) JoinArgs(args ...interface{}) *Builder {
	b.joinArgs = append(b.joinArgs, args...)
	return b
}

// Contains adds a case-insensitive substring match. Empty values are ignored.
func (b *Builder) Contains(column, value string) *Builder {
	if value == "" {
		return b
	}
	b.conditions = append(b.conditions, clause.Expr{
		SQL:  `LOWER(?) LIKE ? ESCAPE '\'`,
		Vars: []interface{}{Column(column), "%" + EscapeLike(strings.ToLower(value)) + "%"},
	})
	return b
}

// Equals adds an exact match. Empty values are ignored.
func (b *Builder) Equals(column, value string) *Builder {
	if value == "" {
		return b
	}
	b.conditions = append(b.conditions, clause.Eq{Column: Column(column), Value: value})
	return b
}

// SortBy selects the sort column from the resource allow-list, falling back
// to the resource default for unknown keys.
func (b *Builder) SortBy(key string, order SortOrder) *Builder {
	if column, ok := b.res.SortColumns[key]; ok {
		b.sortColumn = column
	} else {
		b.sortColumn = b.res.SortColumns[b.res.DefaultSort]
	}

	if order == Desc {
		b.order = Desc
	} else {
		b.order = Asc
	}
	return b
}

// Paginate sets the page window. Out-of-range values are clamped.
func (b *Builder) Paginate(page, limit int) *Builder {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	b.page = page
	b.limit = limit
	return b
}

func (b *Builder) Page() int  { return b.page }
func (b *Builder) Limit() int { return b.limit }

// Offset is (page-1)*limit, saturating at math.MaxInt instead of overflowing.
func (b *Builder) Offset() int {
	if b.page-1 > math.MaxInt/b.limit {
		return math.MaxInt
	}
	return (b.page - 1) * b.limit
}

// filtered returns the base table, shared joins and filter conditions as a
// reusable session.
func (b *Builder) filtered(db *gorm.DB) *gorm.DB {
	tx := db.Table(b.res.Table)
	for _, join := range b.res.Joins {
		tx = tx.Joins(join)
	}
	for _, cond := range b.conditions {
		tx = tx.Where(cond)
	}
	return tx.Session(&gorm.Session{})
}

// CountQuery returns the query counting every row that matches the filters.
// Run it with Count.
func (b *Builder) CountQuery(db *gorm.DB) *gorm.DB {
	return b.filtered(db)
}

// RowsQuery returns the query for the current page. Run it with Scan.
func (b *Builder) RowsQuery(db *gorm.DB) *gorm.DB {
	tx := b.filtered(db).Select(b.res.Columns)
	if b.res.AggregateJoins != "" {
		tx = tx.Joins(b.res.AggregateJoins, b.joinArgs...)
	}
	if b.res.GroupBy != "" {
		tx = tx.Group(b.res.GroupBy)
	}

	tx = tx.Order(clause.OrderByColumn{Column: Column(b.sortColumn), Desc: b.order == Desc})
	if b.res.TieBreaker != "" && b.res.TieBreaker != b.sortColumn {
		tx = tx.Order(clause.OrderByColumn{Column: Column(b.res.TieBreaker)})
	}
	return tx.Limit(b.limit).Offset(b.Offset())
}

// Column splits a "table.column" reference so gorm quotes each part.
func Column(name string) clause.Column {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return clause.Column{Table: name[:i], Name: name[i+1:]}
	}
	return clause.Column{Name: name}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so user input matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func TotalPages(total int64, limit int) int {
	if limit < 1 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
