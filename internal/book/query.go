package book

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"libraryapi/internal/page"
)

const (
	tableBooks = "books"
	colID      = "id"
	colTitle   = "title"
	colAuthor  = "author"
	colISBN    = "isbn"
)

var (
	dialect       = goqu.Dialect("postgres")
	likeEscaper   = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	selectColumns = []any{colID, colTitle, colAuthor, colISBN}
)

// containsPattern turns s into an ILIKE pattern matching s literally
// anywhere in the column.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// filterExpressions returns one ILIKE expression per non-empty field of f.
func filterExpressions(f Filter) []exp.Expression {
	var conds []exp.Expression
	if f.Title != "" {
		conds = append(conds, goqu.C(colTitle).ILike(containsPattern(f.Title)))
	}
	if f.Author != "" {
		conds = append(conds, goqu.C(colAuthor).ILike(containsPattern(f.Author)))
	}
	if f.ISBN != "" {
		conds = append(conds, goqu.C(colISBN).ILike(containsPattern(f.ISBN)))
	}
	return conds
}

func filtered(f Filter) *goqu.SelectDataset {
	ds := dialect.From(tableBooks).Prepared(true)
	if conds := filterExpressions(f); len(conds) > 0 {
		ds = ds.Where(goqu.And(conds...))
	}
	return ds
}

func buildSearchQuery(f Filter, req page.Request) (string, []any, error) {
	return filtered(f).
		Select(selectColumns...).
		Order(goqu.C(colID).Asc()).
		Limit(uint(req.Size)).
		Offset(uint(req.Offset())).
		ToSQL()
}

func buildCountQuery(f Filter) (string, []any, error) {
	return filtered(f).
		Select(goqu.COUNT(goqu.Star())).
		ToSQL()
}
