package loan

import (
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"libraryapi/internal/page"
)

var (
	dialect = goqu.Dialect("postgres")

	colLoanID       = goqu.I("l.id")
	colLoanBookID   = goqu.I("l.book_id")
	colLoanCustomer = goqu.I("l.customer")
	colLoanDate     = goqu.I("l.loan_date")
	colLoanReturned = goqu.I("l.returned")
	colBookISBN     = goqu.I("b.isbn")

	selectColumns = []any{
		colLoanID, colLoanBookID, colLoanCustomer, goqu.I("l.email"), colLoanDate, colLoanReturned,
		goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.author"), colBookISBN,
	}
)

// joined selects loans together with their book row.
func joined(where ...exp.Expression) *goqu.SelectDataset {
	ds := dialect.From(goqu.T("loans").As("l")).
		Prepared(true).
		InnerJoin(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(colLoanBookID)))
	if len(where) > 0 {
		ds = ds.Where(where...)
	}
	return ds
}

// searchCondition ORs the provided fields of f; nil means no constraint.
func searchCondition(f Filter) exp.Expression {
	var conds []exp.Expression
	if f.ISBN != "" {
		conds = append(conds, colBookISBN.Eq(f.ISBN))
	}
	if f.Customer != "" {
		conds = append(conds, colLoanCustomer.Eq(f.Customer))
	}
	if len(conds) == 0 {
		return nil
	}
	return goqu.Or(conds...)
}

func conditions(cond exp.Expression) []exp.Expression {
	if cond == nil {
		return nil
	}
	return []exp.Expression{cond}
}

func buildPageQueries(cond exp.Expression, req page.Request) (dataSQL string, dataArgs []any, countSQL string, countArgs []any, err error) {
	dataSQL, dataArgs, err = joined(conditions(cond)...).
		Select(selectColumns...).
		Order(colLoanID.Asc()).
		Limit(uint(req.Size)).
		Offset(uint(req.Offset())).
		ToSQL()
	if err != nil {
		return "", nil, "", nil, err
	}
	countSQL, countArgs, err = joined(conditions(cond)...).
		Select(goqu.COUNT(goqu.Star())).
		ToSQL()
	return dataSQL, dataArgs, countSQL, countArgs, err
}

func buildSearchQueries(f Filter, req page.Request) (string, []any, string, []any, error) {
	return buildPageQueries(searchCondition(f), req)
}

func buildByBookQueries(bookID int64, req page.Request) (string, []any, string, []any, error) {
	return buildPageQueries(colLoanBookID.Eq(bookID), req)
}

func buildGetQuery(id int64) (string, []any, error) {
	return joined(colLoanID.Eq(id)).Select(selectColumns...).ToSQL()
}

func buildOverdueQuery(cutoff time.Time) (string, []any, error) {
	return joined(colLoanReturned.IsFalse(), colLoanDate.Lte(cutoff)).
		Select(selectColumns...).
		Order(colLoanID.Asc()).
		ToSQL()
}
