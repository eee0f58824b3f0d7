package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Builds a query from chunks whose arguments are written as `$?`. Each `$?` is
// renumbered to its position in the whole query, so optional filters can be
// appended without counting placeholders by hand.
type QueryBuilder struct {
	sql  strings.Builder
	args []any
}

func (qb *QueryBuilder) Add(sql string, args ...any) {
	if n := strings.Count(sql, "$?"); n != len(args) {
		panic(fmt.Errorf("query chunk has %d placeholders but %d arguments", n, len(args)))
	}

	for _, arg := range args {
		i := strings.Index(sql, "$?")
		qb.sql.WriteString(sql[:i])
		qb.args = append(qb.args, arg)
		qb.sql.WriteString("$" + strconv.Itoa(len(qb.args)))
		sql = sql[i+2:]
	}
	qb.sql.WriteString(sql)
	qb.sql.WriteString("\n")
}

func (qb *QueryBuilder) String() string {
	return qb.sql.String()
}

func (qb *QueryBuilder) Args() []any {
	return qb.args
}
