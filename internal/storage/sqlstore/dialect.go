package sqlstore

import (
	"strconv"
	"strings"
)

// Dialect описывает различия SQL-движков, которые важны для общих запросов.
type Dialect struct {
	// Name используется в логах и сообщениях об ошибках.
	Name string
	// NumberedParams включает плейсхолдеры вида $1, $2 вместо ?.
	NumberedParams bool
	// TextCollation добавляется к текстовым ключам сортировки,
	// чтобы сравнение было побайтовым на любом движке.
	TextCollation string
}

// SQLite — диалект встроенного движка.
var SQLite = Dialect{Name: "sqlite"}

// Postgres — диалект PostgreSQL.
var Postgres = Dialect{Name: "postgres", NumberedParams: true, TextCollation: `COLLATE "C"`}

// Rebind переписывает плейсхолдеры ? в формат диалекта.
func (d Dialect) Rebind(query string) string {
	if !d.NumberedParams {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) text(column string) string {
	if d.TextCollation == "" {
		return column
	}
	return column + " " + d.TextCollation
}
