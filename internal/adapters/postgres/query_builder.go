package postgres_adapter

import (
	"fmt"
	"property-service/internal/core/domain"
	"strings"
)

// Колонки выборки в порядке, который ожидает scanProperty
const propertyColumns = `id, title, price, description, property_type, location, bedrooms, bathrooms, images, created_by, created_at, updated_at`

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId: 1,
		args:  make([]interface{}, 0),
	}
}

// addCondition подставляет номер параметра во все вхождения %[1]d шаблона
func (qb *queryBuilder) addCondition(template string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(template, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

func (qb *queryBuilder) addRaw(condition string) {
	qb.conditions = append(qb.conditions, condition)
}

// build возвращает WHERE (или пустую строку) и аргументы
func (qb *queryBuilder) build() (string, []interface{}) {
	whereClause := ""
	if len(qb.conditions) > 0 {
		whereClause = "WHERE " + strings.Join(qb.conditions, " AND ")
	}
	return whereClause, qb.args
}

// applyPredicate переводит доменный предикат в SQL. Значения идут только параметрами.
func applyPredicate(pred domain.Predicate) *queryBuilder {
	qb := newQueryBuilder()

	for _, c := range pred.Clauses {
		switch c.Kind {
		case domain.ClauseTextContains:
			qb.addCondition("(location ILIKE $%[1]d OR title ILIKE $%[1]d)", "%"+escapeLike(c.Text)+"%")
		case domain.ClauseTypeEquals:
			qb.addCondition("property_type = $%d", string(c.Type))
		case domain.ClausePriceRange:
			if c.MinPrice != nil {
				qb.addCondition("price >= $%d", *c.MinPrice)
			}
			if c.MaxPrice != nil {
				qb.addCondition("price <= $%d", *c.MaxPrice)
			}
		case domain.ClauseBedroomsEquals:
			qb.addCondition("bedrooms = $%d", c.Bedrooms)
		case domain.ClauseOwnerEquals:
			qb.addCondition("created_by = $%d", c.Owner)
		case domain.ClauseMatchNone:
			qb.addRaw("FALSE")
		}
	}
	return qb
}

// escapeLike экранирует спецсимволы LIKE (экранирующий символ по умолчанию - обратный слеш)
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// orderByClause строится только из белого списка колонок
func orderByClause(s domain.SortOrder) string {
	column := "created_at"
	if s.Field == domain.SortFieldPrice {
		column = "price"
	}
	direction := "ASC"
	if s.Descending {
		direction = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", column, direction)
}

// buildFindQuery собирает SELECT с сортировкой и окном. take <= 0 - без LIMIT.
func buildFindQuery(pred domain.Predicate, sort domain.SortOrder, skip, take int) (string, []interface{}) {
	qb := applyPredicate(pred)
	whereClause, args := qb.build()

	var q strings.Builder
	q.WriteString("SELECT ")
	q.WriteString(propertyColumns)
	q.WriteString(" FROM properties ")
	if whereClause != "" {
		q.WriteString(whereClause)
		q.WriteString(" ")
	}
	q.WriteString(orderByClause(sort))

	if take > 0 {
		args = append(args, take)
		q.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	if skip > 0 {
		args = append(args, skip)
		q.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}
	return q.String(), args
}

func buildCountQuery(pred domain.Predicate) (string, []interface{}) {
	whereClause, args := applyPredicate(pred).build()
	if whereClause == "" {
		return "SELECT COUNT(*) FROM properties", args
	}
	return "SELECT COUNT(*) FROM properties " + whereClause, args
}
