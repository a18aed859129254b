// Package graphqlquery adapts a GraphQL `where`/`orderBy` argument shape
// into filter.Filter and ordering.List, grounded on the teacher's own
// where/orderBy argument parsing (pkg/graphql's parseWhere/
// parseFilterExpression/parseOrderBy) but rebuilding a filter.Filter tree
// instead of the teacher's own FilterExpression/evaluateFilter pair —
// the analyzer core needs the former, not an in-process predicate
// closure.
package graphqlquery

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
)

// WhereInputType is the recursive `where` argument's GraphQL input type,
// built once per record type's field set. Mirrors the teacher's where
// argument shape: every scalar field gets eq/ne/lt/le/gt/ge/exists
// operators, plus AND/OR/NOT combinators.
func WhereInputType(typeName string, fieldType func(field string) graphql.Input, fields []string) *graphql.InputObject {
	var self *graphql.InputObject
	conditionFields := graphql.InputObjectConfigFieldMap{}
	for _, f := range fields {
		conditionFields[f] = &graphql.InputObjectFieldConfig{Type: fieldConditionType(typeName+"_"+f, fieldType(f))}
	}

	self = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   typeName + "Where",
		Fields: graphql.InputObjectConfigFieldMap{},
	})
	for name, cfg := range conditionFields {
		self.AddFieldConfig(name, cfg)
	}
	self.AddFieldConfig("AND", &graphql.InputObjectFieldConfig{Type: graphql.NewList(self)})
	self.AddFieldConfig("OR", &graphql.InputObjectFieldConfig{Type: graphql.NewList(self)})
	self.AddFieldConfig("NOT", &graphql.InputObjectFieldConfig{Type: self})
	return self
}

func fieldConditionType(name string, scalar graphql.Input) *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name: name + "Condition",
		Fields: graphql.InputObjectConfigFieldMap{
			"eq":     &graphql.InputObjectFieldConfig{Type: scalar},
			"ne":     &graphql.InputObjectFieldConfig{Type: scalar},
			"lt":     &graphql.InputObjectFieldConfig{Type: scalar},
			"le":     &graphql.InputObjectFieldConfig{Type: scalar},
			"gt":     &graphql.InputObjectFieldConfig{Type: scalar},
			"ge":     &graphql.InputObjectFieldConfig{Type: scalar},
			"exists": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		},
	})
}

// OrderByInputType is the `orderBy` argument's list-of-{field,direction}
// shape, modeled directly on the teacher's OrderByInput.
func OrderByInputType() *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "OrderByInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"field":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"direction": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})
}

// ParseWhere walks a resolved `where` argument map into a filter.Filter.
// An absent or malformed where argument yields filter.Open() (match all),
// the same permissive default the teacher's parseWhere uses.
func ParseWhere(args map[string]any) filter.Filter {
	whereArg, ok := args["where"]
	if !ok {
		return filter.Open()
	}
	whereMap, ok := whereArg.(map[string]any)
	if !ok {
		return filter.Open()
	}
	return parseFilterExpression(whereMap)
}

func parseFilterExpression(whereMap map[string]any) filter.Filter {
	var clauses []filter.Filter

	if andArg, ok := whereMap["AND"]; ok {
		if list, ok := andArg.([]any); ok {
			clauses = append(clauses, filter.And(mapClauses(list)...))
		}
	}
	if orArg, ok := whereMap["OR"]; ok {
		if list, ok := orArg.([]any); ok {
			clauses = append(clauses, filter.Or(mapClauses(list)...))
		}
	}
	if notArg, ok := whereMap["NOT"]; ok {
		if m, ok := notArg.(map[string]any); ok {
			clauses = append(clauses, parseFilterExpression(m).Not())
		}
	}

	for field, value := range whereMap {
		if field == "AND" || field == "OR" || field == "NOT" {
			continue
		}
		conditionMap, ok := value.(map[string]any)
		if !ok {
			continue
		}
		path := model.ParsePropertyPath(field)
		for op, opValue := range conditionMap {
			clauses = append(clauses, fieldCondition(path, op, opValue))
		}
	}

	if len(clauses) == 0 {
		return filter.Open()
	}
	return filter.And(clauses...)
}

func fieldCondition(path model.PropertyPath, op string, value any) filter.Filter {
	switch op {
	case "eq":
		return filter.PropertyConst(path, filter.EQ, value)
	case "ne":
		return filter.PropertyConst(path, filter.NE, value)
	case "lt":
		return filter.PropertyConst(path, filter.LT, value)
	case "le":
		return filter.PropertyConst(path, filter.LE, value)
	case "gt":
		return filter.PropertyConst(path, filter.GT, value)
	case "ge":
		return filter.PropertyConst(path, filter.GE, value)
	case "exists":
		if b, ok := value.(bool); ok && !b {
			return filter.Exists(path).Not()
		}
		return filter.Exists(path)
	default:
		return filter.Open()
	}
}

func mapClauses(items []any) []filter.Filter {
	out := make([]filter.Filter, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, parseFilterExpression(m))
		}
	}
	return out
}

// ParseOrderBy walks a resolved `orderBy` argument (a list of
// {field,direction} pairs) into an ordering.List. An absent or non-list
// orderBy yields an empty ordering, and an entry that is not an object or
// has no field is skipped; an entry whose direction is not "ASC" or
// "DESC" fails the whole call with an error.
func ParseOrderBy(typeName string, args map[string]any) (*ordering.List, error) {
	arg, ok := args["orderBy"]
	if !ok {
		return ordering.Of(typeName), nil
	}
	items, ok := arg.([]any)
	if !ok {
		return ordering.Of(typeName), nil
	}

	var entries []model.OrderingEntry
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		field, _ := m["field"].(string)
		direction, _ := m["direction"].(string)
		if field == "" {
			continue
		}
		dir, err := parseDirection(direction)
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.OrderingEntry{Property: model.ParsePropertyPath(field), Direction: dir})
	}
	return ordering.Of(typeName, entries...), nil
}

func parseDirection(s string) (model.Direction, error) {
	switch s {
	case "ASC":
		return model.Ascending, nil
	case "DESC":
		return model.Descending, nil
	default:
		return model.Unspecified, fmt.Errorf("graphqlquery: orderBy direction must be ASC or DESC, got %q", s)
	}
}
