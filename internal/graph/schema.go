package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"

	apperrors "github.com/northgate-labs/user-service/pkg/util"
)

// FieldDescriptor describes one exposed field of an entity.
type FieldDescriptor struct {
	Name    string
	Type    graphql.Output
	Resolve func(source interface{}) (interface{}, error)
}

// EntityDescriptor describes an entity exposed through the schema: its
// object type, fields, and data accessors. The builder turns descriptors
// into resolver bindings mechanically; it knows nothing about storage.
type EntityDescriptor struct {
	Name     string // plural root field name, e.g. "users"
	TypeName string // object type name, e.g. "User"
	Fields   []FieldDescriptor
	List     func(ctx context.Context) ([]interface{}, error)
	Get      func(ctx context.Context, id string) (interface{}, error)
}

// BuildSchema assembles a query schema from entity descriptors, wrapping
// guarded root fields and object fields with the configured predicates.
func BuildSchema(entities []EntityDescriptor, guards *GuardConfig) (graphql.Schema, error) {
	queryFields := graphql.Fields{}

	for _, entity := range entities {
		objFields := graphql.Fields{}
		for _, fd := range entity.Fields {
			resolve := fieldResolver(fd)
			if guard, ok := guards.fieldGuard(entity.Name, fd.Name); ok {
				resolve = guarded(guard, resolve)
			}
			objFields[fd.Name] = &graphql.Field{Type: fd.Type, Resolve: resolve}
		}
		objType := graphql.NewObject(graphql.ObjectConfig{
			Name:   entity.TypeName,
			Fields: objFields,
		})

		entityGuard, hasEntityGuard := guards.entityGuard(entity.Name)

		if entity.List != nil {
			list := entity.List
			resolve := func(p graphql.ResolveParams) (interface{}, error) {
				return list(p.Context)
			}
			if hasEntityGuard {
				resolve = guarded(entityGuard, resolve)
			}
			queryFields[entity.Name] = &graphql.Field{
				Type:    graphql.NewList(objType),
				Resolve: resolve,
			}
		}

		if entity.Get != nil {
			get := entity.Get
			resolve := func(p graphql.ResolveParams) (interface{}, error) {
				id, _ := p.Args["id"].(string)
				return get(p.Context, id)
			}
			if hasEntityGuard {
				resolve = guarded(entityGuard, resolve)
			}
			queryFields[singular(entity.Name)] = &graphql.Field{
				Type: objType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: resolve,
			}
		}
	}

	if len(queryFields) == 0 {
		return graphql.Schema{}, fmt.Errorf("no entities registered")
	}

	query := graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: queryFields})
	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

func fieldResolver(fd FieldDescriptor) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		return fd.Resolve(p.Source)
	}
}

// guarded wraps a resolver so the guard verdict is checked before the
// underlying resolver runs. A block surfaces as a forbidden domain error,
// matching the REST role middleware for the same identity.
func guarded(guard Guard, next graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if action := guard(p.Context); !action.Allowed() {
			return nil, apperrors.NewForbidden(action.Reason())
		}
		return next(p)
	}
}

func singular(plural string) string {
	return strings.TrimSuffix(plural, "s")
}
