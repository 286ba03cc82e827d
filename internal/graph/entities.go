package graph

import (
	"context"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/northgate-labs/user-service/internal/domain"
	"github.com/northgate-labs/user-service/internal/service"
)

// UserEntity describes the users entity for the schema builder. The
// password hash is simply not listed, so it can never be queried.
func UserEntity(users *service.UserService) EntityDescriptor {
	return EntityDescriptor{
		Name:     "users",
		TypeName: "User",
		Fields: []FieldDescriptor{
			{Name: "id", Type: graphql.ID, Resolve: userField(func(u *domain.User) interface{} { return u.ID })},
			{Name: "name", Type: graphql.String, Resolve: userField(func(u *domain.User) interface{} { return u.Name })},
			{Name: "email", Type: graphql.String, Resolve: userField(func(u *domain.User) interface{} { return u.Email })},
			{Name: "status", Type: graphql.String, Resolve: userField(func(u *domain.User) interface{} { return string(u.Status) })},
			{Name: "role", Type: graphql.String, Resolve: userField(func(u *domain.User) interface{} { return string(u.Role) })},
			{Name: "createdAt", Type: graphql.String, Resolve: userField(func(u *domain.User) interface{} { return u.CreatedAt.Format(time.RFC3339) })},
			{Name: "updatedAt", Type: graphql.String, Resolve: userField(func(u *domain.User) interface{} { return u.UpdatedAt.Format(time.RFC3339) })},
		},
		List: func(ctx context.Context) ([]interface{}, error) {
			list, err := users.List(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]interface{}, len(list))
			for i, u := range list {
				out[i] = u
			}
			return out, nil
		},
		Get: func(ctx context.Context, id string) (interface{}, error) {
			return users.Get(ctx, id)
		},
	}
}

func userField(pick func(*domain.User) interface{}) func(interface{}) (interface{}, error) {
	return func(source interface{}) (interface{}, error) {
		user, ok := source.(*domain.User)
		if !ok {
			return nil, nil
		}
		return pick(user), nil
	}
}
