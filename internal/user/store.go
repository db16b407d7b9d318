package user

import "context"

type Store interface {
	Save(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByCPF(ctx context.Context, cpf string) (User, error)
}
