package auth

import "context"

type StoreAPI interface {
	FindCredential(ctx context.Context, email string) (Credential, error)
}
