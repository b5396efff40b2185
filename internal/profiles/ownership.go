package profiles

import "context"

type contextKey string

const profileCtxKey contextKey = "profile"

func SetProfileInContext(ctx context.Context, p *Profile) context.Context {
	return context.WithValue(ctx, profileCtxKey, p)
}

func GetProfileFromContext(ctx context.Context) *Profile {
	p, _ := ctx.Value(profileCtxKey).(*Profile)
	return p
}
