package context

type contextKey string
