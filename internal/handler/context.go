package handler

type ContextKey string

var (
	RoleCtxKey       ContextKey = "role"
	SubCtxKey        ContextKey = "sub"
	ClaimsDSPCtxKey  ContextKey = "claimsDSP"
	LanguageCtxKey   ContextKey = "language"
	TenantCtxKey     ContextKey = "tenant"
	DisponibilityCtx ContextKey = "disponibility"
	WarningCtx       ContextKey = "warning"
)
