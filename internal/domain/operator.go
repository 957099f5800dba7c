package domain

import "context"

// Role limits what an authenticated operator may do.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// AllTenants in an operator's tenant list grants access to every tenant.
const AllTenants = "*"

// Operator is the authenticated caller behind a request.
type Operator struct {
	ID      string
	Role    Role
	Tenants []string
}

// CanAccessTenant reports whether the operator may act for tenantID.
func (o *Operator) CanAccessTenant(tenantID string) bool {
	for _, t := range o.Tenants {
		if t == AllTenants || t == tenantID {
			return true
		}
	}
	return false
}

// CanWrite reports whether the operator may mutate state.
func (o *Operator) CanWrite() bool {
	return o.Role == RoleAdmin || o.Role == RoleOperator
}

type operatorKey struct{}

// WithOperator stores the operator in ctx.
func WithOperator(ctx context.Context, op *Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

// OperatorFromContext returns the operator stored by WithOperator.
func OperatorFromContext(ctx context.Context) (*Operator, bool) {
	op, ok := ctx.Value(operatorKey{}).(*Operator)
	return op, ok && op != nil
}

// OperatorID returns the operator id in ctx or "system".
func OperatorID(ctx context.Context) string {
	if op, ok := OperatorFromContext(ctx); ok {
		return op.ID
	}
	return "system"
}
