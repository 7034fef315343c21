package domain

// EnforceRequest is the authorization question asked of the rbac service.
type EnforceRequest struct {
	UserID   string
	Role     string
	Resource string
	Action   string
}
