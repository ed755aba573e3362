package models

// SessionIdentity is the decoded claim set of a caller's token: who they
// are, their normalized role, and (for store owners) the store linked at
// token issuance. StoreID may be stale or absent; owner flows resolve
// the live store through the owner_id relationship and use this claim
// only as a fallback.
type SessionIdentity struct {
	UserID  string
	Email   string
	Role    Role
	StoreID string
}
