package domain

// Identity is the result of verifying a bearer credential. A nil *Identity
// means the caller is anonymous.
type Identity struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
}
