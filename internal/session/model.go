// Package session simulates authentication for the NanoFi client: a fixed
// table of demo accounts, a logged-in user mirrored to local storage, and
// change notifications for the presentation layer.
package session

import (
	"crypto/subtle"
	"fmt"
)

// Role classifies a demo account.
type Role string

const (
	RoleUser Role = "user"
	// RoleSPV is the Special Purpose Vehicle reviewer role.
	RoleSPV Role = "spv"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleSPV
}

// User is the logged-in account as persisted under KeyUser.
type User struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) String() string {
	return fmt.Sprintf("%s (%s)", u.Email, u.Role)
}

// Account is one entry of the demo credential table.
type Account struct {
	Email    string
	Password string
	Role     Role
}

// DemoAccounts is the fixed credential table. Passwords are compared in
// plaintext: nothing here is a secret.
var DemoAccounts = []Account{
	{Email: "investor@nanofi.io", Password: "investor123", Role: RoleUser},
	{Email: "demo@nanofi.io", Password: "demo123", Role: RoleUser},
	{Email: "spv@nanofi.io", Password: "spv123", Role: RoleSPV},
	{Email: "reviewer@nanofi.io", Password: "reviewer123", Role: RoleSPV},
}

// lookup returns the account matching both email and password. Every entry
// is compared so the outcome does not depend on where a match sits.
func lookup(accounts []Account, email string, password []byte) (User, bool) {
	var (
		found User
		ok    bool
	)
	for _, a := range accounts {
		emailOK := subtle.ConstantTimeCompare([]byte(a.Email), []byte(email))
		passOK := subtle.ConstantTimeCompare([]byte(a.Password), password)
		if emailOK&passOK == 1 && !ok {
			found, ok = User{Email: a.Email, Role: a.Role}, true
		}
	}
	return found, ok
}
