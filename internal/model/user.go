// ABOUTME: Customer accounts as seen by the admin console
// ABOUTME: Includes the account approval lifecycle and search matching

package model

import "strings"

// UserStatus is the approval state of a customer account.
type UserStatus string

const (
	UserPending  UserStatus = "pending"
	UserApproved UserStatus = "approved"
	UserRejected UserStatus = "rejected"
	UserDisabled UserStatus = "disabled"
)

// User is a B2B customer account.
type User struct {
	ID       string
	Company  string
	Contact  string
	Email    string
	Phone    string
	Username string
	Role     string
	Status   UserStatus

	// IsFirstLogin is set until the customer replaces their initial password.
	IsFirstLogin bool
}

// UserLifecycle is the account approval table. Rejected accounts are terminal.
var UserLifecycle = NewMachine("user",
	Transition[UserStatus]{From: UserPending, Action: ActionApprove, To: UserApproved},
	Transition[UserStatus]{From: UserPending, Action: ActionReject, To: UserRejected, Destructive: true},
	Transition[UserStatus]{From: UserApproved, Action: ActionDisable, To: UserDisabled, Destructive: true},
	Transition[UserStatus]{From: UserDisabled, Action: ActionEnable, To: UserApproved},
)

// Matches reports whether the user matches a free-text search over company, email and contact.
// An empty query matches everything.
func (u User) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.Company), q) ||
		strings.Contains(strings.ToLower(u.Email), q) ||
		strings.Contains(strings.ToLower(u.Contact), q)
}

// CountByStatus tallies users per status.
func CountByStatus(users []User) map[UserStatus]int {
	counts := make(map[UserStatus]int)
	for _, u := range users {
		counts[u.Status]++
	}
	return counts
}
