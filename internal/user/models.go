package user

import "time"

// User is created exactly once per completed enrollment. GroupID is a weak
// reference: deleting the age group later has no cascading effect here.
type User struct {
	ID        string
	Name      string
	Age       int
	CPF       string
	GroupID   string
	CreatedAt time.Time
}
