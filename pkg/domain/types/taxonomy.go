package types

// Category is a staff-maintained classification of a ticket
type Category string

func (c Category) String() string {
	return string(c)
}

// Role is the requester's self-declared affiliation
type Role string

func (r Role) String() string {
	return string(r)
}
