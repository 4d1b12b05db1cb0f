package model

// Customer is an optional sale counterparty. Phone and Email may be empty.
type Customer struct {
	ID    int64
	Name  string
	Phone string
	Email string
}
