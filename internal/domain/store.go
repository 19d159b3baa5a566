package domain

// Store is a company's branch; orders, clients and services belong to one.
// CompanyName is denormalized by the repository join for notification and
// receipt rendering.
type Store struct {
	ID          int
	CompanyID   int
	Name        string
	CompanyName string
}
