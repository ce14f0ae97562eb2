package employee

import "context"

// EmployeeRepository is a read-only view of the employee directory.
type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound when the employee does not exist.
	GetByID(ctx context.Context, id string) (Employee, error)
}
