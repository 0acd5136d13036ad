package employee

import "context"

type EmployeeRepository interface {
	// GetActive lists active employees whose home branch matches branchFilter.
	// An empty filter or "Todas" selects every branch.
	GetActive(ctx context.Context, branchFilter string) ([]Employee, error)
	// GetName returns the employee's full name or ErrEmployeeNotFound.
	GetName(ctx context.Context, code string) (string, error)
}
