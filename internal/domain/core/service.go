package core

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

type EmployeeParams struct {
	FirstName        *string           `json:"firstName"`
	LastName         *string           `json:"lastName"`
	Email            *string           `json:"email"`
	Phone            *string           `json:"phone"`
	DateOfBirth      *time.Time        `json:"dateOfBirth"`
	Gender           *string           `json:"gender"`
	Address          *Address          `json:"address"`
	DepartmentID     *string           `json:"departmentId"`
	PositionID       *string           `json:"roleId"`
	ManagerID        *string           `json:"managerId"`
	DateOfJoining    *time.Time        `json:"dateOfJoining"`
	Status           *string           `json:"status"`
	EmergencyContact *EmergencyContact `json:"emergencyContact"`
}

func (s *Service) CreateEmployee(ctx context.Context, params EmployeeParams) (Employee, error) {
	e := Employee{Status: EmployeeStatusActive}
	applyEmployeeParams(&e, params)
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	if e.DateOfJoining == nil {
		now := time.Now().UTC()
		e.DateOfJoining = &now
	}

	if err := s.validateEmployeeRefs(ctx, e, ""); err != nil {
		return Employee{}, err
	}

	taken, err := s.Store.EmployeeEmailTaken(ctx, e.Email, "")
	if err != nil {
		return Employee{}, err
	}
	if taken {
		return Employee{}, ErrEmailTaken
	}

	e.EmployeeNumber = NewEmployeeNumber()
	id, err := s.Store.CreateEmployee(ctx, e)
	if err != nil {
		return Employee{}, err
	}
	return s.Store.EmployeeByID(ctx, id)
}

// UpdateEmployee applies a partial-field merge onto the stored record and
// re-validates the result. The employee number is never updatable.
func (s *Service) UpdateEmployee(ctx context.Context, employeeID string, params EmployeeParams) (Employee, error) {
	existing, err := s.Store.EmployeeByID(ctx, employeeID)
	if err != nil {
		return Employee{}, err
	}

	applyEmployeeParams(&existing, params)
	existing.Email = strings.ToLower(strings.TrimSpace(existing.Email))

	if err := s.validateEmployeeRefs(ctx, existing, employeeID); err != nil {
		return Employee{}, err
	}

	taken, err := s.Store.EmployeeEmailTaken(ctx, existing.Email, employeeID)
	if err != nil {
		return Employee{}, err
	}
	if taken {
		return Employee{}, ErrEmailTaken
	}

	if err := s.Store.UpdateEmployee(ctx, employeeID, existing); err != nil {
		return Employee{}, err
	}
	return s.Store.EmployeeByID(ctx, employeeID)
}

func (s *Service) validateEmployeeRefs(ctx context.Context, e Employee, selfID string) error {
	ok, err := s.Store.DepartmentExists(ctx, e.DepartmentID)
	if err != nil {
		return err
	}
	if !ok {
		return &ReferenceError{Field: "departmentId", ID: e.DepartmentID}
	}

	ok, err = s.Store.PositionExists(ctx, e.PositionID)
	if err != nil {
		return err
	}
	if !ok {
		return &ReferenceError{Field: "roleId", ID: e.PositionID}
	}

	if e.ManagerID != "" && e.ManagerID != selfID {
		ok, err = s.Store.EmployeeExists(ctx, e.ManagerID)
		if err != nil {
			return err
		}
		if !ok {
			return &ReferenceError{Field: "managerId", ID: e.ManagerID}
		}
	}
	return nil
}

func applyEmployeeParams(e *Employee, params EmployeeParams) {
	if params.FirstName != nil {
		e.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		e.LastName = *params.LastName
	}
	if params.Email != nil {
		e.Email = *params.Email
	}
	if params.Phone != nil {
		e.Phone = *params.Phone
	}
	if params.DateOfBirth != nil {
		e.DateOfBirth = params.DateOfBirth
	}
	if params.Gender != nil {
		e.Gender = *params.Gender
	}
	if params.Address != nil {
		e.Address = params.Address
	}
	if params.DepartmentID != nil {
		e.DepartmentID = *params.DepartmentID
	}
	if params.PositionID != nil {
		e.PositionID = *params.PositionID
	}
	if params.ManagerID != nil {
		e.ManagerID = *params.ManagerID
	}
	if params.DateOfJoining != nil {
		e.DateOfJoining = params.DateOfJoining
	}
	if params.Status != nil {
		e.Status = *params.Status
	}
	if params.EmergencyContact != nil {
		e.EmergencyContact = params.EmergencyContact
	}
}

type DepartmentParams struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Budget      *float64 `json:"budget"`
	HeadID      *string  `json:"headId"`
	IsActive    *bool    `json:"isActive"`
}

func (s *Service) CreateDepartment(ctx context.Context, params DepartmentParams) (Department, error) {
	d := Department{IsActive: true}
	applyDepartmentParams(&d, params)

	if err := s.validateDepartmentRefs(ctx, d); err != nil {
		return Department{}, err
	}
	taken, err := s.Store.DepartmentNameTaken(ctx, d.Name, "")
	if err != nil {
		return Department{}, err
	}
	if taken {
		return Department{}, ErrDepartmentNameTaken
	}

	id, err := s.Store.CreateDepartment(ctx, d)
	if err != nil {
		return Department{}, err
	}
	return s.Store.DepartmentByID(ctx, id)
}

func (s *Service) UpdateDepartment(ctx context.Context, departmentID string, params DepartmentParams) (Department, error) {
	existing, err := s.Store.DepartmentByID(ctx, departmentID)
	if err != nil {
		return Department{}, err
	}
	applyDepartmentParams(&existing, params)

	if err := s.validateDepartmentRefs(ctx, existing); err != nil {
		return Department{}, err
	}
	taken, err := s.Store.DepartmentNameTaken(ctx, existing.Name, departmentID)
	if err != nil {
		return Department{}, err
	}
	if taken {
		return Department{}, ErrDepartmentNameTaken
	}

	if err := s.Store.UpdateDepartment(ctx, departmentID, existing); err != nil {
		return Department{}, err
	}
	return s.Store.DepartmentByID(ctx, departmentID)
}

func (s *Service) validateDepartmentRefs(ctx context.Context, d Department) error {
	if d.HeadID == "" {
		return nil
	}
	ok, err := s.Store.EmployeeExists(ctx, d.HeadID)
	if err != nil {
		return err
	}
	if !ok {
		return &ReferenceError{Field: "headId", ID: d.HeadID}
	}
	return nil
}

func applyDepartmentParams(d *Department, params DepartmentParams) {
	if params.Name != nil {
		d.Name = strings.TrimSpace(*params.Name)
	}
	if params.Description != nil {
		d.Description = *params.Description
	}
	if params.Budget != nil {
		d.Budget = *params.Budget
	}
	if params.HeadID != nil {
		d.HeadID = *params.HeadID
	}
	if params.IsActive != nil {
		d.IsActive = *params.IsActive
	}
}

type PositionParams struct {
	Title        *string  `json:"title"`
	DepartmentID *string  `json:"department"`
	Description  *string  `json:"description"`
	BaseSalary   *float64 `json:"baseSalary"`
	Level        *string  `json:"level"`
	IsActive     *bool    `json:"isActive"`
}

func (s *Service) CreatePosition(ctx context.Context, params PositionParams) (Position, error) {
	p := Position{Level: "junior", IsActive: true}
	applyPositionParams(&p, params)

	ok, err := s.Store.DepartmentExists(ctx, p.DepartmentID)
	if err != nil {
		return Position{}, err
	}
	if !ok {
		return Position{}, &ReferenceError{Field: "department", ID: p.DepartmentID}
	}

	id, err := s.Store.CreatePosition(ctx, p)
	if err != nil {
		return Position{}, err
	}
	return s.Store.PositionByID(ctx, id)
}

func (s *Service) UpdatePosition(ctx context.Context, positionID string, params PositionParams) (Position, error) {
	existing, err := s.Store.PositionByID(ctx, positionID)
	if err != nil {
		return Position{}, err
	}
	applyPositionParams(&existing, params)

	ok, err := s.Store.DepartmentExists(ctx, existing.DepartmentID)
	if err != nil {
		return Position{}, err
	}
	if !ok {
		return Position{}, &ReferenceError{Field: "department", ID: existing.DepartmentID}
	}

	if err := s.Store.UpdatePosition(ctx, positionID, existing); err != nil {
		return Position{}, err
	}
	return s.Store.PositionByID(ctx, positionID)
}

func applyPositionParams(p *Position, params PositionParams) {
	if params.Title != nil {
		p.Title = strings.TrimSpace(*params.Title)
	}
	if params.DepartmentID != nil {
		p.DepartmentID = *params.DepartmentID
	}
	if params.Description != nil {
		p.Description = *params.Description
	}
	if params.BaseSalary != nil {
		p.BaseSalary = *params.BaseSalary
	}
	if params.Level != nil {
		p.Level = *params.Level
	}
	if params.IsActive != nil {
		p.IsActive = *params.IsActive
	}
}
