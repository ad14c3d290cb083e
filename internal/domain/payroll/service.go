package payroll

import (
	"context"
	"time"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

type CreateParams struct {
	EmployeeID   string
	BasicSalary  float64
	Allowances   Allowances
	Deductions   Deductions
	Month        int
	Year         int
	WorkingDays  int
	AttendedDays int
	Overtime     Overtime
	Bonus        float64
}

func (s *Service) Create(ctx context.Context, params CreateParams) (Salary, error) {
	record := Salary{
		EmployeeID:   params.EmployeeID,
		BasicSalary:  params.BasicSalary,
		Allowances:   params.Allowances,
		Deductions:   params.Deductions,
		Month:        params.Month,
		Year:         params.Year,
		WorkingDays:  params.WorkingDays,
		AttendedDays: params.AttendedDays,
		Overtime:     params.Overtime,
		Bonus:        params.Bonus,
		Status:       StatusDraft,
	}
	if record.WorkingDays == 0 {
		record.WorkingDays = 22
	}
	record.NetSalary = ComputeNet(record)

	id, err := s.Store.CreateSalary(ctx, record)
	if err != nil {
		return Salary{}, err
	}
	return s.Store.SalaryByID(ctx, id)
}

type UpdateParams struct {
	BasicSalary  *float64
	Allowances   *Allowances
	Deductions   *Deductions
	Month        *int
	Year         *int
	WorkingDays  *int
	AttendedDays *int
	Overtime     *Overtime
	Bonus        *float64
}

func (s *Service) Update(ctx context.Context, salaryID string, params UpdateParams) (Salary, error) {
	existing, err := s.Store.SalaryByID(ctx, salaryID)
	if err != nil {
		return Salary{}, err
	}

	if params.BasicSalary != nil {
		existing.BasicSalary = *params.BasicSalary
	}
	if params.Allowances != nil {
		existing.Allowances = *params.Allowances
	}
	if params.Deductions != nil {
		existing.Deductions = *params.Deductions
	}
	if params.Month != nil {
		existing.Month = *params.Month
	}
	if params.Year != nil {
		existing.Year = *params.Year
	}
	if params.WorkingDays != nil {
		existing.WorkingDays = *params.WorkingDays
	}
	if params.AttendedDays != nil {
		existing.AttendedDays = *params.AttendedDays
	}
	if params.Overtime != nil {
		existing.Overtime = *params.Overtime
	}
	if params.Bonus != nil {
		existing.Bonus = *params.Bonus
	}
	existing.NetSalary = ComputeNet(existing)

	if err := s.Store.UpdateSalary(ctx, salaryID, existing); err != nil {
		return Salary{}, err
	}
	return s.Store.SalaryByID(ctx, salaryID)
}

func (s *Service) List(ctx context.Context, month, year int) ([]Salary, error) {
	return s.Store.ListSalaries(ctx, month, year)
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]Salary, error) {
	return s.Store.SalariesByEmployee(ctx, employeeID)
}

func (s *Service) Get(ctx context.Context, salaryID string) (Salary, error) {
	return s.Store.SalaryByID(ctx, salaryID)
}

// Process moves a draft record to processed and stamps the processing time.
func (s *Service) Process(ctx context.Context, salaryID string) (Salary, error) {
	if err := s.Store.TransitionStatus(ctx, salaryID, StatusDraft, StatusProcessed, true, time.Now().UTC()); err != nil {
		return Salary{}, err
	}
	return s.Store.SalaryByID(ctx, salaryID)
}

// MarkPaid moves a processed record to paid.
func (s *Service) MarkPaid(ctx context.Context, salaryID string) (Salary, error) {
	if err := s.Store.TransitionStatus(ctx, salaryID, StatusProcessed, StatusPaid, false, time.Time{}); err != nil {
		return Salary{}, err
	}
	return s.Store.SalaryByID(ctx, salaryID)
}
