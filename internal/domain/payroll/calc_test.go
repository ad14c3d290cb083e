package payroll

import "testing"

func TestComputeNet(t *testing.T) {
	tests := []struct {
		name   string
		salary Salary
		want   float64
	}{
		{
			name: "full breakdown",
			salary: Salary{
				BasicSalary: 60000,
				Allowances:  Allowances{HRA: 12000},
				Deductions:  Deductions{PF: 4000, Tax: 2500},
				Overtime:    Overtime{Hours: 5, Rate: 300},
				Bonus:       2000,
			},
			want: 69000,
		},
		{
			name:   "all zero",
			salary: Salary{},
			want:   0,
		},
		{
			name: "basic only",
			salary: Salary{
				BasicSalary: 50000,
			},
			want: 50000,
		},
		{
			name: "every allowance and deduction",
			salary: Salary{
				BasicSalary: 40000,
				Allowances:  Allowances{HRA: 1000, Transport: 500, Meal: 300, Medical: 200, Other: 100},
				Deductions:  Deductions{PF: 800, Tax: 700, Insurance: 400, Other: 100},
			},
			want: 40100,
		},
		{
			name: "deductions exceed earnings",
			salary: Salary{
				BasicSalary: 1000,
				Deductions:  Deductions{Tax: 2500},
			},
			want: -1500,
		},
		{
			name: "negative adjustment fields pass through",
			salary: Salary{
				BasicSalary: 30000,
				Bonus:       -5000,
				Allowances:  Allowances{Other: -1000},
			},
			want: 24000,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeNet(tc.salary); got != tc.want {
				t.Fatalf("expected net %v, got %v", tc.want, got)
			}
		})
	}
}

func TestComputeNetIgnoresAttendance(t *testing.T) {
	base := Salary{BasicSalary: 50000, WorkingDays: 22, AttendedDays: 22}
	half := base
	half.AttendedDays = 11

	if ComputeNet(base) != ComputeNet(half) {
		t.Fatal("attended days must not affect the net computation")
	}
}
