package payroll

// ComputeNet is the net-pay formula:
//
//	net = basic + Σallowances + overtime.hours×overtime.rate + bonus − Σdeductions
//
// It is a total function of the record's own fields; attendedDays is
// accepted as given and plays no part. The write path calls it
// immediately before every persist, so the stored net can never drift
// from the component fields.
func ComputeNet(s Salary) float64 {
	return s.BasicSalary + s.Allowances.Total() + s.Overtime.Hours*s.Overtime.Rate + s.Bonus - s.Deductions.Total()
}
