package performance

// ComputeOverall returns the arithmetic mean of the ratings that are
// set, or nil when none are. The write path calls it immediately before
// every persist; the overall rating is never settable by callers.
func ComputeOverall(r Ratings) *float64 {
	var sum, count int
	for _, rating := range []*int{r.Technical, r.Communication, r.Teamwork, r.Leadership, r.Innovation} {
		if rating != nil {
			sum += *rating
			count++
		}
	}
	if count == 0 {
		return nil
	}
	overall := float64(sum) / float64(count)
	return &overall
}
