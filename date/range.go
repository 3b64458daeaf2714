package date

import "fmt"

// Range represents a range of dates.
type Range struct{ From, To Date }

// Month returns the calendar month containing d.
func Month(d Date) Range { return Range{From: d.StartOfMonth(), To: d.EndOfMonth()} }

// Year returns the calendar year y.
func Year(y int) Range { return Range{From: New(y, 1, 1), To: New(y, 12, 31)} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
