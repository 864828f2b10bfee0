package domain

import "fmt"

// Cents is a monetary amount in minor units. All arithmetic in the system
// happens on integers so repeated additions never drift.
type Cents int64

// String formats the amount with two decimal places, e.g. 25050 -> "250.50".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
