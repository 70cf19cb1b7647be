package calc

// Add returns the sum of a and b.
func Add(a, b int) int {
	return a + b
}

// Sub needs documentation.
//
// Parameters: a, b
func Sub(a, b int) int {
	return a - b
}

type Acc struct{ n int }

// Inc needs documentation.
func (c *Acc) Inc() {
	c.n++
}
