package filter

// ring is a fixed-capacity buffer that overwrites its oldest value when full.
type ring struct {
	values []float64
	next   int
	n      int
}

func newRing(capacity int) *ring {
	return &ring{values: make([]float64, capacity)}
}

func (r *ring) push(v float64) {
	r.values[r.next] = v
	r.next = (r.next + 1) % len(r.values)
	if r.n < len(r.values) {
		r.n++
	}
}

func (r *ring) len() int {
	return r.n
}

// mean averages the held values.
func (r *ring) mean() float64 {
	var total float64
	for _, v := range r.slice() {
		total += v
	}
	return total / float64(r.n)
}

// slice copies the held values, oldest first.
func (r *ring) slice() []float64 {
	out := make([]float64, 0, r.n)
	start := r.next - r.n
	if start < 0 {
		start += len(r.values)
	}
	for i := 0; i < r.n; i++ {
		out = append(out, r.values[(start+i)%len(r.values)])
	}
	return out
}
