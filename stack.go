package calc

// stack is a LIFO list of values.
type stack[T any] struct {
	v []T
}

func (s *stack[T]) push(x T) {
	s.v = append(s.v, x)
}

// pop removes and returns the top of the stack. If the stack is empty, the
// result is the zero value and false.
func (s *stack[T]) pop() (T, bool) {
	var x T
	if len(s.v) == 0 {
		return x, false
	}
	x = s.v[len(s.v)-1]
	s.v = s.v[:len(s.v)-1]
	return x, true
}

// peek returns the top of the stack without removing it.
func (s *stack[T]) peek() (T, bool) {
	var x T
	if len(s.v) == 0 {
		return x, false
	}
	return s.v[len(s.v)-1], true
}

func (s *stack[T]) len() int {
	return len(s.v)
}

// reset empties the stack, keeping its storage.
func (s *stack[T]) reset() {
	clear(s.v)
	s.v = s.v[:0]
}
