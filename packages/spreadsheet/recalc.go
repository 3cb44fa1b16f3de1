package spreadsheet

// calculationFrame is one cell on the DFS stack together with the
// dependents still to be visited from it
type calculationFrame struct {
	name       string
	dependents []string
	next       int
}

// calculationStack manages the explicit DFS stack used to order
// recalculation. a cell is unvisited, processing (on the stack) or
// completed.
type calculationStack struct {
	items      []*calculationFrame
	processing nameSet
	completed  nameSet
}

func newCalculationStack() *calculationStack {
	return &calculationStack{
		items:      make([]*calculationFrame, 0),
		processing: make(nameSet),
		completed:  make(nameSet),
	}
}

func (cs *calculationStack) push(name string, dependents []string) {
	cs.items = append(cs.items, &calculationFrame{name: name, dependents: dependents})
	cs.processing[name] = struct{}{}
}

func (cs *calculationStack) top() *calculationFrame {
	if len(cs.items) == 0 {
		return nil
	}
	return cs.items[len(cs.items)-1]
}

func (cs *calculationStack) pop() (*calculationFrame, bool) {
	if len(cs.items) == 0 {
		return nil, false
	}
	frame := cs.items[len(cs.items)-1]
	cs.items = cs.items[:len(cs.items)-1]
	delete(cs.processing, frame.name)
	return frame, true
}

func (cs *calculationStack) isProcessing(name string) bool {
	_, exists := cs.processing[name]
	return exists
}

func (cs *calculationStack) markCompleted(name string) {
	cs.completed[name] = struct{}{}
}

func (cs *calculationStack) isCompleted(name string) bool {
	_, exists := cs.completed[name]
	return exists
}

// CellsToRecalculate returns name followed by every cell that directly or
// indirectly depends on it, ordered so that each cell comes after all of
// its dependees among the result. fails with a *CircularError if the
// dependents of name lead back to a cell still being visited. the walk is
// iterative so arbitrarily long chains do not grow the goroutine stack.
func (dg *DependencyGraph) CellsToRecalculate(name string) ([]string, error) {
	stack := newCalculationStack()
	var postorder []string

	stack.push(name, dg.Dependents(name))
	for frame := stack.top(); frame != nil; frame = stack.top() {
		if frame.next < len(frame.dependents) {
			next := frame.dependents[frame.next]
			frame.next++
			if stack.isProcessing(next) {
				return nil, &CircularError{Cell: next}
			}
			if stack.isCompleted(next) {
				continue
			}
			stack.push(next, dg.Dependents(next))
			continue
		}
		stack.pop()
		stack.markCompleted(frame.name)
		postorder = append(postorder, frame.name)
	}

	// reverse postorder, name was completed last so it comes first
	order := make([]string, len(postorder))
	for i, cell := range postorder {
		order[len(postorder)-1-i] = cell
	}
	return order, nil
}
