package gridgraph

// ConnectedComponents finds all 4-connected regions of Open cells.
// Components are discovered by scanning coordinates in (X, Y) order, and each
// component lists its cells in flood-fill order using DefaultNeighborOrder,
// so the result is deterministic.
//
// Time:   O(V) for V surveyed cells.
// Memory: O(V) for the label map and output.
func (m *TraversabilityMap) ConnectedComponents() [][]Coordinate {
	comps, _ := m.label()
	return comps
}

// ComponentLabels maps every Open cell to the index of its component in
// ConnectedComponents. Blocked and Absent cells have no entry.
func (m *TraversabilityMap) ComponentLabels() map[Coordinate]int {
	_, labels := m.label()
	return labels
}

// ComponentOf returns the region containing c, in flood-fill order.
// It returns nil when c is not Open.
func (m *TraversabilityMap) ComponentOf(c Coordinate) []Coordinate {
	if !m.IsOpen(c) {
		return nil
	}
	comps, labels := m.label()
	return comps[labels[c]]
}

// Connected reports whether a and b are Open and lie in the same component.
func (m *TraversabilityMap) Connected(a, b Coordinate) bool {
	if !m.IsOpen(a) || !m.IsOpen(b) {
		return false
	}
	labels := m.ComponentLabels()
	return labels[a] == labels[b]
}

func (m *TraversabilityMap) label() ([][]Coordinate, map[Coordinate]int) {
	labels := make(map[Coordinate]int, m.open)
	order := DefaultNeighborOrder()
	var comps [][]Coordinate

	for _, seed := range m.coords {
		if m.cells[seed] != Open {
			continue // blocked
		}
		if _, seen := labels[seed]; seen {
			continue
		}
		id := len(comps)
		labels[seed] = id
		queue := []Coordinate{seed}
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			for _, d := range order {
				v := u.Add(d)
				if m.cells[v] != Open {
					continue
				}
				if _, seen := labels[v]; !seen {
					labels[v] = id
					queue = append(queue, v)
				}
			}
		}
		comps = append(comps, queue)
	}
	return comps, labels
}
