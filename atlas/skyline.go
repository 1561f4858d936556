package atlas

// skyline packs rectangles against a frontier of occupied-height segments.
//
// The node slice is the arena holding the frontier left to right: node i
// covers [x, x+width) at height y, meaning everything below y in that span
// is occupied. Placing a rectangle raises the frontier over its span and
// merges segments that end up level. This is the fontstash packing scheme;
// it never moves a placed rectangle, so previously returned positions stay
// valid until reset.
type skyline struct {
	width  int
	height int
	nodes  []skylineNode
}

type skylineNode struct {
	x, y, width int
}

func newSkyline(width, height int) *skyline {
	s := &skyline{
		width:  width,
		height: height,
		nodes:  make([]skylineNode, 1, 16),
	}
	s.nodes[0] = skylineNode{x: 0, y: 0, width: width}
	return s
}

// reset discards all placements.
func (s *skyline) reset() {
	s.nodes = s.nodes[:1]
	s.nodes[0] = skylineNode{x: 0, y: 0, width: s.width}
}

// fits returns the y position a w×h rectangle would occupy when placed at
// node i, or -1 if it does not fit there.
func (s *skyline) fits(i, w, h int) int {
	x := s.nodes[i].x
	if x+w > s.width {
		return -1
	}
	y := s.nodes[i].y
	spaceLeft := w
	for spaceLeft > 0 {
		if i == len(s.nodes) {
			return -1
		}
		if s.nodes[i].y > y {
			y = s.nodes[i].y
		}
		if y+h > s.height {
			return -1
		}
		spaceLeft -= s.nodes[i].width
		i++
	}
	return y
}

// place finds the best position for a w×h rectangle and advances the
// frontier. Best fit is the position with the lowest resulting top edge,
// ties broken by the narrower candidate node and then by the leftmost x
// (nodes are scanned left to right with strict comparisons), so the same
// call sequence always produces the same placement.
func (s *skyline) place(w, h int) (x, y int, ok bool) {
	// Seed one past the page height so a rectangle whose top edge lands
	// exactly on the page bottom is still a candidate.
	bestH := s.height + 1
	bestW := s.width + 1
	bestI := -1
	for i := range s.nodes {
		fy := s.fits(i, w, h)
		if fy == -1 {
			continue
		}
		if fy+h < bestH || (fy+h == bestH && s.nodes[i].width < bestW) {
			bestI = i
			bestW = s.nodes[i].width
			bestH = fy + h
			x = s.nodes[i].x
			y = fy
		}
	}
	if bestI == -1 {
		return -1, -1, false
	}
	s.raise(bestI, x, y, w, h)
	return x, y, true
}

// raise inserts a new frontier segment over the placed rectangle and
// shrinks or removes the segments it shadows, then merges level neighbors.
func (s *skyline) raise(idx, x, y, w, h int) {
	s.insertNode(idx, x, y+h, w)

	for i := idx + 1; i < len(s.nodes); i++ {
		prev := s.nodes[i-1]
		if s.nodes[i].x >= prev.x+prev.width {
			break
		}
		shrink := prev.x + prev.width - s.nodes[i].x
		s.nodes[i].x += shrink
		s.nodes[i].width -= shrink
		if s.nodes[i].width > 0 {
			break
		}
		s.removeNode(i)
		i--
	}

	for i := 0; i < len(s.nodes)-1; i++ {
		if s.nodes[i].y == s.nodes[i+1].y {
			s.nodes[i].width += s.nodes[i+1].width
			s.removeNode(i + 1)
			i--
		}
	}
}

func (s *skyline) insertNode(idx, x, y, w int) {
	s.nodes = append(s.nodes, skylineNode{})
	copy(s.nodes[idx+1:], s.nodes[idx:])
	s.nodes[idx] = skylineNode{x: x, y: y, width: w}
}

func (s *skyline) removeNode(idx int) {
	s.nodes = append(s.nodes[:idx], s.nodes[idx+1:]...)
}
