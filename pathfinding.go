package server

import (
	"container/heap"
	"fmt"
	"math"
)

// Pathfinder supplies waypoint routes for the fleet. The fleet engine treats
// the returned sequences as opaque; callers may hand the same remainder slice
// back to the path follower across many ticks.
type Pathfinder interface {
	// ApproachPath routes from an arbitrary floor position to the given
	// court's service entry point.
	ApproachPath(from vec2, courtID string) []vec2
	// DepotPath routes from an arbitrary floor position back to the depot.
	DepotPath(from vec2) []vec2
	// CleaningPath returns the full sweep pattern for a court. The pattern
	// covers both halves and routes around the no-cross zone at the net.
	CleaningPath(courtID string) []vec2
}

const (
	courtApron   = 1.0 // cleared floor around each court footprint
	aisleWidth   = 3.0
	depotStrip   = 8.0 // open floor along the facility's south edge
	gridCellSize = 1.0
	robotHalf    = 0.4

	sweepLaneStep = 0.8
	sweepInset    = 0.3
	netBuffer     = 0.5 // half-width of the no-cross band at the midline
)

type courtPlacement struct {
	center vec2
	minX   float64
	minY   float64
	maxX   float64
	maxY   float64
}

type facilityLayout struct {
	placements []courtPlacement
	width      float64
	height     float64
	depot      vec2
}

// planFacilityLayout arranges courts in rows with aisles between them and an
// open depot strip along the south edge.
func planFacilityLayout(count, perRow int) facilityLayout {
	if count <= 0 {
		count = 1
	}
	if perRow <= 0 {
		perRow = count
	}
	footW := courtLength + 2*courtApron
	footH := courtWidth + 2*courtApron
	cols := perRow
	if count < perRow {
		cols = count
	}
	rows := (count + perRow - 1) / perRow

	layout := facilityLayout{
		width:  aisleWidth + float64(cols)*(footW+aisleWidth),
		height: depotStrip + float64(rows)*(footH+aisleWidth),
		depot:  vec2{X: aisleWidth, Y: depotStrip / 2},
	}

	for i := 0; i < count; i++ {
		row := i / perRow
		col := i % perRow
		minX := aisleWidth + float64(col)*(footW+aisleWidth)
		minY := depotStrip + float64(row)*(footH+aisleWidth)
		layout.placements = append(layout.placements, courtPlacement{
			center: vec2{X: minX + footW/2, Y: minY + footH/2},
			minX:   minX,
			minY:   minY,
			maxX:   minX + footW,
			maxY:   minY + footH,
		})
	}
	return layout
}

// entryPoint is where approach paths terminate: mid-span of the court's
// south apron edge, one cell out into the aisle.
func (p courtPlacement) entryPoint() vec2 {
	return vec2{X: p.center.X, Y: p.minY - gridCellSize/2}
}

// facilityPlanner is the default Pathfinder: an A* search over a coarse
// walkability grid of the facility floor, plus a sweep-pattern generator.
type facilityPlanner struct {
	grid   *floorGrid
	courts map[string]courtPlacement
	depot  vec2
}

func newFacilityPlanner(layout facilityLayout) *facilityPlanner {
	courts := make(map[string]courtPlacement, len(layout.placements))
	for i, placement := range layout.placements {
		courts[courtIDForIndex(i)] = placement
	}
	return &facilityPlanner{
		grid:   newFloorGrid(layout),
		courts: courts,
		depot:  layout.depot,
	}
}

func courtIDForIndex(i int) string {
	return fmt.Sprintf("court-%d", i+1)
}

func (p *facilityPlanner) ApproachPath(from vec2, courtID string) []vec2 {
	placement, ok := p.courts[courtID]
	if !ok {
		return nil
	}
	path, found := p.grid.findPath(from, placement.entryPoint())
	if !found {
		return nil
	}
	return path
}

func (p *facilityPlanner) DepotPath(from vec2) []vec2 {
	path, found := p.grid.findPath(from, p.depot)
	if !found {
		return nil
	}
	return path
}

// CleaningPath generates the serpentine sweep for one court. Each half is
// swept in lanes parallel to the width; the transfer between halves detours
// through the apron below the court so the pattern never crosses the
// no-cross band at the midline.
func (p *facilityPlanner) CleaningPath(courtID string) []vec2 {
	placement, ok := p.courts[courtID]
	if !ok {
		return nil
	}

	lowY := placement.minY + sweepInset
	highY := placement.maxY - sweepInset
	mid := placement.center.X
	apronY := placement.minY - gridCellSize/2

	path := make([]vec2, 0, 64)
	path = append(path, placement.entryPoint())

	// West half: lanes from the outer edge up to the no-cross band.
	path = appendLanes(path, placement.minX+sweepInset, mid-netBuffer, lowY, highY)

	// Transfer around the net through the apron.
	last := path[len(path)-1]
	path = append(path, vec2{X: last.X, Y: apronY}, vec2{X: mid + netBuffer, Y: apronY})

	// East half.
	path = appendLanes(path, mid+netBuffer, placement.maxX-sweepInset, lowY, highY)

	// Exit back to the aisle.
	last = path[len(path)-1]
	path = append(path, vec2{X: last.X, Y: apronY})
	return path
}

// appendLanes emits a serpentine lane set between x positions [fromX, toX].
func appendLanes(path []vec2, fromX, toX, lowY, highY float64) []vec2 {
	up := true
	for x := fromX; x <= toX; x += sweepLaneStep {
		if up {
			path = append(path, vec2{X: x, Y: lowY}, vec2{X: x, Y: highY})
		} else {
			path = append(path, vec2{X: x, Y: highY}, vec2{X: x, Y: lowY})
		}
		up = !up
	}
	return path
}

// floorGrid is the walkability grid used for aisle routing. Cells overlapped
// by a court footprint (inflated by the robot's radius) are blocked.
type floorGrid struct {
	cols, rows int
	cellSize   float64
	walkable   []bool
	width      float64
	height     float64
}

type gridNeighbor struct {
	col      int
	row      int
	cost     float64
	diagonal bool
}

var gridNeighborOffsets = [...]gridNeighbor{
	{col: 0, row: -1, cost: 1},
	{col: 1, row: 0, cost: 1},
	{col: 0, row: 1, cost: 1},
	{col: -1, row: 0, cost: 1},
	{col: 1, row: -1, cost: math.Sqrt2, diagonal: true},
	{col: 1, row: 1, cost: math.Sqrt2, diagonal: true},
	{col: -1, row: 1, cost: math.Sqrt2, diagonal: true},
	{col: -1, row: -1, cost: math.Sqrt2, diagonal: true},
}

func newFloorGrid(layout facilityLayout) *floorGrid {
	cols := int(math.Ceil(layout.width / gridCellSize))
	rows := int(math.Ceil(layout.height / gridCellSize))
	if cols <= 0 {
		cols = 1
	}
	if rows <= 0 {
		rows = 1
	}
	grid := &floorGrid{
		cols:     cols,
		rows:     rows,
		cellSize: gridCellSize,
		walkable: make([]bool, cols*rows),
		width:    layout.width,
		height:   layout.height,
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cx := (float64(col) + 0.5) * grid.cellSize
			cy := (float64(row) + 0.5) * grid.cellSize
			blocked := false
			for _, placement := range layout.placements {
				if cx >= placement.minX-robotHalf && cx <= placement.maxX+robotHalf &&
					cy >= placement.minY-robotHalf && cy <= placement.maxY+robotHalf {
					blocked = true
					break
				}
			}
			if !blocked {
				grid.walkable[row*cols+col] = true
			}
		}
	}
	return grid
}

func (g *floorGrid) inBounds(col, row int) bool {
	return g != nil && col >= 0 && row >= 0 && col < g.cols && row < g.rows
}

func (g *floorGrid) index(col, row int) int {
	return row*g.cols + col
}

func (g *floorGrid) isWalkable(col, row int) bool {
	return g.inBounds(col, row) && g.walkable[g.index(col, row)]
}

func (g *floorGrid) worldPos(col, row int) vec2 {
	return vec2{
		X: (float64(col) + 0.5) * g.cellSize,
		Y: (float64(row) + 0.5) * g.cellSize,
	}
}

func (g *floorGrid) locate(p vec2) (int, int, bool) {
	if g == nil || g.cols == 0 || g.rows == 0 {
		return 0, 0, false
	}
	x := clampFloat(p.X, 0, g.width-1e-6)
	y := clampFloat(p.Y, 0, g.height-1e-6)
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)
	if !g.inBounds(col, row) {
		return 0, 0, false
	}
	return col, row, true
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// closestWalkable breadth-first searches outward for the nearest open cell,
// for when a robot starts inside a court footprint (e.g. right after a
// cleaning pass).
func (g *floorGrid) closestWalkable(col, row int) (int, int, bool) {
	if !g.inBounds(col, row) {
		return 0, 0, false
	}
	type cell struct{ col, row int }
	visited := map[int]struct{}{g.index(col, row): {}}
	queue := []cell{{col, row}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if g.walkable[g.index(current.col, current.row)] {
			return current.col, current.row, true
		}
		for _, delta := range gridNeighborOffsets {
			nc := current.col + delta.col
			nr := current.row + delta.row
			if !g.inBounds(nc, nr) {
				continue
			}
			idx := g.index(nc, nr)
			if _, seen := visited[idx]; seen {
				continue
			}
			visited[idx] = struct{}{}
			queue = append(queue, cell{nc, nr})
		}
	}
	return 0, 0, false
}

type gridPoint struct {
	col int
	row int
}

func (g *floorGrid) heuristic(a, b gridPoint) float64 {
	dx := math.Abs(float64(a.col - b.col))
	dy := math.Abs(float64(a.row - b.row))
	if dx > dy {
		return dx + (math.Sqrt2-1)*dy
	}
	return dy + (math.Sqrt2-1)*dx
}

func (g *floorGrid) canTraverseDiagonal(current gridPoint, delta gridNeighbor) bool {
	if !delta.diagonal {
		return true
	}
	return g.isWalkable(current.col+delta.col, current.row) &&
		g.isWalkable(current.col, current.row+delta.row)
}

type searchNode struct {
	point  gridPoint
	g      float64
	f      float64
	index  int
	parent *searchNode
}

type searchQueue []*searchNode

func (pq searchQueue) Len() int { return len(pq) }

func (pq searchQueue) Less(i, j int) bool { return pq[i].f < pq[j].f }

func (pq searchQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *searchQueue) Push(x any) {
	n := len(*pq)
	item := x.(*searchNode)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *searchQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

func (g *floorGrid) astar(start, goal gridPoint) ([]gridPoint, bool) {
	open := &searchQueue{}
	heap.Init(open)
	heap.Push(open, &searchNode{point: start, f: g.heuristic(start, goal)})
	gScore := map[int]float64{g.index(start.col, start.row): 0}
	closed := make(map[int]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)
		currIdx := g.index(current.point.col, current.point.row)
		if _, seen := closed[currIdx]; seen {
			continue
		}
		closed[currIdx] = struct{}{}
		if current.point == goal {
			return reconstructRoute(current), true
		}

		for _, delta := range gridNeighborOffsets {
			if !g.canTraverseDiagonal(current.point, delta) {
				continue
			}
			nc := current.point.col + delta.col
			nr := current.point.row + delta.row
			if !g.isWalkable(nc, nr) {
				continue
			}
			idx := g.index(nc, nr)
			if _, seen := closed[idx]; seen {
				continue
			}
			tentative := current.g + delta.cost
			if prev, ok := gScore[idx]; ok && tentative >= prev {
				continue
			}
			gScore[idx] = tentative
			next := gridPoint{col: nc, row: nr}
			heap.Push(open, &searchNode{
				point:  next,
				g:      tentative,
				f:      tentative + g.heuristic(next, goal),
				parent: current,
			})
		}
	}
	return nil, false
}

func reconstructRoute(end *searchNode) []gridPoint {
	if end == nil {
		return nil
	}
	route := make([]gridPoint, 0)
	for node := end; node != nil; node = node.parent {
		route = append(route, node.point)
	}
	for i := 0; i < len(route)/2; i++ {
		j := len(route) - 1 - i
		route[i], route[j] = route[j], route[i]
	}
	return route
}

// findPath routes between two floor positions, snapping an unwalkable start
// cell to the nearest open one. The exact target point is appended so the
// follower arrives on it, not on a cell center.
func (g *floorGrid) findPath(from, to vec2) ([]vec2, bool) {
	startCol, startRow, ok := g.locate(from)
	if !ok {
		return nil, false
	}
	goalCol, goalRow, ok := g.locate(to)
	if !ok {
		return nil, false
	}
	if !g.walkable[g.index(startCol, startRow)] {
		startCol, startRow, ok = g.closestWalkable(startCol, startRow)
		if !ok {
			return nil, false
		}
	}
	if !g.walkable[g.index(goalCol, goalRow)] {
		goalCol, goalRow, ok = g.closestWalkable(goalCol, goalRow)
		if !ok {
			return nil, false
		}
	}

	nodes, found := g.astar(gridPoint{startCol, startRow}, gridPoint{goalCol, goalRow})
	if !found || len(nodes) == 0 {
		return nil, false
	}
	if len(nodes) == 1 {
		return []vec2{to}, true
	}
	path := make([]vec2, 0, len(nodes))
	for i := 1; i < len(nodes); i++ {
		path = append(path, g.worldPos(nodes[i].col, nodes[i].row))
	}
	last := path[len(path)-1]
	dx := last.X - to.X
	dy := last.Y - to.Y
	if dx*dx+dy*dy > 1 {
		path = append(path, to)
	} else {
		path[len(path)-1] = to
	}
	return path, true
}
