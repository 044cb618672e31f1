// Package space holds the graph-structured world: nodes, edges, pathfinding,
// and the transit queues that carry delayed deliveries between nodes.
package space

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/pthm-cable/universe/components"
)

// Terrain classifies a node for world generation and flavor.
type Terrain uint8

const (
	TerrainPlains Terrain = iota
	TerrainForest
	TerrainMountain
	TerrainMarsh
)

// Node is a location in the world graph. Nodes are created at world
// generation and never destroyed.
type Node struct {
	ID           components.NodeID
	X, Y         float64 // layout coordinates, used for noise sampling and edge distances
	Terrain      Terrain
	Temperature  float64
	DisasterRate float64 // per-entity per-tick probability of a local disaster

	Capacity  []float64 // per-type resource capacity
	Resources []float64 // per-type resource pool; Resources[t] <= Capacity[t]
	WasteHeat float64   // dissipated, unharvestable energy pending radiation

	Entities  []components.EntityID
	Artifacts []components.ArtifactID
}

// AddResident registers an entity at the node.
func (n *Node) AddResident(id components.EntityID) {
	n.Entities = append(n.Entities, id)
}

// RemoveResident unregisters an entity. Missing ids are ignored.
func (n *Node) RemoveResident(id components.EntityID) {
	for i, e := range n.Entities {
		if e == id {
			n.Entities[i] = n.Entities[len(n.Entities)-1]
			n.Entities = n.Entities[:len(n.Entities)-1]
			return
		}
	}
}

// AddArtifact registers an artifact at the node.
func (n *Node) AddArtifact(id components.ArtifactID) {
	n.Artifacts = append(n.Artifacts, id)
}

// RemoveArtifact unregisters an artifact. Missing ids are ignored.
func (n *Node) RemoveArtifact(id components.ArtifactID) {
	for i, a := range n.Artifacts {
		if a == id {
			n.Artifacts[i] = n.Artifacts[len(n.Artifacts)-1]
			n.Artifacts = n.Artifacts[:len(n.Artifacts)-1]
			return
		}
	}
}

// Edge connects two nodes. Edges are created at world generation.
type Edge struct {
	ID         components.EdgeID
	A, B       components.NodeID
	Distance   float64
	TravelTime int64 // ticks to traverse
	Capacity   int   // max in-flight transit items
	Durability float64
}

// Other returns the endpoint opposite to from.
func (e *Edge) Other(from components.NodeID) components.NodeID {
	if e.A == from {
		return e.B
	}
	return e.A
}

// Space holds the node and edge arenas plus an adjacency index.
// IDs are dense indices into the arenas; there is no hashing on hot paths.
type Space struct {
	nodes []*Node
	edges []*Edge
	adj   [][]components.EdgeID // node id -> incident edge ids, in insertion order
}

// New creates an empty space.
func New() *Space {
	return &Space{}
}

// AddNode appends a node to the arena and returns it.
func (s *Space) AddNode(x, y float64, terrain Terrain, temperature, disasterRate float64, capacity []float64) *Node {
	n := &Node{
		ID:           components.NodeID(len(s.nodes)),
		X:            x,
		Y:            y,
		Terrain:      terrain,
		Temperature:  temperature,
		DisasterRate: disasterRate,
		Capacity:     capacity,
		Resources:    make([]float64, len(capacity)),
	}
	s.nodes = append(s.nodes, n)
	s.adj = append(s.adj, nil)
	return n
}

// AddEdge connects two existing nodes. Referencing a missing node is a
// world-generation invariant violation and fails construction.
func (s *Space) AddEdge(a, b components.NodeID, distance float64, travelTime int64, capacity int) (*Edge, error) {
	if !s.valid(a) || !s.valid(b) {
		return nil, fmt.Errorf("space: edge (%d,%d) references a missing node", a, b)
	}
	if a == b {
		return nil, fmt.Errorf("space: self-edge on node %d", a)
	}
	if travelTime < 1 {
		travelTime = 1
	}
	e := &Edge{
		ID:         components.EdgeID(len(s.edges)),
		A:          a,
		B:          b,
		Distance:   distance,
		TravelTime: travelTime,
		Capacity:   capacity,
		Durability: 1.0,
	}
	s.edges = append(s.edges, e)
	s.adj[a] = append(s.adj[a], e.ID)
	s.adj[b] = append(s.adj[b], e.ID)
	return e, nil
}

func (s *Space) valid(id components.NodeID) bool {
	return id >= 0 && int(id) < len(s.nodes)
}

// Node returns the node with the given id.
func (s *Space) Node(id components.NodeID) *Node { return s.nodes[id] }

// Edge returns the edge with the given id.
func (s *Space) Edge(id components.EdgeID) *Edge { return s.edges[id] }

// Nodes returns the node arena in id order.
func (s *Space) Nodes() []*Node { return s.nodes }

// Edges returns the edge arena in id order.
func (s *Space) Edges() []*Edge { return s.edges }

// NumNodes returns the node count.
func (s *Space) NumNodes() int { return len(s.nodes) }

// NumEdges returns the edge count.
func (s *Space) NumEdges() int { return len(s.edges) }

// Incident returns the edge ids touching a node, in insertion order.
func (s *Space) Incident(id components.NodeID) []components.EdgeID { return s.adj[id] }

// HasEdge reports whether an edge already connects a and b.
func (s *Space) HasEdge(a, b components.NodeID) bool {
	for _, eid := range s.adj[a] {
		if s.edges[eid].Other(a) == b {
			return true
		}
	}
	return false
}

// Path is the result of a shortest-path query. Cost is edge distance;
// TotalTravelTime accumulates travel time along the same selected path.
type Path struct {
	Nodes           []components.NodeID // from source to target inclusive
	Edges           []components.EdgeID // len(Nodes)-1 edges
	TotalDistance   float64
	TotalTravelTime int64
}

// pqItem is a priority-queue entry for Dijkstra.
type pqItem struct {
	node components.NodeID
	dist float64
}

type pq []pqItem

func (q pq) Len() int { return len(q) }
func (q pq) Less(i, j int) bool {
	// Tie-break on node id so path selection is reproducible.
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}
func (q pq) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *pq) Push(x any)        { *q = append(*q, x.(pqItem)) }
func (q *pq) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// ShortestPath runs Dijkstra over edge distance from a to b.
// Returns nil if b is unreachable.
func (s *Space) ShortestPath(a, b components.NodeID) *Path {
	if !s.valid(a) || !s.valid(b) {
		return nil
	}
	if a == b {
		return &Path{Nodes: []components.NodeID{a}}
	}

	n := len(s.nodes)
	dist := make([]float64, n)
	prevEdge := make([]components.EdgeID, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prevEdge[i] = -1
	}
	dist[a] = 0

	q := &pq{{node: a, dist: 0}}
	for q.Len() > 0 {
		it := heap.Pop(q).(pqItem)
		if done[it.node] {
			continue
		}
		done[it.node] = true
		if it.node == b {
			break
		}
		for _, eid := range s.adj[it.node] {
			e := s.edges[eid]
			next := e.Other(it.node)
			if done[next] {
				continue
			}
			nd := dist[it.node] + e.Distance
			if nd < dist[next] {
				dist[next] = nd
				prevEdge[next] = eid
				heap.Push(q, pqItem{node: next, dist: nd})
			}
		}
	}

	if math.IsInf(dist[b], 1) {
		return nil
	}

	// Walk predecessors back from target, then reverse.
	p := &Path{TotalDistance: dist[b]}
	for at := b; at != a; {
		eid := prevEdge[at]
		e := s.edges[eid]
		p.Edges = append(p.Edges, eid)
		p.Nodes = append(p.Nodes, at)
		p.TotalTravelTime += e.TravelTime
		at = e.Other(at)
	}
	p.Nodes = append(p.Nodes, a)
	reverseNodes(p.Nodes)
	reverseEdges(p.Edges)
	return p
}

// Distance returns the shortest-path distance from a to b, or +Inf when
// unreachable.
func (s *Space) Distance(a, b components.NodeID) float64 {
	p := s.ShortestPath(a, b)
	if p == nil {
		return math.Inf(1)
	}
	return p.TotalDistance
}

// IsConnected reports whether every node is reachable from node 0.
func (s *Space) IsConnected() bool {
	if len(s.nodes) == 0 {
		return true
	}
	seen := make([]bool, len(s.nodes))
	queue := []components.NodeID{0}
	seen[0] = true
	count := 1
	for len(queue) > 0 {
		at := queue[0]
		queue = queue[1:]
		for _, eid := range s.adj[at] {
			next := s.edges[eid].Other(at)
			if !seen[next] {
				seen[next] = true
				count++
				queue = append(queue, next)
			}
		}
	}
	return count == len(s.nodes)
}

func reverseNodes(s []components.NodeID) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseEdges(s []components.EdgeID) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
