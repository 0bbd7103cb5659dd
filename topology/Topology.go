// Package topology implements an immutable, weighted, undirected network
// topology of switches and hosts.
//
// A Topology owns the bijection between node names and the integer
// indices used by the learning algorithms. Indices are assigned once, in
// the order in which nodes are first seen, and never change for the
// lifetime of the Topology.
//
// Graph views are built with gonum v0.9.3, whose graph iterators need
// the safe build tag on Go 1.21 and later:
//
//	go test -tags safe ./...
package topology

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

const (
	// Default prefixes used to tell switches from hosts
	DefaultSwitchPrefix string = "s"
	DefaultHostPrefix   string = "h"
)

// Link is an undirected link between two nodes together with its
// quality of service metrics.
type Link struct {
	From string
	To   string

	Delay     float64 // ms, >= 0
	Bandwidth float64 // Mbps, > 0
	Loss      float64 // percent, in [0, 100]
}

// CostWeights are the weights of the derived scalar link cost:
//
//	cost = Delay*delay + Bandwidth*(1/bandwidth) + Loss*loss
type CostWeights struct {
	Delay     float64 `json:"delay" mapstructure:"delay" yaml:"delay"`
	Bandwidth float64 `json:"bandwidth" mapstructure:"bandwidth" yaml:"bandwidth"`
	Loss      float64 `json:"loss" mapstructure:"loss" yaml:"loss"`
}

// DefaultCostWeights weighs each term of the link cost equally
func DefaultCostWeights() CostWeights {
	return CostWeights{Delay: 1.0, Bandwidth: 1.0, Loss: 1.0}
}

// Option configures a Topology on construction
type Option func(*Topology)

// WithCostWeights sets the weights used to derive link costs
func WithCostWeights(w CostWeights) Option {
	return func(t *Topology) {
		t.weights = w
	}
}

// WithPrefixes sets the node name prefixes of switches and hosts
func WithPrefixes(switchPrefix, hostPrefix string) Option {
	return func(t *Topology) {
		t.switchPrefix = switchPrefix
		t.hostPrefix = hostPrefix
	}
}

// Topology is a read-only weighted undirected graph
type Topology struct {
	nodes     []string
	index     map[string]int
	neighbors [][]int
	links     map[[2]int]Link

	weights      CostWeights
	switchPrefix string
	hostPrefix   string
}

// New returns a new Topology with the given nodes and links. Nodes which
// only appear as link endpoints are added after the nodes argument in
// the order in which they are first seen. Neighbor lists keep the order
// in which links were given so that every walk over the Topology is
// deterministic.
func New(nodes []string, links []Link, opts ...Option) (*Topology, error) {
	t := &Topology{
		index:        make(map[string]int, len(nodes)),
		links:        make(map[[2]int]Link, len(links)),
		weights:      DefaultCostWeights(),
		switchPrefix: DefaultSwitchPrefix,
		hostPrefix:   DefaultHostPrefix,
	}
	for _, opt := range opts {
		opt(t)
	}

	for _, node := range nodes {
		if node == "" {
			return nil, fmt.Errorf("new: node names cannot be empty")
		}
		if _, ok := t.index[node]; ok {
			return nil, fmt.Errorf("new: duplicate node %q", node)
		}
		t.add(node)
	}

	for _, link := range links {
		if err := validate(link); err != nil {
			return nil, fmt.Errorf("new: %v", err)
		}

		u, v := t.add(link.From), t.add(link.To)
		key := edgeKey(u, v)
		if _, ok := t.links[key]; ok {
			return nil, fmt.Errorf("new: duplicate link %v-%v", link.From,
				link.To)
		}

		t.links[key] = link
		t.neighbors[u] = append(t.neighbors[u], v)
		t.neighbors[v] = append(t.neighbors[v], u)
	}

	return t, nil
}

// add adds a node if it does not yet exist and returns its index
func (t *Topology) add(node string) int {
	if i, ok := t.index[node]; ok {
		return i
	}
	i := len(t.nodes)
	t.index[node] = i
	t.nodes = append(t.nodes, node)
	t.neighbors = append(t.neighbors, nil)
	return i
}

// validate checks the metrics of a link
func validate(l Link) error {
	switch {
	case l.From == "" || l.To == "":
		return fmt.Errorf("link endpoints cannot be empty")
	case l.From == l.To:
		return fmt.Errorf("self loop on node %q", l.From)
	case l.Delay < 0:
		return fmt.Errorf("link %v-%v: delay must be >= 0, have(%v)", l.From,
			l.To, l.Delay)
	case l.Bandwidth <= 0:
		return fmt.Errorf("link %v-%v: bandwidth must be > 0, have(%v)",
			l.From, l.To, l.Bandwidth)
	case l.Loss < 0 || l.Loss > 100:
		return fmt.Errorf("link %v-%v: loss must be in [0, 100], have(%v)",
			l.From, l.To, l.Loss)
	}
	return nil
}

func edgeKey(u, v int) [2]int {
	if u > v {
		u, v = v, u
	}
	return [2]int{u, v}
}

// Len returns the number of nodes in the Topology
func (t *Topology) Len() int {
	return len(t.nodes)
}

// Nodes returns the names of all nodes, ordered by index
func (t *Topology) Nodes() []string {
	nodes := make([]string, len(t.nodes))
	copy(nodes, t.nodes)
	return nodes
}

// Node returns the name of the node at index i
func (t *Topology) Node(i int) string {
	return t.nodes[i]
}

// Index returns the index of a node
func (t *Topology) Index(node string) (int, error) {
	i, ok := t.index[node]
	if !ok {
		return -1, &UnknownNodeError{Node: node}
	}
	return i, nil
}

// Has returns whether the node exists in the Topology
func (t *Topology) Has(node string) bool {
	_, ok := t.index[node]
	return ok
}

// Neighbors returns the names of the neighbors of a node
func (t *Topology) Neighbors(node string) ([]string, error) {
	i, err := t.Index(node)
	if err != nil {
		return nil, err
	}

	neighbors := make([]string, len(t.neighbors[i]))
	for j, n := range t.neighbors[i] {
		neighbors[j] = t.nodes[n]
	}
	return neighbors, nil
}

// NeighborIndices returns the indices of the neighbors of the node at
// index i. The returned slice must not be modified.
func (t *Topology) NeighborIndices(i int) []int {
	return t.neighbors[i]
}

// Degree returns the number of links of the node at index i
func (t *Topology) Degree(i int) int {
	return len(t.neighbors[i])
}

// HasLink returns whether the nodes at indices u and v are adjacent
func (t *Topology) HasLink(u, v int) bool {
	_, ok := t.links[edgeKey(u, v)]
	return ok
}

// LinkAt returns the link between the nodes at indices u and v
func (t *Topology) LinkAt(u, v int) (Link, bool) {
	l, ok := t.links[edgeKey(u, v)]
	return l, ok
}

// Link returns the link between two adjacent nodes
func (t *Topology) Link(from, to string) (Link, error) {
	u, err := t.Index(from)
	if err != nil {
		return Link{}, err
	}
	v, err := t.Index(to)
	if err != nil {
		return Link{}, err
	}

	l, ok := t.LinkAt(u, v)
	if !ok {
		return Link{}, fmt.Errorf("link: %v-%v: %w", from, to, ErrNoLink)
	}
	return l, nil
}

// Links returns all links of the Topology in no particular order
func (t *Topology) Links() []Link {
	links := make([]Link, 0, len(t.links))
	for _, l := range t.links {
		links = append(links, l)
	}
	return links
}

// CostWeights returns the weights used to compute link costs
func (t *Topology) CostWeights() CostWeights {
	return t.weights
}

// Cost returns the derived scalar cost of a link
func (t *Topology) Cost(l Link) float64 {
	w := t.weights
	return w.Delay*l.Delay + w.Bandwidth*(1/l.Bandwidth) + w.Loss*l.Loss
}

// IsSwitch returns whether a node is named as a switch
func (t *Topology) IsSwitch(node string) bool {
	return strings.HasPrefix(node, t.switchPrefix)
}

// IsHost returns whether a node is named as a host
func (t *Topology) IsHost(node string) bool {
	return strings.HasPrefix(node, t.hostPrefix)
}

// Hosts returns all hosts in index order
func (t *Topology) Hosts() []string {
	return t.filter(t.IsHost)
}

// Switches returns all switches in index order
func (t *Topology) Switches() []string {
	return t.filter(t.IsSwitch)
}

func (t *Topology) filter(keep func(string) bool) []string {
	var nodes []string
	for _, n := range t.nodes {
		if keep(n) {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Graph returns a gonum view of the Topology where the ID of each node
// is its index. Edge weights are link costs.
func (t *Topology) Graph() *simple.WeightedUndirectedGraph {
	return t.graph(func(l Link) float64 { return t.Cost(l) })
}

// HopGraph returns a gonum view of the Topology where every edge has
// unit weight.
func (t *Topology) HopGraph() *simple.WeightedUndirectedGraph {
	return t.graph(func(Link) float64 { return 1.0 })
}

func (t *Topology) graph(weight func(Link) float64) *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := range t.nodes {
		g.AddNode(simple.Node(int64(i)))
	}
	for key, l := range t.links {
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(int64(key[0])),
			T: simple.Node(int64(key[1])),
			W: weight(l),
		})
	}
	return g
}

// GraphNode returns the gonum node of the node at index i
func GraphNode(i int) graph.Node {
	return simple.Node(int64(i))
}
