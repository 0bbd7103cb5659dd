// Package csvloader reads and writes topologies as CSV edge lists.
//
// Each row of a topology file describes one undirected link:
//
//	node1,node2,delay,bandwidth,loss
//	s0,s1,2.5,100,0.1
//
// The header row is required.
package csvloader

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/samuelfneumann/rlroute/topology"
)

// Row is a single link of a topology file
type Row struct {
	Node1     string  `csv:"node1"`
	Node2     string  `csv:"node2"`
	Delay     float64 `csv:"delay"`
	Bandwidth float64 `csv:"bandwidth"`
	Loss      float64 `csv:"loss"`
}

// Read reads a topology from r
func Read(r io.Reader, opts ...topology.Option) (*topology.Topology, error) {
	var rows []*Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	links := make([]topology.Link, len(rows))
	for i, row := range rows {
		links[i] = topology.Link{
			From:      row.Node1,
			To:        row.Node2,
			Delay:     row.Delay,
			Bandwidth: row.Bandwidth,
			Loss:      row.Loss,
		}
	}

	t, err := topology.New(nil, links, opts...)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return t, nil
}

// Load reads a topology from the file at path
func Load(path string, opts ...topology.Option) (*topology.Topology, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	defer file.Close()

	return Read(file, opts...)
}

// Write writes the links of t to w. Rows are ordered by the indices of
// their endpoints so that the same topology always produces the same
// file.
func Write(w io.Writer, t *topology.Topology) error {
	var rows []*Row
	for u := 0; u < t.Len(); u++ {
		for _, v := range t.NeighborIndices(u) {
			if v < u {
				continue
			}
			l, _ := t.LinkAt(u, v)
			rows = append(rows, &Row{
				Node1:     l.From,
				Node2:     l.To,
				Delay:     l.Delay,
				Bandwidth: l.Bandwidth,
				Loss:      l.Loss,
			})
		}
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Save writes the links of t to a new file at path
func Save(path string, t *topology.Topology) error {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	defer file.Close()

	return Write(file, t)
}
