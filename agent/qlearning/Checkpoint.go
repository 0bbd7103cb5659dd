package qlearning

import (
	"bufio"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Save saves the Q-table of the agent to a file in gonum's binary
// matrix format
func (q *QLearning) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not create file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if _, err := q.q.MarshalBinaryTo(w); err != nil {
		return fmt.Errorf("save: could not encode table: %w", err)
	}
	return w.Flush()
}

// LoadTable loads a Q-table saved by Save
func LoadTable(filename string) (*mat.Dense, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadTable: could not open file: %w", err)
	}
	defer file.Close()

	var table mat.Dense
	if _, err := table.UnmarshalBinaryFrom(bufio.NewReader(file)); err != nil {
		return nil, fmt.Errorf("loadTable: could not decode table: %w", err)
	}
	return &table, nil
}
