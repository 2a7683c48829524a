package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// TreeNode is one node of a regression tree, stored in a flat slice.
// Children are indexes into the same slice.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

// TreeEnsemble is a gradient boosted set of regression trees.
type TreeEnsemble struct {
	BaseScore    float64      `json:"base_score"`
	LearningRate float64      `json:"learning_rate"`
	NumFeatures  int          `json:"num_features"`
	Trees        [][]TreeNode `json:"trees"`
}

// LoadTreeEnsemble reads a JSON tree ensemble from path.
func LoadTreeEnsemble(path string) (*TreeEnsemble, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m TreeEnsemble
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, err
	}
	if len(m.Trees) == 0 {
		return nil, errors.New("tree ensemble has no trees")
	}
	for i, tree := range m.Trees {
		if len(tree) == 0 {
			return nil, fmt.Errorf("tree %d is empty", i)
		}
	}
	if m.LearningRate == 0 {
		m.LearningRate = 1
	}
	return &m, nil
}

func (m *TreeEnsemble) Predict(ctx context.Context, rows [][]float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		if m.NumFeatures > 0 {
			if err := checkRow(i, row, m.NumFeatures); err != nil {
				return nil, err
			}
		}
		sum := 0.0
		for t, tree := range m.Trees {
			v, err := walkTree(tree, row)
			if err != nil {
				return nil, fmt.Errorf("tree %d: %w", t, err)
			}
			sum += v
		}
		out[i] = m.BaseScore + m.LearningRate*sum
	}
	return out, nil
}

func walkTree(nodes []TreeNode, row []float64) (float64, error) {
	idx := 0
	for steps := 0; steps <= len(nodes); steps++ {
		node := nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(row) {
			return 0, fmt.Errorf("%w: feature index %d out of range for %d features", ErrShapeMismatch, node.FeatureIdx, len(row))
		}
		if row[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
	return 0, errors.New("tree contains a cycle")
}
