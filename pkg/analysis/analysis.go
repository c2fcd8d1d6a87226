package analysis

import (
	"context"
	"fmt"

	"github.com/edp1096/opspice/pkg/circuit"
)

type Analysis interface {
	Setup(g *circuit.Graph) error
	Execute(ctx context.Context) error
	GetResults() map[string]float64
}

type BaseAnalysis struct {
	Graph   *circuit.Graph
	results map[string]float64 // key: V(node) or I(branch)
}

func NewBaseAnalysis() *BaseAnalysis {
	return &BaseAnalysis{results: make(map[string]float64)}
}

func (a *BaseAnalysis) Setup(g *circuit.Graph) error {
	if g == nil {
		return fmt.Errorf("analysis setup: nil circuit")
	}
	a.Graph = g
	clear(a.results)
	return nil
}

func (a *BaseAnalysis) StoreResult(solution *Solution) {
	for name, value := range solution.Results() {
		a.results[name] = value
	}
}

func (a *BaseAnalysis) GetResults() map[string]float64 {
	return a.results
}
