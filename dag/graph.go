package dag

import (
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/lunfardo314/tipselect/ledger"
	"github.com/lunfardo314/tipselect/util"
)

var (
	milestoneAttributes = []func(*graph.VertexProperties){
		graph.VertexAttribute("colorscheme", "paired9"),
		graph.VertexAttribute("style", "filled"),
		graph.VertexAttribute("color", "9"),
	}
	confirmedAttributes = []func(*graph.VertexProperties){
		graph.VertexAttribute("colorscheme", "bugn9"),
		graph.VertexAttribute("style", "filled"),
		graph.VertexAttribute("fillcolor", "3"),
	}
	plainAttributes = []func(*graph.VertexProperties){
		graph.VertexAttribute("colorscheme", "blues3"),
		graph.VertexAttribute("style", "filled"),
		graph.VertexAttribute("fillcolor", "1"),
	}
)

// MakeGraph builds a dominikbraun/graph over the past cone of roots
// (trunk/branch closure), the diagnostic shape utangle.MakeGraphPastCone
// builds over input dependencies: one vertex per transaction, one edge
// per trunk/branch reference.
func (v *View) MakeGraph(roots ...ledger.Hash) graph.Graph[string, string] {
	gr := graph.New(graph.StringHash, graph.Directed(), graph.Acyclic())

	visited := util.NewSet[ledger.Hash]()
	var stack []ledger.Hash
	stack = append(stack, roots...)

	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h.IsNull() || !visited.InsertNew(h) {
			continue
		}
		tx, err := v.Get(h)
		if err != nil {
			continue
		}
		attrs := plainAttributes
		switch {
		case tx.IsMilestone():
			attrs = milestoneAttributes
		case tx.Confirmed():
			attrs = confirmedAttributes
		}
		_ = gr.AddVertex(h.Short(), attrs...)
		stack = append(stack, tx.Trunk, tx.Branch)
	}

	visited.ForEach(func(h ledger.Hash) bool {
		tx, err := v.Get(h)
		if err != nil {
			return true
		}
		if !tx.Trunk.IsNull() {
			_ = gr.AddEdge(h.Short(), tx.Trunk.Short(), graph.EdgeAttribute("label", "trunk"))
		}
		if !tx.Branch.IsNull() {
			_ = gr.AddEdge(h.Short(), tx.Branch.Short(), graph.EdgeAttribute("label", "branch"))
		}
		return true
	})
	return gr
}

// ExportDOT writes the past cone of roots as a Graphviz DOT document, the
// way utangle.SaveGraphPastCone drives draw.DOT over its own MakeGraph.
func (v *View) ExportDOT(w io.Writer, roots ...ledger.Hash) error {
	return draw.DOT(v.MakeGraph(roots...), w)
}
