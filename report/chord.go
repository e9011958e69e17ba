package report

import (
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"ask_analytics/stats"
)

// chordGraph draws the inter-institution referral flows as a circular
// graph: a node per institution sized by its total traffic, an edge per
// answering-school to queue-school flow.
func chordGraph(b stats.Bundle, flows []stats.Flow) *charts.Graph {
	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Cross-institutional Chat Support - " + scopeTitle(b),
			Subtitle: periodSubtitle(b),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	)

	nodes, links := chordSeries(flows)
	graph.AddSeries("flows", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout:             "circular",
			Roam:               true,
			FocusNodeAdjacency: true,
		}),
		charts.WithLabelOpts(opts.Label{Show: true, Position: "right"}),
	)
	return graph
}

func renderChordDiagram(b stats.Bundle, flows []stats.Flow) ([]byte, error) {
	graph := chordGraph(b, flows)
	graph.Initialization.PageTitle = scopeTitle(b) + " - Cross-institution Flows"
	return renderToBytes(graph)
}

func chordSeries(flows []stats.Flow) ([]opts.GraphNode, []opts.GraphLink) {
	totals := make(map[string]int)
	for _, f := range flows {
		totals[f.From] += f.Chats
		totals[f.To] += f.Chats
	}
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	nodes := make([]opts.GraphNode, 0, len(names))
	for _, name := range names {
		nodes = append(nodes, opts.GraphNode{
			Name:       name,
			Value:      float32(totals[name]),
			SymbolSize: symbolSize(totals[name]),
		})
	}
	links := make([]opts.GraphLink, 0, len(flows))
	for _, f := range flows {
		links = append(links, opts.GraphLink{
			Source: f.From,
			Target: f.To,
			Value:  float32(f.Chats),
		})
	}
	return nodes, links
}

// symbolSize keeps nodes readable across very different traffic volumes.
func symbolSize(chats int) float32 {
	size := float32(10)
	for chats > 0 {
		chats /= 10
		size += 8
	}
	return size
}
