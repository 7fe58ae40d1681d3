package nodelink_test

import (
	"context"
	"fmt"

	"github.com/simtrans/simtrans/pkg/model"
	"github.com/simtrans/simtrans/pkg/render/nodelink"
)

func ExampleToDOT() {
	body := &model.Body{
		Name:   "pendulum",
		Links:  []*model.Link{{Name: "frame"}, {Name: "bob"}},
		Joints: []*model.Joint{{Name: "pivot", Type: model.Revolute, Parent: "frame", Child: "bob"}},
	}
	fmt.Print(nodelink.ToDOT(body, nodelink.Options{}))
	// Output:
	// digraph "pendulum" {
	//   rankdir=TB;
	//   bgcolor="transparent";
	//   node [shape=box, style="rounded,filled", fillcolor=white, fontsize=18, margin="0.2,0.1"];
	//   edge [fontsize=14];
	//   ranksep=0.5;
	//   nodesep=0.3;
	//
	//   "frame" [label="frame", style="rounded,filled,dashed", fillcolor=lightgrey];
	//   "bob" [label="bob", style="rounded,filled,dashed", fillcolor=lightgrey];
	//
	//   "frame" -> "bob" [label="pivot (revolute)"];
	// }
}

func ExampleRenderSVG() {
	body := &model.Body{
		Name:   "pendulum",
		Links:  []*model.Link{{Name: "frame"}, {Name: "bob"}},
		Joints: []*model.Joint{{Name: "pivot", Type: model.Revolute, Parent: "frame", Child: "bob"}},
	}
	svg, err := nodelink.RenderSVG(context.Background(), nodelink.ToDOT(body, nodelink.Options{Detailed: true}))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Generated SVG (%d bytes)\n", len(svg))
	// Output varies based on Graphviz installation
}
