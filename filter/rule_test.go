package filter

import (
	"context"
	"testing"

	"github.com/canteenhub/predictkit/core"
	"github.com/canteenhub/predictkit/pkg/utils"
)

func TestRuleFilter_ShouldFilter(t *testing.T) {
	rctx := &core.RecommendContext{UserID: "u1", CanteenID: "c1", Scene: "lunch"}

	lowScore := core.NewItem("cheap_dish")
	lowScore.Score = 0.05

	hot := core.NewItem("hot_dish")
	hot.Score = 0.5
	hot.PutLabel(core.LabelRecallSource, utils.Label{Value: "hot", Source: "recall"})

	tests := []struct {
		name string
		expr string
		item *core.Item
		want bool
	}{
		{
			name: "score below threshold",
			expr: "item.score < 0.2",
			item: lowScore,
			want: true,
		},
		{
			name: "score above threshold",
			expr: "item.score < 0.2",
			item: hot,
			want: false,
		},
		{
			name: "label and context combined",
			expr: `label.recall_source.contains("hot") && rctx.scene == "lunch"`,
			item: hot,
			want: true,
		},
		{
			name: "id match",
			expr: `item.id == "cheap_dish"`,
			item: lowScore,
			want: true,
		},
		{
			name: "empty expression filters nothing",
			expr: "",
			item: lowScore,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &RuleFilter{Expr: tt.expr}
			got, err := f.ShouldFilter(context.Background(), rctx, tt.item)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("ShouldFilter(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestFilterNode_DropsMatchedItems(t *testing.T) {
	a := core.NewItem("A")
	a.Score = 0.9
	b := core.NewItem("B")
	b.Score = 0.01

	node := &FilterNode{Filters: []Filter{&RuleFilter{Expr: "item.score < 0.1"}}}
	out, err := node.Process(context.Background(), &core.RecommendContext{}, []*core.Item{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != "A" {
		t.Fatalf("got %v, want only A", out)
	}
	if b.Labels["filtered"].Value != "true" {
		t.Fatal("filtered item must carry the filtered label")
	}
}

func TestUnavailable_MemoryListAndStore(t *testing.T) {
	f := &Unavailable{DishIDs: []string{"soldout"}}

	blocked := core.NewItem("soldout")
	ok := core.NewItem("rice")

	got, err := f.ShouldFilter(context.Background(), nil, blocked)
	if err != nil || !got {
		t.Fatalf("soldout: got (%v, %v), want filtered", got, err)
	}
	got, err = f.ShouldFilter(context.Background(), nil, ok)
	if err != nil || got {
		t.Fatalf("rice: got (%v, %v), want kept", got, err)
	}
}
