package config

import (
	"context"
	"testing"

	"github.com/canteenhub/predictkit/core"
	"github.com/canteenhub/predictkit/pipeline"
)

type stubModels struct{ model *core.Model }

func (s *stubModels) Current() *core.Model { return s.model }

const testYAML = `
pipeline:
  name: test
  nodes:
    - type: recall.fanout
      config:
        dedup: true
        sources:
          - type: u2i
            neighbors: 5
          - type: hot
            top_k: 10
    - type: filter
      config:
        filters:
          - type: rule
            expr: 'item.score < 0.01'
    - type: rerank.sort
    - type: rerank.topn
      config:
        n: 5
`

func TestDefaultFactory_BuildsConfiguredPipeline(t *testing.T) {
	m := core.EmptyModel()
	m.Interactions = map[string]map[string]float64{
		"u1": {"rice": 2},
		"u2": {"rice": 1, "tea": 3},
	}
	m.PopularDishes = []string{"rice", "tea"}
	UseModels(&stubModels{model: m})
	UseStore(nil)

	cfg, err := pipeline.ParseYAML([]byte(testYAML))
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidatePipelineConfig(cfg); err != nil {
		t.Fatal(err)
	}

	p, err := cfg.BuildPipeline(DefaultFactory())
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Nodes) != 4 {
		t.Fatalf("got %d nodes, want 4", len(p.Nodes))
	}

	rctx := &core.RecommendContext{UserID: "u1", Scene: "lunch"}
	items, err := p.Run(context.Background(), rctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) == 0 {
		t.Fatal("expected candidates from u2i and hot sources")
	}
	if len(items) > 5 {
		t.Fatalf("topn must cap at 5, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].Score > items[i-1].Score {
			t.Fatal("items must be sorted by score descending")
		}
	}
}

func TestValidatePipelineConfig_UnknownType(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(`
pipeline:
  name: broken
  nodes:
    - type: rank.quantum
`))
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidatePipelineConfig(cfg); err == nil {
		t.Fatal("expected error for unregistered node type")
	}
}

func TestBuild_ModelBackedNodesRequireProvider(t *testing.T) {
	UseModels(nil)
	defer UseModels(&stubModels{model: core.EmptyModel()})

	if _, err := buildCollaborativeNode(nil); err == nil {
		t.Fatal("recall.u2i without a model provider must fail to build")
	}
	if _, err := buildAssociationNode(nil); err == nil {
		t.Fatal("recall.assoc without a model provider must fail to build")
	}
}
