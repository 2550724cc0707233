package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/canteenhub/predictkit/core"
	"github.com/canteenhub/predictkit/feast"
	"github.com/canteenhub/predictkit/feature"
	"github.com/canteenhub/predictkit/filter"
	"github.com/canteenhub/predictkit/pipeline"
	"github.com/canteenhub/predictkit/pkg/conv"
	"github.com/canteenhub/predictkit/recall"
	"github.com/canteenhub/predictkit/rerank"
)

// 配置驱动的 Node 需要运行时依赖（模型快照、存储、特征客户端），
// 这些依赖无法写进 YAML，入口处在加载配置前用 Use* 注入一次。

var (
	depsMu        sync.RWMutex
	modelProvider core.ModelProvider
	sharedStore   core.Store
	featureClient feast.Client
)

// UseModels 注入模型提供者，供 recall.u2i / recall.assoc / recall.hot 构建使用。
func UseModels(p core.ModelProvider) {
	depsMu.Lock()
	defer depsMu.Unlock()
	modelProvider = p
}

// UseStore 注入共享存储，供 recall.hot / filter.unavailable 构建使用。
func UseStore(s core.Store) {
	depsMu.Lock()
	defer depsMu.Unlock()
	sharedStore = s
}

// UseFeatureClient 注入 Feast 客户端，供 feature.enrich 构建使用。
func UseFeatureClient(c feast.Client) {
	depsMu.Lock()
	defer depsMu.Unlock()
	featureClient = c
}

func currentModels() core.ModelProvider {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return modelProvider
}

func currentStore() core.Store {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return sharedStore
}

func currentFeatureClient() feast.Client {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return featureClient
}

func init() {
	Register("recall.fanout", buildFanoutNode)
	Register("recall.hot", buildHotNode)
	Register("recall.u2i", buildCollaborativeNode)
	Register("recall.assoc", buildAssociationNode)
	Register("filter", buildFilterNode)
	Register("rerank.sort", buildScoreSortNode)
	Register("rerank.topn", buildTopNNode)
	Register("feature.enrich", buildFeatureEnrichNode)
}

func buildFanoutNode(config map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := config["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}

	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet[string](sourceMap, "type", "")
		switch sourceType {
		case "hot":
			ids := conv.SliceAnyToString(sourceMap["ids"])
			if ids == nil {
				ids = []string{}
			}
			sources = append(sources, &recall.Hot{
				Models: currentModels(),
				Store:  currentStore(),
				Key:    conv.ConfigGet[string](sourceMap, "key", ""),
				IDs:    ids,
				TopK:   int(conv.ConfigGetInt64(sourceMap, "top_k", 0)),
			})
		case "u2i":
			if currentModels() == nil {
				return nil, fmt.Errorf("u2i source requires a model provider (config.UseModels)")
			}
			sources = append(sources, &recall.Collaborative{
				Models:    currentModels(),
				Neighbors: int(conv.ConfigGetInt64(sourceMap, "neighbors", 0)),
				TopK:      int(conv.ConfigGetInt64(sourceMap, "top_k", 0)),
			})
		case "assoc":
			if currentModels() == nil {
				return nil, fmt.Errorf("assoc source requires a model provider (config.UseModels)")
			}
			sources = append(sources, &recall.Association{
				Models:   currentModels(),
				MaxSeeds: int(conv.ConfigGetInt64(sourceMap, "max_seeds", 0)),
				PerSeed:  int(conv.ConfigGetInt64(sourceMap, "per_seed", 0)),
			})
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}

	fanout := &recall.Fanout{
		Sources: sources,
		Dedup:   conv.ConfigGet[bool](config, "dedup", true),
	}
	if sec := conv.ConfigGetInt64(config, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt64(config, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = int(n)
	}
	return fanout, nil
}

func buildHotNode(config map[string]interface{}) (pipeline.Node, error) {
	ids := conv.SliceAnyToString(config["ids"])
	if ids == nil {
		ids = []string{}
	}
	return &recall.Hot{
		Models: currentModels(),
		Store:  currentStore(),
		Key:    conv.ConfigGet[string](config, "key", ""),
		IDs:    ids,
		TopK:   int(conv.ConfigGetInt64(config, "top_k", 0)),
	}, nil
}

func buildCollaborativeNode(config map[string]interface{}) (pipeline.Node, error) {
	models := currentModels()
	if models == nil {
		return nil, fmt.Errorf("recall.u2i requires a model provider (config.UseModels)")
	}
	return &recall.Collaborative{
		Models:    models,
		Neighbors: int(conv.ConfigGetInt64(config, "neighbors", 0)),
		TopK:      int(conv.ConfigGetInt64(config, "top_k", 0)),
	}, nil
}

func buildAssociationNode(config map[string]interface{}) (pipeline.Node, error) {
	models := currentModels()
	if models == nil {
		return nil, fmt.Errorf("recall.assoc requires a model provider (config.UseModels)")
	}
	return &recall.Association{
		Models:   models,
		MaxSeeds: int(conv.ConfigGetInt64(config, "max_seeds", 0)),
		PerSeed:  int(conv.ConfigGetInt64(config, "per_seed", 0)),
	}, nil
}

func buildFilterNode(config map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := config["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		filterType := conv.ConfigGet[string](filterMap, "type", "")
		switch filterType {
		case "rule":
			expr := conv.ConfigGet[string](filterMap, "expr", "")
			if expr == "" {
				return nil, fmt.Errorf("rule filter requires expr")
			}
			filters = append(filters, &filter.RuleFilter{Expr: expr})

		case "unavailable":
			ids := conv.SliceAnyToString(filterMap["dish_ids"])
			if ids == nil {
				ids = []string{}
			}
			filters = append(filters, &filter.Unavailable{
				DishIDs: ids,
				Store:   currentStore(),
				Key:     conv.ConfigGet[string](filterMap, "key", ""),
			})

		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters}, nil
}

func buildScoreSortNode(config map[string]interface{}) (pipeline.Node, error) {
	return &rerank.ScoreSortNode{}, nil
}

func buildTopNNode(config map[string]interface{}) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(config, "n", 0)
	if n <= 0 {
		return nil, fmt.Errorf("rerank.topn requires a positive n")
	}
	return &rerank.TopNNode{N: int(n)}, nil
}

func buildFeatureEnrichNode(config map[string]interface{}) (pipeline.Node, error) {
	features := conv.SliceAnyToString(config["features"])
	return &feature.EnrichNode{
		Client:    currentFeatureClient(),
		Features:  features,
		EntityKey: conv.ConfigGet[string](config, "entity_key", ""),
		Project:   conv.ConfigGet[string](config, "project", ""),
	}, nil
}
