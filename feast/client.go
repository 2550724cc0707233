package feast

import (
	"context"
	"time"
)

// Client 是 Feast Feature Store 的客户端接口。
//
// 推荐服务用它在召回后补齐菜品在线特征（价格、品类、热量等），
// 供下游过滤规则与重排使用。接口保持最小：在线特征读取加生命周期管理。
type Client interface {
	// GetOnlineFeatures 获取在线特征（用于实时推荐）
	//
	// 参数：
	//   - features: 特征名称列表，例如 ["dish_stats:price", "dish_stats:category"]
	//   - entityRows: 实体行，例如 [{"dish_id": "braised_pork"}]
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表，例如 ["dish_stats:price", "dish_stats:avg_rating"]
	Features []string

	// EntityRows 实体行，例如 [{"dish_id": "kung_pao_chicken"}]
	EntityRows []map[string]interface{}

	// Project 项目名称（可选，缺省用客户端配置的项目）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	// FeatureVectors 特征向量列表，每个元素对应一个实体行
	FeatureVectors []FeatureVector
}

// FeatureVector 特征向量
type FeatureVector struct {
	// Values 特征值，key 为特征名称
	Values map[string]interface{}

	// EntityRow 对应的实体行
	EntityRow map[string]interface{}
}

// ClientOption Feast 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig Feast 客户端配置
type ClientConfig struct {
	// Endpoint 服务端点
	Endpoint string

	// Project 项目名称
	Project string

	// Timeout 超时时间
	Timeout time.Duration

	// Auth 认证信息（可选）
	Auth *AuthConfig
}

// AuthConfig 认证配置
type AuthConfig struct {
	// Type 认证类型，目前支持 "static"（gRPC 静态 Token）
	Type string

	// Token 静态 Token
	Token string
}

// WithTimeout 配置选项：设置超时时间
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithAuth 配置选项：设置认证信息
func WithAuth(auth *AuthConfig) ClientOption {
	return func(c *ClientConfig) {
		c.Auth = auth
	}
}
