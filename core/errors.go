package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 软失败（样本不足、实体未知）通过错误代码表达，调用方据此降级，
//     不向外层抛出；真正的故障（内部错误）才向上传播
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INSUFFICIENT_DATA"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "recommend", "forecast"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound         = "NOT_FOUND"          // 资源不存在
	ErrorCodeNotSupported     = "NOT_SUPPORTED"      // 操作不支持
	ErrorCodeUnavailable      = "UNAVAILABLE"        // 服务不可用
	ErrorCodeInvalidInput     = "INVALID_INPUT"      // 输入无效
	ErrorCodeInsufficientData = "INSUFFICIENT_DATA"  // 训练/预测样本低于策略阈值
	ErrorCodeInternalError    = "INTERNAL_ERROR"     // 内部错误
)

// 模块名称常量
const (
	ModuleStore     = "store"     // 存储模块
	ModuleTrain     = "train"     // 训练模块
	ModuleRecommend = "recommend" // 推荐模块
	ModuleForecast  = "forecast"  // 需求预测模块
	ModuleSentiment = "sentiment" // 评论情感模块
	ModuleFeature   = "feature"   // 特征模块
)

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeUnavailable) }

// IsInsufficientData 检查错误是否为样本不足（软失败，调用方应降级而非上抛）。
func IsInsufficientData(err error) bool { return hasCode(err, ErrorCodeInsufficientData) }
