package service

import "errors"

// 参数校验类错误（400）
var (
	ErrInvalidInput             = errors.New("参数错误")
	ErrMissingCredentials       = errors.New("邮箱和密码不能为空")
	ErrEmailExists              = errors.New("用户已存在")
	ErrInvalidCredentials       = errors.New("账号或密码错误")
	ErrWeakPassword             = errors.New("密码不符合安全策略")
	ErrInvalidRate              = errors.New("佣金比例必须在 (0, 1] 之间")
	ErrAffiliateExists          = errors.New("推广员账本已存在")
	ErrAffiliateSettingsInvalid = errors.New("推广设置无效")
	ErrProductInvalid           = errors.New("商品参数无效")
	ErrInvalidOrderItem         = errors.New("订单商品无效")
	ErrPaymentNotConfigured     = errors.New("stripe not configured")
	ErrShippingNotConfigured    = errors.New("easypost not configured")
	ErrUploadInvalid            = errors.New("上传文件无效")
	ErrCaptchaRequired          = errors.New("需要验证码")
	ErrCaptchaInvalid           = errors.New("验证码错误")
)

// 权限类错误（403）
var (
	ErrAdminExists  = errors.New("管理员账号只能在初始化时创建")
	ErrNotAdmin     = errors.New("非管理员账号")
	ErrUserDisabled = errors.New("账号已被禁用")
)

// 资源不存在（404）
var (
	ErrNotFound          = errors.New("资源不存在")
	ErrUserNotFound      = errors.New("用户不存在")
	ErrAffiliateNotFound = errors.New("推广员不存在")
	ErrProductNotFound   = errors.New("商品不存在")
	ErrOrderNotFound     = errors.New("订单不存在")
)

// 上游服务错误（500）
var (
	ErrPaymentFailed  = errors.New("创建支付失败")
	ErrShippingFailed = errors.New("获取运费失败")
	ErrUploadFailed   = errors.New("上传失败")
)

// ErrAffiliateSuspended 推广员已停用，不再累计佣金
var ErrAffiliateSuspended = errors.New("推广员已停用")
