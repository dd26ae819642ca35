package constants

// 实体类型（记录存储目录与文件名前缀）
const (
	KindUser    = "user"
	KindProduct = "product"
	KindOrder   = "order"
)

// 用户角色
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleAffiliate = "affiliate"
)

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 推广员状态
const (
	AffiliateStatusPending   = "pending"
	AffiliateStatusActive    = "active"
	AffiliateStatusSuspended = "suspended"
)

// 佣金与结算状态
const (
	CommissionStatusPending = "pending"
	CommissionStatusPaid    = "paid"
	PayoutStatusPaid        = "paid"
)

// 结算周期
const (
	PayoutScheduleManual  = "manual"
	PayoutScheduleWeekly  = "weekly"
	PayoutScheduleMonthly = "monthly"
)

// 无归属推荐处理策略
const (
	OrphanPolicyFlag   = "flag"
	OrphanPolicyReject = "reject"
)

// 无归属推荐原因
const (
	OrphanReasonAffiliateMissing   = "affiliate_missing"
	OrphanReasonAffiliateSuspended = "affiliate_suspended"
)

// 订单状态
const (
	OrderStatusPending = "pending"
)

// 商品分类
const (
	ProductCategorySupplements = "supplements"
)

// 记录存储后端
const (
	StorageBackendFile     = "file"
	StorageBackendDatabase = "database"
)

// 媒体存储驱动
const (
	MediaDriverLocal = "local"
	MediaDriverMinio = "minio"
)

// 验证码场景
const (
	CaptchaSceneLogin    = "login"
	CaptchaSceneRegister = "register"
)

// 队列相关
const (
	QueueDefault                = "default"
	TaskAffiliateOrphanReferral = "affiliate:orphan_referral"
)
