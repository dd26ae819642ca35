package i18n

var catalog = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":              "Invalid request",
		"error.unauthorized":             "Authentication required",
		"error.token_invalid":            "Invalid or expired token",
		"error.forbidden":                "Access denied",
		"error.not_found":                "Resource not found",
		"error.internal_error":           "Internal server error",
		"error.too_many_requests":        "Too many requests, retry in %d seconds",
		"error.missing_credentials":      "Email and password are required",
		"error.email_exists":             "User already exists",
		"error.admin_exists":             "An admin account already exists",
		"error.invalid_credentials":      "Invalid credentials",
		"error.not_admin":                "Not an admin",
		"error.user_disabled":            "Account is disabled",
		"error.user_not_found":           "User not found",
		"error.weak_password":            "Password does not meet the policy",
		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a number",
		"error.password_require_special": "Password must contain a special character",
		"error.captcha_required":         "Captcha is required",
		"error.captcha_invalid":          "Captcha is invalid",
		"error.affiliate_exists":         "Already registered as an affiliate",
		"error.affiliate_not_found":      "Affiliate not found",
		"error.invalid_rate":             "Commission rate must be greater than 0 and at most 1",
		"error.settings_invalid":         "Invalid affiliate settings",
		"error.product_not_found":        "Product not found",
		"error.product_invalid":          "Invalid product",
		"error.order_not_found":          "Order not found",
		"error.order_invalid_item":       "Order items are invalid",
		"error.payment_not_configured":   "Stripe not configured",
		"error.payment_failed":           "Failed to create payment intent",
		"error.shipping_not_configured":  "EasyPost API key missing",
		"error.shipping_failed":          "Failed to fetch shipping rates",
		"error.upload_invalid":           "Invalid upload",
		"error.upload_failed":            "Upload failed",
		"error.rate_limit_unavailable":   "Rate limiter unavailable",
		"error.affiliate_suspended":      "Affiliate is suspended",
		"error.captcha_disabled":         "Captcha is disabled",
	},
	LocaleZH: {
		"error.bad_request":              "请求参数错误",
		"error.unauthorized":             "请先登录",
		"error.token_invalid":            "令牌无效或已过期",
		"error.forbidden":                "无权访问",
		"error.not_found":                "资源不存在",
		"error.internal_error":           "服务器内部错误",
		"error.too_many_requests":        "请求过于频繁，请 %d 秒后重试",
		"error.missing_credentials":      "邮箱和密码不能为空",
		"error.email_exists":             "用户已存在",
		"error.admin_exists":             "管理员账号已存在",
		"error.invalid_credentials":      "账号或密码错误",
		"error.not_admin":                "非管理员账号",
		"error.user_disabled":            "账号已被禁用",
		"error.user_not_found":           "用户不存在",
		"error.weak_password":            "密码不符合安全策略",
		"error.password_min_length":      "密码长度至少 %d 位",
		"error.password_require_upper":   "密码必须包含大写字母",
		"error.password_require_lower":   "密码必须包含小写字母",
		"error.password_require_number":  "密码必须包含数字",
		"error.password_require_special": "密码必须包含特殊字符",
		"error.captcha_required":         "请输入验证码",
		"error.captcha_invalid":          "验证码错误",
		"error.affiliate_exists":         "已是推广员",
		"error.affiliate_not_found":      "推广员不存在",
		"error.invalid_rate":             "佣金比例必须大于 0 且不超过 1",
		"error.settings_invalid":         "推广设置无效",
		"error.product_not_found":        "商品不存在",
		"error.product_invalid":          "商品参数错误",
		"error.order_not_found":          "订单不存在",
		"error.order_invalid_item":       "订单商品无效",
		"error.payment_not_configured":   "Stripe 未配置",
		"error.payment_failed":           "创建支付失败",
		"error.shipping_not_configured":  "EasyPost 密钥未配置",
		"error.shipping_failed":          "获取运费失败",
		"error.upload_invalid":           "上传文件无效",
		"error.upload_failed":            "上传失败",
		"error.rate_limit_unavailable":   "限流服务不可用",
		"error.affiliate_suspended":      "推广员已停用",
		"error.captcha_disabled":         "验证码未启用",
	},
}
