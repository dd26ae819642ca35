package response

const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeTooManyRequests = 429
	CodeInternal        = 500
)

// HTTPStatus 业务码对应的 HTTP 状态码，非法值统一视为 500
func HTTPStatus(code int) int {
	if code == CodeOK {
		return 200
	}
	if code < 400 || code > 599 {
		return CodeInternal
	}
	return code
}
