package public

import (
	"errors"

	handlershared "github.com/storefront/internal/http/handlers/shared"
	"github.com/storefront/internal/http/response"
	"github.com/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError = handlershared.MappedError

var registerErrorRules = []mappedHandlerError{
	{Target: service.ErrMissingCredentials, Code: response.CodeBadRequest, Key: "error.missing_credentials"},
	{Target: service.ErrEmailExists, Code: response.CodeBadRequest, Key: "error.email_exists"},
	{Target: service.ErrAdminExists, Code: response.CodeForbidden, Key: "error.admin_exists"},
}

var loginErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeBadRequest, Key: "error.invalid_credentials"},
	{Target: service.ErrNotAdmin, Code: response.CodeForbidden, Key: "error.not_admin"},
	{Target: service.ErrUserDisabled, Code: response.CodeForbidden, Key: "error.user_disabled"},
}

var accountErrorRules = []mappedHandlerError{
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrAffiliateExists, Code: response.CodeBadRequest, Key: "error.affiliate_exists"},
}

var affiliateErrorRules = []mappedHandlerError{
	{Target: service.ErrAffiliateNotFound, Code: response.CodeNotFound, Key: "error.affiliate_not_found"},
}

var orderCreateErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidOrderItem, Code: response.CodeBadRequest, Key: "error.order_invalid_item"},
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
	// reject 策略下推广员不存在属于请求参数错误
	{Target: service.ErrAffiliateNotFound, Code: response.CodeBadRequest, Key: "error.affiliate_not_found"},
}

var paymentErrorRules = []mappedHandlerError{
	{Target: service.ErrPaymentNotConfigured, Code: response.CodeBadRequest, Key: "error.payment_not_configured"},
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
}

func respondRegisterError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrWeakPassword) {
		handlershared.RespondWeakPassword(c, err)
		return
	}
	handlershared.RespondWithMappedError(c, err, registerErrorRules, response.CodeInternal, "error.internal_error")
}

func respondLoginError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, loginErrorRules, response.CodeInternal, "error.internal_error")
}

func respondAccountError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, accountErrorRules, response.CodeInternal, "error.internal_error")
}

func respondAffiliateError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, affiliateErrorRules, response.CodeInternal, "error.internal_error")
}

func respondOrderCreateError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, orderCreateErrorRules, response.CodeInternal, "error.internal_error")
}

func respondPaymentError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrPaymentFailed) {
		handlershared.RespondUpstreamError(c, "error.payment_failed", err)
		return
	}
	handlershared.RespondWithMappedError(c, err, paymentErrorRules, response.CodeInternal, "error.internal_error")
}
