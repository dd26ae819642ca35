package admin

import (
	handlershared "github.com/storefront/internal/http/handlers/shared"
	"github.com/storefront/internal/http/response"
	"github.com/storefront/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type mappedHandlerError = handlershared.MappedError

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

var productErrorRules = []mappedHandlerError{
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrProductInvalid, Code: response.CodeBadRequest, Key: "error.product_invalid"},
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
}

var orderErrorRules = []mappedHandlerError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
}

var shippingErrorRules = []mappedHandlerError{
	{Target: service.ErrShippingNotConfigured, Code: response.CodeBadRequest, Key: "error.shipping_not_configured"},
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
}

var uploadErrorRules = []mappedHandlerError{
	{Target: service.ErrUploadInvalid, Code: response.CodeBadRequest, Key: "error.upload_invalid"},
	{Target: service.ErrUploadFailed, Code: response.CodeInternal, Key: "error.upload_failed"},
}

var affiliateErrorRules = []mappedHandlerError{
	{Target: service.ErrAffiliateNotFound, Code: response.CodeNotFound, Key: "error.affiliate_not_found"},
	{Target: service.ErrInvalidRate, Code: response.CodeBadRequest, Key: "error.invalid_rate"},
	{Target: service.ErrAffiliateSettingsInvalid, Code: response.CodeBadRequest, Key: "error.settings_invalid"},
}

func respondProductError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.internal_error")
}

func respondOrderError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "error.internal_error")
}

func respondAffiliateError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, affiliateErrorRules, response.CodeInternal, "error.internal_error")
}
