package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-catalog/internal/domain"
)

// Form 校验失败时重新渲染的表单页
type Form struct {
	Template string
	Data     gin.H // 标题、下拉选项、回显数据
}

// redirects 这些错误一律提示后跳回列表，不回显表单
func redirects(err error) bool {
	return domain.IsNotFound(err) || errors.Is(err, domain.ErrSelfModification)
}

// Fail 统一错误映射：
//   - 校验错误 / 业务冲突：有表单则带字段错误和原数据重绘表单
//   - 缺失记录、越权自改、其他业务错误：flash 后跳转 back
//   - 其余：记日志，给通用提示后跳转 back
func Fail(c *gin.Context, err error, back, generic string, form *Form) {
	if ve, ok := domain.AsValidation(err); ok {
		if form != nil {
			renderForm(c, form, "Please correct the errors below.", ve.Fields)
			return
		}
		FlashError(c, ve.Error())
		Redirect(c, back)
		return
	}
	if domain.IsUserFacing(err) {
		if form != nil && !redirects(err) {
			renderForm(c, form, capitalize(err.Error()), nil)
			return
		}
		FlashError(c, capitalize(err.Error()))
		Redirect(c, back)
		return
	}

	Logger(c).Error(generic, zap.Error(err), zap.String("path", c.Request.URL.Path))
	FlashError(c, generic)
	Redirect(c, back)
}

func renderForm(c *gin.Context, f *Form, msg string, fields map[string]string) {
	data := gin.H{}
	for k, v := range f.Data {
		data[k] = v
	}
	data["error"] = msg
	data["errors"] = fields
	Render(c, http.StatusUnprocessableEntity, f.Template, data)
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
