package middleware

import (
	"strings"

	"github.com/haierkeys/personal-notes/pkg/app"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// LangWithTranslator 创建带翻译器的语言中间件（支持依赖注入）
// The language comes from the lang query, the lang header or Accept-Language, in that order.
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {

	return func(c *gin.Context) {

		var lang string

		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			lang = s
		} else if s = c.GetHeader("Accept-Language"); len(s) != 0 {
			lang, _, _ = strings.Cut(s, ",")
		}

		lang = normalizeLang(lang)

		trans, found := uni.GetTranslator(lang)
		if !found {
			lang = "en"
			trans, _ = uni.GetTranslator(lang)
		}
		c.Set(app.TransKey, trans)

		if lang == "zh" {
			c.Set(app.LangKey, "zh_cn")
		} else {
			c.Set(app.LangKey, "en")
		}

		c.Next()
	}
}

// normalizeLang 统一为翻译器使用的语言名，zh-CN / zh_cn 均视为 zh
func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lang), "-", "_"))
	if base, _, ok := strings.Cut(lang, "_"); ok {
		lang = base
	}
	if i := strings.IndexByte(lang, ';'); i >= 0 {
		lang = lang[:i]
	}
	return lang
}
