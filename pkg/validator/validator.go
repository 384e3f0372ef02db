// Package validator gin binding validator backed by go-playground/validator
// Package validator 基于 go-playground/validator 的 gin 绑定校验器
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// CustomValidator 实现 binding.StructValidator
type CustomValidator struct {
	once     sync.Once
	Validate *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

func (v *CustomValidator) ValidateStruct(obj any) error {
	if kindOfData(obj) != reflect.Struct {
		return nil
	}
	v.lazyinit()
	return v.Validate.Struct(obj)
}

func (v *CustomValidator) Engine() any {
	v.lazyinit()
	return v.Validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.Validate = validator.New()
		v.Validate.SetTagName("binding")
		// 错误信息使用 json 字段名
		v.Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.Validate.RegisterValidation("notblank", notBlank)
	})
}

// notBlank 字符串去除空白后非空
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func kindOfData(data any) reflect.Kind {
	value := reflect.ValueOf(data)
	kind := value.Kind()
	if kind == reflect.Ptr {
		kind = value.Elem().Kind()
	}
	return kind
}

// Init installs the validator into gin and returns translators for en and zh
// Init 将校验器注册到 gin，并返回 en / zh 翻译器
func Init() (*ut.UniversalTranslator, error) {
	customValidator := NewCustomValidator()
	binding.Validator = customValidator
	validate := customValidator.Engine().(*validator.Validate)

	uni := ut.New(en.New(), en.New(), zh.New())
	zhTran, _ := uni.GetTranslator("zh")
	enTran, _ := uni.GetTranslator("en")

	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, err
	}
	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, err
	}

	for _, t := range []struct {
		trans ut.Translator
		text  string
	}{
		{enTran, "{0} must not be blank"},
		{zhTran, "{0}不能为空"},
	} {
		text := t.text
		err := validate.RegisterTranslation("notblank", t.trans, func(trans ut.Translator) error {
			return trans.Add("notblank", text, true)
		}, func(trans ut.Translator, fe validator.FieldError) string {
			msg, _ := trans.T("notblank", fe.Field())
			return msg
		})
		if err != nil {
			return nil, err
		}
	}
	return uni, nil
}
