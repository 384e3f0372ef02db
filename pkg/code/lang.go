package code

// lang holds one message per supported language.
// lang 保存每种支持语言的消息
type lang struct {
	en    string
	zh_cn string
}

// GetMessage returns the English message, used where no request language is known.
func (l lang) GetMessage() string {
	return l.en
}

// GetMessageByLang 返回指定语言的消息，缺失时回退到英文
func (l lang) GetMessageByLang(language string) string {
	switch language {
	case "zh_cn", "zh":
		if l.zh_cn != "" {
			return l.zh_cn
		}
	}
	return l.en
}
