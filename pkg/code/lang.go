package code

import (
	"errors"
	"fmt"
	"reflect"
)

// lang 存储一个错误码的多语言文本
// lang holds the per-language text of a code. Field names double as language ids.
type lang struct {
	en    string // English
	zh_cn string // 中文
}

const FALLBACK_LNG = "en"

var lng = FALLBACK_LNG

// GetMessage returns the text in the global language, falling back to English.
// GetMessage 按全局语言返回文本，缺失时回退到英文
func (l lang) GetMessage() string {
	return l.message(lng)
}

func (l lang) message(language string) string {
	val := reflect.ValueOf(l)
	for _, name := range []string{language, FALLBACK_LNG} {
		if name == "" {
			continue
		}
		if f := val.FieldByName(name); f.IsValid() && f.String() != "" {
			return f.String()
		}
	}
	return fmt.Sprintf("No message available for language: %s", language)
}

// GetSupportedLanguages 返回支持的语言列表
func GetSupportedLanguages() []string {
	typ := reflect.TypeOf(lang{})
	languages := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		languages = append(languages, typ.Field(i).Name)
	}
	return languages
}

// SetGlobalDefaultLang switches the language; unknown values reset to English and return an error.
// 设置全局默认语言，不支持的语言会回退到英文并返回错误
func SetGlobalDefaultLang(language string) error {
	for _, l := range GetSupportedLanguages() {
		if l == language {
			lng = language
			return nil
		}
	}
	lng = FALLBACK_LNG
	return errors.New("unsupported language type, set defaulting to " + FALLBACK_LNG)
}

// GetGlobalDefaultLang 获取全局默认语言
func GetGlobalDefaultLang() string {
	return lng
}
