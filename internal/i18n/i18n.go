package i18n

import (
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
)

const (
	English = "en"
	French  = "fr"
)

// Bundle 持有英文和法文两套翻译
type Bundle struct {
	uni *ut.UniversalTranslator
}

func New() (*Bundle, error) {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, fr.New())

	b := &Bundle{uni: uni}
	for lang, table := range messages {
		trans, _ := uni.GetTranslator(lang)
		for key, text := range table {
			if err := trans.Add(key, text, true); err != nil {
				return nil, err
			}
		}
	}

	return b, nil
}

// Normalize 将 "fr-CA"、"fr_FR,fr;q=0.9" 之类的值归一到支持的语言，默认英文
func Normalize(lang string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(lang)), French) {
		return French
	}
	return English
}

func (b *Bundle) Translator(lang string) ut.Translator {
	trans, _ := b.uni.GetTranslator(Normalize(lang))
	return trans
}

// T 返回 key 对应的文本，缺失时回退到英文，再缺失时返回 key 本身
func (b *Bundle) T(lang string, key string, params ...string) string {
	if s, err := b.Translator(lang).T(key, params...); err == nil {
		return s
	}
	if s, err := b.Translator(English).T(key, params...); err == nil {
		return s
	}
	return key
}

// RegisterValidator 为校验器注册两种语言的默认错误信息
func (b *Bundle) RegisterValidator(validate *validator.Validate) error {
	if err := en_translations.RegisterDefaultTranslations(validate, b.Translator(English)); err != nil {
		return err
	}
	return fr_translations.RegisterDefaultTranslations(validate, b.Translator(French))
}
