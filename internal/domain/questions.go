package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const answerInOptionsTag = "answer_in_options"

var (
	validatorOnce sync.Once
	validate      *govalidator.Validate
	trans         ut.Translator
)

// ParseQuestionSet decodes a JSON question set and validates every record.
// The payload must be a non-empty array; any invalid record rejects the whole set.
func ParseQuestionSet(raw []byte) ([]Question, error) {
	var questions []Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrMalformedData)
	}
	for i, q := range questions {
		if err := ValidateQuestion(q); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrMalformedData, i+1, err)
		}
	}
	return questions, nil
}

// ValidateQuestion checks a single record: a prompt, at least two unique
// non-empty options and an answer equal to one of them.
func ValidateQuestion(q Question) error {
	v, tr := questionValidator()
	err := v.Struct(q)
	if err == nil {
		return nil
	}
	var ve govalidator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fe.Translate(tr))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func questionValidator() (*govalidator.Validate, ut.Translator) {
	validatorOnce.Do(func() {
		v := govalidator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterStructValidation(answerInOptions, Question{})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		tr, _ := uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, tr)
		_ = v.RegisterTranslation(answerInOptionsTag, tr, func(t ut.Translator) error {
			return t.Add(answerInOptionsTag, "{0} must equal one of the options", true)
		}, func(t ut.Translator, fe govalidator.FieldError) string {
			msg, _ := t.T(answerInOptionsTag, fe.Field())
			return msg
		})

		validate = v
		trans = tr
	})
	return validate, trans
}

func answerInOptions(sl govalidator.StructLevel) {
	q := sl.Current().Interface().(Question)
	if q.Answer == "" {
		return
	}
	if !q.HasOption(q.Answer) {
		sl.ReportError(q.Answer, "answer", "Answer", answerInOptionsTag, "")
	}
}
