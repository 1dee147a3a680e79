package usecases

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"

	"github.com/samirrijal/devcamper/internal/core/domain"
)

type validatorSvc struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *validatorSvc
)

// validatorInstance returns the shared validator with english messages keyed by json names.
func validatorInstance() *validatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		vSvc = &validatorSvc{v: v, trans: trans}
	})
	return vSvc
}

// validateStruct returns a domain.ErrValidation listing every failed field.
func validateStruct(s any) error {
	svc := validatorInstance()
	err := svc.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Invalid("%s", err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(svc.trans))
	}
	return domain.Invalid("%s", strings.Join(msgs, ", "))
}

// validID reports whether id can reference a stored document.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// upstream keeps taxonomy errors as they are and wraps anything else.
func upstream(op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Upstream(op, err)
}
