// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository / pages / llm → databases, page files, the text model
//
// Services never see *http.Request and never pick status codes. They return
// apperror kinds and the handler translates them.
//
// THE PIPELINE:
//
//	BioService.Generate
//	  → auth.Require        (who is asking?)
//	  → CopyGenerator       (prompt → model → copy text)
//	  → BioArchive.Create   (identifier + durable record)
//	  → pages.Store.Write   (public HTML document)
//
// The record is always written before the page. If the page cannot be
// written the record stays and Reconcile repairs the page later.
package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/smartbio/internal/apperror"
)

var validate = newValidator()

// newValidator reports fields by their JSON names so messages match what the
// client sent ("businessName is required", not "BusinessName is required").
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and converts the first
// failure into an apperror.ValidationFailed.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("service: validating input: %w", err)
	}

	fe := fieldErrs[0]
	return apperror.ValidationFailed(fe.Field(), validationMessage(fe))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
