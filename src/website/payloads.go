package website

import (
	"errors"
	"reflect"
	"strings"

	"git.campusqa.org/campusqa/campusqa/src/qaerr"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type postPayload struct {
	Title string `json:"title" validate:"required,max=255"`
	Body  string `json:"body" validate:"required"`
}

type answerPayload struct {
	Body string `json:"body" validate:"required"`
}

type likePayload struct {
	VoteType string `json:"vote_type" validate:"omitempty,oneof=upvote downvote"`
}

type redactionPayload struct {
	RedactionState string  `json:"redaction_state" validate:"required,oneof=visible redacted"`
	RedactedBody   *string `json:"redacted_body"`
}

/*
Decodes the JSON body of the request into payload and validates it. Failures
come back as *qaerr.ValidationError naming the first offending field, so they
map to the same responses as validation failures from the domain packages.
*/
func decodePayload(c *RequestContext, payload any) error {
	if err := c.DecodeJson(payload); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			return qaerr.Validation("body", "is too large (maximum is %d bytes)", maxBodyBytes)
		}
		return qaerr.Validation("body", "is not valid JSON")
	}

	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return qaerr.Validation("body", "is invalid")
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return qaerr.Validation(fe.Field(), "can't be blank")
	case "max":
		return qaerr.Validation(fe.Field(), "is too long (maximum is %s characters)", fe.Param())
	case "oneof":
		return qaerr.Validation(fe.Field(), "must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return qaerr.Validation(fe.Field(), "is invalid")
}
