package pipeline

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/analytics"
	errs "github.com/SheepTester-forks/curricular-analytics-graph/pkg/errors"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/render"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/view"
)

// classify wraps err in a coded error chosen by its cause. Errors that
// already carry a code are returned unchanged.
func classify(err error, format string, args ...any) error {
	if err == nil || errs.GetCode(err) != "" {
		return err
	}
	return errs.Wrap(codeOf(err), err, format, args...)
}

func codeOf(err error) errs.Code {
	var syntax *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, plan.ErrInvalidRequisiteType):
		return errs.ErrCodeInvalidRequisiteType
	case errors.Is(err, plan.ErrCycle), errors.Is(err, analytics.ErrCycleDetected):
		return errs.ErrCodeCycleDetected
	case errors.Is(err, plan.ErrScheduleDeadlock):
		return errs.ErrCodeScheduleDeadlock
	case errors.Is(err, analytics.ErrInvalidSystem):
		return errs.ErrCodeInvalidSystem
	case errors.Is(err, view.ErrUnknownCourse):
		return errs.ErrCodeNotFound
	case errors.Is(err, view.ErrInvalidOption):
		return errs.ErrCodeInvalidInput
	case errors.Is(err, render.ErrConverterMissing):
		return errs.ErrCodeUnsupported
	case errors.As(err, &syntax), errors.As(err, &typeErr), errors.Is(err, io.ErrUnexpectedEOF):
		return errs.ErrCodeInvalidFormat
	}
	return errs.ErrCodeInternal
}
