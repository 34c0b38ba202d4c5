package matching

import (
	"fmt"
	"math"
	"strings"

	"hirescore/internal/errors"
	"hirescore/internal/types"

	"github.com/go-playground/validator/v10"
)

// weightTolerance absorbs float noise in hand-written weights like 0.1/0.2/0.7
const weightTolerance = 0.001

var validate = validator.New()

// ValidateJob rejects a job that cannot produce a bounded score
func ValidateJob(job types.JobRequirement) error {
	if err := validate.Struct(job); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidJob, describeValidation(err), err).
			WithContext("job_title", job.Title)
	}

	sum := job.Weights.Sum()
	if math.IsNaN(sum) || math.Abs(sum-1.0) > weightTolerance {
		return errors.NewValidationError(errors.ErrCodeInvalidJob,
			fmt.Sprintf("weights must sum to 1.0, got %.3f", sum), nil).
			WithContext("job_title", job.Title)
	}
	return nil
}

func describeValidation(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return "invalid job requirement"
	}

	parts := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return "invalid job requirement: " + strings.Join(parts, "; ")
}
