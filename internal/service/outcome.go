package service

import (
	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/observability"
)

// outcomeOf maps a service result to a metrics outcome label.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case models.HasCode(err, models.CodeConflict):
		return observability.OutcomeConflict
	case models.HasCode(err, models.CodeNotFound):
		return observability.OutcomeMissing
	case models.HasCode(err, models.CodeValidation):
		return observability.OutcomeRejected
	}
	return observability.OutcomeError
}
