// Package wizard encapsulates step-gating policy on top of the project
// store, so the UI can never advance past a step whose precondition is
// unmet. Gating is a pure predicate; it reports a boolean instead of
// returning errors.
package wizard

import (
	"unicode/utf8"

	"vibeguide/internal/config"
	"vibeguide/internal/domain/models"
	"vibeguide/internal/store"
)

// CanAdvance reports whether the wizard may sit on the given step with
// the given project:
//
//	step 1 (describe): always
//	step 2 (analyze):  description of at least MinDescriptionRunes runes
//	step 3 (generate): step-2 gate plus at least one answered question
//
// Any other step is invalid. A nil project only satisfies step 1.
func CanAdvance(step int, p *models.Project) bool {
	switch step {
	case 1:
		return true
	case 2:
		return p != nil && descriptionLongEnough(p)
	case 3:
		return p != nil && descriptionLongEnough(p) && p.AnsweredQuestions() > 0
	default:
		return false
	}
}

func descriptionLongEnough(p *models.Project) bool {
	return utf8.RuneCountInString(p.Description) >= config.MinDescriptionRunes
}

// Controller layers gating over one session's store.
type Controller struct {
	store *store.Store
}

// NewController creates a controller bound to a store.
func NewController(s *store.Store) *Controller {
	return &Controller{store: s}
}

// RequestNext advances one step if the target step's gate passes.
// Returns false (and leaves the step unchanged) when the precondition
// is unmet; surfacing that to the user is the caller's job.
func (c *Controller) RequestNext() bool {
	target := c.store.Step() + 1
	if target > config.MaxWizardStep {
		return false
	}
	if !CanAdvance(target, c.store.CurrentProject()) {
		return false
	}
	c.store.NextStep()
	return true
}

// RequestPrev always goes back one step; there is no gating backward.
func (c *Controller) RequestPrev() {
	c.store.PrevStep()
}

// RequestStep jumps directly to a step. Forward jumps are gated the
// same way as RequestNext (the gate for step 3 subsumes step 2's);
// backward jumps always succeed.
func (c *Controller) RequestStep(n int) bool {
	if n < config.MinWizardStep || n > config.MaxWizardStep {
		return false
	}
	if n <= c.store.Step() {
		c.store.GoToStep(n)
		return true
	}
	if !CanAdvance(n, c.store.CurrentProject()) {
		return false
	}
	c.store.GoToStep(n)
	return true
}
