package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// QuestionType classifies how a clarifying question is answered.
type QuestionType string

const (
	QuestionTypeText   QuestionType = "text"
	QuestionTypeChoice QuestionType = "choice"
	QuestionTypeRating QuestionType = "rating"
)

// Question is a single AI-generated clarifying question. Answers are
// written locally by the user; everything else comes from the
// question-generation collaborator.
type Question struct {
	ID       string       `json:"id"`
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options,omitempty"`
	Required bool         `json:"required,omitempty"`
}

// Answered reports whether the question carries a non-empty answer.
func (q *Question) Answered() bool {
	return strings.TrimSpace(q.Answer) != ""
}

// DocumentSet is the fixed record of generated development documents.
// All five fields are always present (possibly empty), never missing -
// downstream consumers (archive download, persistence) rely on that.
type DocumentSet struct {
	UserJourney    string `json:"userJourney"`
	PRD            string `json:"prd"`
	FrontendDesign string `json:"frontendDesign"`
	BackendDesign  string `json:"backendDesign"`
	DatabaseDesign string `json:"databaseDesign"`
}

// DocumentUpdate is a partial update of a DocumentSet. Nil fields are
// left untouched on merge, so a partially failed generation can commit
// the documents it produced without clobbering earlier ones.
type DocumentUpdate struct {
	UserJourney    *string `json:"userJourney,omitempty"`
	PRD            *string `json:"prd,omitempty"`
	FrontendDesign *string `json:"frontendDesign,omitempty"`
	BackendDesign  *string `json:"backendDesign,omitempty"`
	DatabaseDesign *string `json:"databaseDesign,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u *DocumentUpdate) IsEmpty() bool {
	return u.UserJourney == nil && u.PRD == nil && u.FrontendDesign == nil &&
		u.BackendDesign == nil && u.DatabaseDesign == nil
}

// Merge applies the non-nil fields of the update to the set.
func (d *DocumentSet) Merge(u DocumentUpdate) {
	if u.UserJourney != nil {
		d.UserJourney = *u.UserJourney
	}
	if u.PRD != nil {
		d.PRD = *u.PRD
	}
	if u.FrontendDesign != nil {
		d.FrontendDesign = *u.FrontendDesign
	}
	if u.BackendDesign != nil {
		d.BackendDesign = *u.BackendDesign
	}
	if u.DatabaseDesign != nil {
		d.DatabaseDesign = *u.DatabaseDesign
	}
}

// ProjectStatus is a display label; transitions are not enforced.
type ProjectStatus string

const (
	StatusDraft      ProjectStatus = "draft"
	StatusInProgress ProjectStatus = "in_progress"
	StatusCompleted  ProjectStatus = "completed"
)

// DefaultProjectName is used when a project is synthesized implicitly
// from the first description edit.
const DefaultProjectName = "Untitled Project"

// Project is the unit of wizard state: description, clarifying
// questions and generated documents.
type Project struct {
	ID           string        `json:"id" db:"id"`
	UserID       string        `json:"user_id,omitempty" db:"user_id"`
	Name         string        `json:"name" db:"name"`
	Description  string        `json:"description" db:"description"`
	Requirements string        `json:"requirements" db:"requirements"`
	AIQuestions  []Question    `json:"aiQuestions" db:"questions"`
	Documents    DocumentSet   `json:"documents" db:"documents"`
	Status       ProjectStatus `json:"status" db:"status"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// NewProject creates a draft project with the default shape: generated
// ID, placeholder name, empty question list and all five document
// fields present but empty.
func NewProject(description string) *Project {
	now := time.Now()
	return &Project{
		ID:          uuid.New().String(),
		Name:        DefaultProjectName,
		Description: description,
		AIQuestions: []Question{},
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Touch refreshes the project's UpdatedAt timestamp.
func (p *Project) Touch() {
	p.UpdatedAt = time.Now()
}

// AnsweredQuestions counts questions with non-empty answers.
func (p *Project) AnsweredQuestions() int {
	n := 0
	for i := range p.AIQuestions {
		if p.AIQuestions[i].Answered() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy. The store hands out clones so callers can
// never mutate its state except through named operations.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	cp := *p
	cp.AIQuestions = make([]Question, len(p.AIQuestions))
	for i, q := range p.AIQuestions {
		cp.AIQuestions[i] = q
		if q.Options != nil {
			cp.AIQuestions[i].Options = append([]string(nil), q.Options...)
		}
	}
	return &cp
}
