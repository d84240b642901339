package config

const (
	// MinDescriptionRunes is the minimum project description length
	// (in runes) required before the wizard may advance past the
	// describe step. Shorter descriptions give the AI collaborator
	// too little signal to generate useful questions.
	MinDescriptionRunes = 20

	// MaxDescriptionRunes caps the project description size. Limited
	// to keep AI prompts bounded.
	MaxDescriptionRunes = 5000

	// MaxRequirementsRunes caps the requirements/analysis text.
	MaxRequirementsRunes = 20000

	// MaxProjectNameLength is the maximum length for project names,
	// matching the VARCHAR(255) column.
	MaxProjectNameLength = 255

	// MaxAnswerRunes caps a single question answer.
	MaxAnswerRunes = 5000

	// MinWizardStep and MaxWizardStep bound the wizard step range.
	// Steps: 1 = describe, 2 = analyze, 3 = generate.
	MinWizardStep = 1
	MaxWizardStep = 3
)
