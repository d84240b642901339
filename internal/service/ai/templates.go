package ai

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"vibeguide/internal/domain/models"
)

// DocumentType names one of the five generated documents. The values
// match the `type` field of the AI service's generate-document call
// and the JSON keys of models.DocumentSet.
type DocumentType string

const (
	DocUserJourney    DocumentType = "userJourney"
	DocPRD            DocumentType = "prd"
	DocFrontendDesign DocumentType = "frontendDesign"
	DocBackendDesign  DocumentType = "backendDesign"
	DocDatabaseDesign DocumentType = "databaseDesign"
)

// DocumentTemplate describes one document type: its display title, the
// filename used for downloads, and the section outline the mock
// provider renders.
type DocumentTemplate struct {
	Type     DocumentType `yaml:"type"`
	Title    string       `yaml:"title"`
	Filename string       `yaml:"filename"`
	Sections []string     `yaml:"sections"`
}

//go:embed templates.yaml
var templatesYAML []byte

var documentTemplates []DocumentTemplate

func init() {
	var manifest struct {
		Documents []DocumentTemplate `yaml:"documents"`
	}
	if err := yaml.Unmarshal(templatesYAML, &manifest); err != nil {
		panic(fmt.Sprintf("ai: invalid embedded templates.yaml: %v", err))
	}
	if len(manifest.Documents) != 5 {
		panic(fmt.Sprintf("ai: templates.yaml must define 5 documents, got %d", len(manifest.Documents)))
	}
	documentTemplates = manifest.Documents
}

// DocumentTemplates returns the five document templates in generation
// order.
func DocumentTemplates() []DocumentTemplate {
	return documentTemplates
}

// setDocument writes content into the update field matching the type.
func setDocument(update *models.DocumentUpdate, docType DocumentType, content string) {
	switch docType {
	case DocUserJourney:
		update.UserJourney = &content
	case DocPRD:
		update.PRD = &content
	case DocFrontendDesign:
		update.FrontendDesign = &content
	case DocBackendDesign:
		update.BackendDesign = &content
	case DocDatabaseDesign:
		update.DatabaseDesign = &content
	}
}

// DocumentContent reads the document set field matching the type.
func DocumentContent(docs *models.DocumentSet, docType DocumentType) string {
	switch docType {
	case DocUserJourney:
		return docs.UserJourney
	case DocPRD:
		return docs.PRD
	case DocFrontendDesign:
		return docs.FrontendDesign
	case DocBackendDesign:
		return docs.BackendDesign
	case DocDatabaseDesign:
		return docs.DatabaseDesign
	default:
		return ""
	}
}
