package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"vibeguide/internal/domain"
	"vibeguide/internal/domain/models"
	"vibeguide/internal/domain/repositories"
)

// PostgresProjectRepository implements the ProjectRepository interface.
// Questions and documents are stored as JSONB; the document record
// always round-trips with all five fields present.
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *RepositoryConfig) repositories.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Save inserts the project or updates it in place when the ID exists.
func (r *PostgresProjectRepository) Save(ctx context.Context, project *models.Project) error {
	questions, err := json.Marshal(project.AIQuestions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	documents, err := json.Marshal(project.Documents)
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, name, description, requirements, questions, documents, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			requirements = EXCLUDED.requirements,
			questions = EXCLUDED.questions,
			documents = EXCLUDED.documents,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		WHERE %s.user_id = EXCLUDED.user_id
	`, r.tables.Projects, r.tables.Projects)

	result, err := r.pool.Exec(ctx, query,
		project.ID,
		project.UserID,
		project.Name,
		project.Description,
		project.Requirements,
		questions,
		documents,
		project.Status,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	if result.RowsAffected() == 0 {
		// ID exists but belongs to another user.
		return fmt.Errorf("project %s: %w", project.ID, domain.ErrUnauthorized)
	}

	return nil
}

// GetByID retrieves a saved project owned by the user.
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, description, requirements, questions, documents, status, created_at, updated_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Projects)

	project, err := scanProject(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return project, nil
}

// List retrieves all saved projects for a user, ordered by updated_at DESC
func (r *PostgresProjectRepository) List(ctx context.Context, userID string) ([]models.Project, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, description, requirements, questions, documents, status, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, r.tables.Projects)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	// Return empty slice instead of nil if no projects
	if projects == nil {
		projects = []models.Project{}
	}

	return projects, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		project   models.Project
		questions []byte
		documents []byte
	)
	err := row.Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.Description,
		&project.Requirements,
		&questions,
		&documents,
		&project.Status,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(questions, &project.AIQuestions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if err := json.Unmarshal(documents, &project.Documents); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	if project.AIQuestions == nil {
		project.AIQuestions = []models.Question{}
	}

	return &project, nil
}
