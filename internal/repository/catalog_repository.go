package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/degreepath/scheduler/internal/dto"
)

// relationRow mirrors one row of the offered_sections view for a term: the
// engine's typed input contract (dto.RelationInput) read directly out of
// Postgres via sqlx struct scanning. Days is a Postgres text[] column,
// scanned through pq.StringArray.
type relationRow struct {
	RID          string         `db:"rid"`
	ClassID      string         `db:"class_id"`
	Semester     int            `db:"semester"`
	Days         pq.StringArray `db:"days"`
	StartMinute  int            `db:"start_minute"`
	EndMinute    int            `db:"end_minute"`
	InstructorID string         `db:"instructor_id"`
	Rating       *float64       `db:"rating"`
	Score        float64        `db:"score"`
}

// CatalogRepository reads the engine's input contract out of Postgres for a
// given term: the engine itself (internal/catalog, internal/modelbuilder,
// internal/solver) never touches a database connection.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs a catalog-ingestion repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Relations returns every offered section for a term, in the engine's wire
// shape.
func (r *CatalogRepository) Relations(ctx context.Context, termID string) ([]dto.RelationInput, error) {
	const query = `
SELECT rid, class_id, semester, days, start_minute, end_minute,
       COALESCE(instructor_id, '') AS instructor_id, rating, score
FROM offered_sections
WHERE term_id = $1
ORDER BY rid ASC`
	var rows []relationRow
	if err := r.db.SelectContext(ctx, &rows, query, termID); err != nil {
		return nil, fmt.Errorf("list offered sections for term %s: %w", termID, err)
	}
	out := make([]dto.RelationInput, len(rows))
	for i, row := range rows {
		out[i] = dto.RelationInput{
			RID:          row.RID,
			ClassID:      row.ClassID,
			Semester:     row.Semester,
			Days:         []string(row.Days),
			StartMinute:  row.StartMinute,
			EndMinute:    row.EndMinute,
			InstructorID: row.InstructorID,
			Rating:       row.Rating,
			Score:        row.Score,
		}
	}
	return out, nil
}

// groupMemberRow is one (group_name, class_id) membership row.
type groupMemberRow struct {
	GroupName string `db:"group_name"`
	ClassID   string `db:"class_id"`
}

// Groups returns named course-group membership for a term, e.g. major
// requirement buckets used by require_group_counts constraints.
func (r *CatalogRepository) Groups(ctx context.Context, termID string) (map[string][]string, error) {
	const query = `
SELECT group_name, class_id
FROM course_groups
WHERE term_id = $1
ORDER BY group_name ASC, class_id ASC`
	var rows []groupMemberRow
	if err := r.db.SelectContext(ctx, &rows, query, termID); err != nil {
		return nil, fmt.Errorf("list course groups for term %s: %w", termID, err)
	}
	out := make(map[string][]string)
	for _, row := range rows {
		out[row.GroupName] = append(out[row.GroupName], row.ClassID)
	}
	return out, nil
}

// hubMemberRow is one (hub_tag, class_id) membership row.
type hubMemberRow struct {
	HubTag  string `db:"hub_tag"`
	ClassID string `db:"class_id"`
}

// hubRequirementRow is one hub tag's required course count.
type hubRequirementRow struct {
	HubTag string `db:"hub_tag"`
	Count  int    `db:"required_count"`
}

// Hubs returns general-education/hub tag requirements and membership for a
// term.
func (r *CatalogRepository) Hubs(ctx context.Context, termID string) (dto.HubsInput, error) {
	const membersQuery = `
SELECT hub_tag, class_id
FROM hub_classes
WHERE term_id = $1
ORDER BY hub_tag ASC, class_id ASC`
	var memberRows []hubMemberRow
	if err := r.db.SelectContext(ctx, &memberRows, membersQuery, termID); err != nil {
		return dto.HubsInput{}, fmt.Errorf("list hub classes for term %s: %w", termID, err)
	}

	const reqQuery = `
SELECT hub_tag, required_count
FROM hub_requirements
WHERE term_id = $1
ORDER BY hub_tag ASC`
	var reqRows []hubRequirementRow
	if err := r.db.SelectContext(ctx, &reqRows, reqQuery, termID); err != nil {
		return dto.HubsInput{}, fmt.Errorf("list hub requirements for term %s: %w", termID, err)
	}

	hubs := dto.HubsInput{
		Requirements: make(map[string]int, len(reqRows)),
		ClassesByTag: make(map[string][]string),
	}
	for _, row := range reqRows {
		hubs.Requirements[row.HubTag] = row.Count
	}
	for _, row := range memberRows {
		hubs.ClassesByTag[row.HubTag] = append(hubs.ClassesByTag[row.HubTag], row.ClassID)
	}
	return hubs, nil
}
