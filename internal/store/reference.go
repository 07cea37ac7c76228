package store

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/source"
)

// ApplyReference writes every table of a reference-data set.
func (s *DB) ApplyReference(ctx context.Context, ref *source.ReferenceData) error {
	if err := s.UpsertCourses(ctx, ref.Courses); err != nil {
		return fmt.Errorf("storing courses: %w", err)
	}
	if err := s.UpsertModules(ctx, ref.Modules); err != nil {
		return fmt.Errorf("storing modules: %w", err)
	}
	if err := s.UpsertProfessorCourses(ctx, ref.Professors); err != nil {
		return fmt.Errorf("storing professor courses: %w", err)
	}
	if err := s.UpsertModelPricing(ctx, ref.Models); err != nil {
		return fmt.Errorf("storing pricing: %w", err)
	}
	if err := s.InsertTranscriptions(ctx, ref.Transcriptions); err != nil {
		return fmt.Errorf("storing transcriptions: %w", err)
	}
	return nil
}

// UpsertCourses writes course rows.
func (s *DB) UpsertCourses(ctx context.Context, courses []model.CourseRef) error {
	return s.execEach(ctx, `INSERT INTO courses (id, university_id, name) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET university_id = excluded.university_id, name = excluded.name`,
		len(courses), func(i int) []any {
			c := courses[i]
			return []any{c.ID, c.UniversityID, c.Name}
		})
}

// UpsertModules writes module rows.
func (s *DB) UpsertModules(ctx context.Context, modules []model.ModuleRef) error {
	return s.execEach(ctx, `INSERT INTO modules (id, course_id, name) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET course_id = excluded.course_id, name = excluded.name`,
		len(modules), func(i int) []any {
			m := modules[i]
			return []any{m.ID, m.CourseID, m.Name}
		})
}

// UpsertProfessorCourses writes professor course assignments.
func (s *DB) UpsertProfessorCourses(ctx context.Context, assignments []model.ProfessorAssignment) error {
	return s.execEach(ctx, `INSERT INTO professor_courses (professor_id, course_id) VALUES (?, ?)
		ON CONFLICT (professor_id, course_id) DO NOTHING`,
		len(assignments), func(i int) []any {
			a := assignments[i]
			return []any{a.ProfessorID, a.CourseID}
		})
}

// UpsertModelPricing writes active pricing rows.
func (s *DB) UpsertModelPricing(ctx context.Context, rows []model.ModelPricing) error {
	return s.execEach(ctx, `INSERT INTO model_pricing
		(model_name, provider, input_cost_per_mtok, output_cost_per_mtok, active)
		VALUES (?, ?, ?, ?, TRUE)
		ON CONFLICT (model_name) DO UPDATE SET provider = excluded.provider,
		input_cost_per_mtok = excluded.input_cost_per_mtok,
		output_cost_per_mtok = excluded.output_cost_per_mtok, active = TRUE`,
		len(rows), func(i int) []any {
			p := rows[i]
			return []any{p.ModelName, p.Provider, p.InputCostPerMillionTokens, p.OutputCostPerMillionTokens}
		})
}

// DeactivateModel marks a pricing row inactive so it no longer prices messages.
func (s *DB) DeactivateModel(ctx context.Context, modelName string) error {
	_, err := s.db.ExecContext(ctx, s.rebind("UPDATE model_pricing SET active = FALSE WHERE model_name = ?"), modelName)
	return err
}

// InsertTranscriptions writes completed transcription costs.
func (s *DB) InsertTranscriptions(ctx context.Context, items []model.TranscriptionCost) error {
	return s.execEach(ctx, `INSERT INTO transcriptions
		(module_id, completed_at_ms, cost_usd, duration_seconds, status)
		VALUES (?, ?, ?, ?, 'completed')
		ON CONFLICT (module_id, completed_at_ms) DO UPDATE SET cost_usd = excluded.cost_usd,
		duration_seconds = excluded.duration_seconds, status = excluded.status`,
		len(items), func(i int) []any {
			t := items[i]
			return []any{t.ModuleID, t.CompletedAt.UnixMilli(), t.CostUSD, t.DurationSeconds}
		})
}

// ListModules returns every module ordered by ID.
func (s *DB) ListModules(ctx context.Context) ([]model.ModuleRef, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, course_id, name FROM modules ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing modules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ModuleRef
	for rows.Next() {
		var m model.ModuleRef
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListCourses returns every course ordered by ID.
func (s *DB) ListCourses(ctx context.Context) ([]model.CourseRef, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, university_id, name FROM courses ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.CourseRef
	for rows.Next() {
		var c model.CourseRef
		if err := rows.Scan(&c.ID, &c.UniversityID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListProfessorCourses returns the course IDs assigned to a professor.
func (s *DB) ListProfessorCourses(ctx context.Context, professorID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT course_id FROM professor_courses WHERE professor_id = ? ORDER BY course_id"), professorID)
	if err != nil {
		return nil, fmt.Errorf("listing professor courses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GetActiveModels returns the active pricing rows.
func (s *DB) GetActiveModels(ctx context.Context) ([]model.ModelPricing, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT model_name, provider, input_cost_per_mtok, output_cost_per_mtok
		FROM model_pricing WHERE active = TRUE ORDER BY model_name`)
	if err != nil {
		return nil, fmt.Errorf("listing pricing: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ModelPricing
	for rows.Next() {
		var p model.ModelPricing
		if err := rows.Scan(&p.ModelName, &p.Provider, &p.InputCostPerMillionTokens, &p.OutputCostPerMillionTokens); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetCompletedTranscriptions returns completed transcriptions for the given
// modules. An empty module list matches nothing.
func (s *DB) GetCompletedTranscriptions(ctx context.Context, moduleIDs []int64, start, end *time.Time) ([]model.TranscriptionCost, error) {
	if len(moduleIDs) == 0 {
		return nil, nil
	}

	query := "SELECT module_id, completed_at_ms, cost_usd, duration_seconds FROM transcriptions" +
		" WHERE status = 'completed' AND module_id IN (" + placeholders(len(moduleIDs)) + ")"
	args := make([]any, 0, len(moduleIDs)+2)
	for _, id := range moduleIDs {
		args = append(args, id)
	}
	if start != nil {
		query += " AND completed_at_ms >= ?"
		args = append(args, start.UnixMilli())
	}
	if end != nil {
		query += " AND completed_at_ms < ?"
		args = append(args, end.UnixMilli())
	}
	query += " ORDER BY completed_at_ms"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying transcriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.TranscriptionCost
	for rows.Next() {
		var (
			t  model.TranscriptionCost
			ms int64
		)
		if err := rows.Scan(&t.ModuleID, &ms, &t.CostUSD, &t.DurationSeconds); err != nil {
			return nil, err
		}
		t.CompletedAt = time.UnixMilli(ms)
		out = append(out, t)
	}
	return out, rows.Err()
}

// execEach runs one prepared statement per row inside a transaction.
func (s *DB) execEach(ctx context.Context, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(query))
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return tx.Commit()
}
