// Package scope maps a caller's role and university to the modules they may query.
package scope

import (
	"context"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/edumetrics/internal/metrics"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/source"
)

// Resolver computes authorized module sets from the reference hierarchy.
type Resolver struct {
	hierarchy source.Hierarchy
}

// NewResolver creates a resolver over the given hierarchy.
func NewResolver(h source.Hierarchy) *Resolver {
	return &Resolver{hierarchy: h}
}

// Snapshot is one read of the module and course tables. Scope and
// attribution for a single request both come from the same snapshot.
type Snapshot struct {
	Modules []model.ModuleRef
	Courses []model.CourseRef
	// Err is the first lookup failure; tables read before it are kept.
	Err error
}

// Load reads modules then courses. Failures are logged and recorded in Err.
func Load(ctx context.Context, h source.Hierarchy) Snapshot {
	var snap Snapshot
	modules, err := h.ListModules(ctx)
	if err != nil {
		degraded(err, "modules")
		snap.Err = err
		return snap
	}
	snap.Modules = modules

	courses, err := h.ListCourses(ctx)
	if err != nil {
		degraded(err, "courses")
		snap.Err = err
		return snap
	}
	snap.Courses = courses
	return snap
}

// CourseMap returns moduleID -> courseID and courseID -> universityID lookups.
// Tables missing from the snapshot yield empty maps, so course and university
// breakdowns drop the unresolved groups.
func (s Snapshot) CourseMap() (moduleCourse, courseUniversity map[int64]int64) {
	moduleCourse = make(map[int64]int64, len(s.Modules))
	courseUniversity = make(map[int64]int64, len(s.Courses))
	for _, m := range s.Modules {
		moduleCourse[m.ID] = m.CourseID
	}
	for _, c := range s.Courses {
		courseUniversity[c.ID] = c.UniversityID
	}
	return moduleCourse, courseUniversity
}

// Resolve returns the sorted module IDs the caller may see, narrowed by the
// filter. Denials, unknown roles and hierarchy failures all yield an empty set.
func (r *Resolver) Resolve(ctx context.Context, caller model.Caller, filter model.ScopeFilter) []int64 {
	if !knownRole(caller.Role) {
		return nil
	}
	return r.ResolveIn(ctx, Load(ctx, r.hierarchy), caller, filter)
}

// ResolveIn is Resolve over an already loaded snapshot.
func (r *Resolver) ResolveIn(ctx context.Context, snap Snapshot, caller model.Caller, filter model.ScopeFilter) []int64 {
	if !knownRole(caller.Role) || snap.Err != nil {
		return nil
	}

	universityOf := make(map[int64]int64, len(snap.Courses))
	for _, c := range snap.Courses {
		universityOf[c.ID] = c.UniversityID
	}

	allowed, ok := r.courseFilter(ctx, caller, filter, universityOf)
	if !ok {
		return nil
	}

	var out []int64
	for _, m := range snap.Modules {
		if filter.ModuleID != 0 && m.ID != filter.ModuleID {
			continue
		}
		if !allowed(m.CourseID) {
			continue
		}
		out = append(out, m.ID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func knownRole(role model.Role) bool {
	switch role {
	case model.RoleSuperAdmin, model.RoleProfessor, model.RoleAdminProfessor:
		return true
	}
	return false
}

// courseFilter returns a predicate over course IDs for the caller, or false
// when the request is denied outright.
func (r *Resolver) courseFilter(ctx context.Context, caller model.Caller, filter model.ScopeFilter, universityOf map[int64]int64) (func(int64) bool, bool) {
	matchesFilter := func(courseID int64) bool {
		if filter.CourseID != 0 && courseID != filter.CourseID {
			return false
		}
		if filter.UniversityID != 0 && universityOf[courseID] != filter.UniversityID {
			return false
		}
		return true
	}

	switch caller.Role {
	case model.RoleSuperAdmin:
		return matchesFilter, true

	case model.RoleAdminProfessor:
		if caller.UniversityID == 0 {
			return nil, false
		}
		if filter.CourseID != 0 && universityOf[filter.CourseID] != caller.UniversityID {
			return nil, false
		}
		if filter.UniversityID != 0 && filter.UniversityID != caller.UniversityID {
			return nil, false
		}
		return func(courseID int64) bool {
			uni, ok := universityOf[courseID]
			return ok && uni == caller.UniversityID && matchesFilter(courseID)
		}, true

	case model.RoleProfessor:
		assigned, err := r.hierarchy.ListProfessorCourses(ctx, caller.UserID)
		if err != nil {
			metrics.DegradedLookups.WithLabelValues("professor_courses").Inc()
			log.WithError(err).WithFields(log.Fields{
				"dimension":    "professor_courses",
				"professor_id": caller.UserID,
			}).Warn("scope: hierarchy unavailable")
			return nil, false
		}
		set := make(map[int64]bool, len(assigned))
		for _, id := range assigned {
			set[id] = true
		}
		return func(courseID int64) bool {
			return set[courseID] && matchesFilter(courseID)
		}, true
	}
	return nil, false
}

// CourseMap loads a snapshot and returns its lookups.
func CourseMap(ctx context.Context, h source.Hierarchy) (moduleCourse, courseUniversity map[int64]int64) {
	return Load(ctx, h).CourseMap()
}

func degraded(err error, dimension string) {
	metrics.DegradedLookups.WithLabelValues(dimension).Inc()
	log.WithError(err).WithField("dimension", dimension).Warn("hierarchy lookup failed")
}
