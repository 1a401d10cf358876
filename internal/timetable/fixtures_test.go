package timetable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/catalog"
	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func strPtr(s string) *string { return &s }

func mustCatalog(t *testing.T, rooms []models.Room, instructors []models.Instructor, groups []models.Group, sections []models.Section, courses []models.Course) *catalog.Catalog {
	t.Helper()
	cat, errs, _ := catalog.Build(rooms, instructors, groups, sections, courses)
	require.Empty(t, errs)
	return cat
}

// twoSectionFixture is one group of two sections with a professor and a TA
// qualified for every course passed in.
func twoSectionFixture(t *testing.T, courses []models.Course) *catalog.Catalog {
	t.Helper()
	courseIDs := make([]string, len(courses))
	for i, course := range courses {
		courseIDs[i] = course.ID
	}
	return mustCatalog(t,
		[]models.Room{
			{ID: "R1", Type: models.RoomClassroom, Capacity: 100, Building: "B1"},
			{ID: "R2", Type: models.RoomClassroom, Capacity: 50, Building: "B1"},
			{ID: "T1", Type: models.RoomTheater, Capacity: 200, Building: "B2"},
		},
		[]models.Instructor{
			{ID: "P1", Name: "Prof One", Role: models.RoleProfessor, QualifiedCourses: courseIDs},
			{ID: "TA1", Name: "TA One", Role: models.RoleTA, QualifiedCourses: courseIDs},
		},
		[]models.Group{{ID: "G1", Year: 1, SectionsCount: 2, StudentsCount: 40}},
		[]models.Section{
			{ID: "G1-S1", GroupID: "G1", StudentsCount: 20},
			{ID: "G1-S2", GroupID: "G1", StudentsCount: 20},
		},
		courses,
	)
}
