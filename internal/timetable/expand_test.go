package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func TestExpandLectureDefaultsToTwoSessions(t *testing.T) {
	cat := twoSectionFixture(t, []models.Course{
		{ID: "C1", Name: "Course One", Year: 1, Kinds: []models.CourseKind{{Type: models.SessionLecture, Length: 90}}},
	})

	occurrences, errs := Expand(cat, DefaultGrid())
	require.Empty(t, errs)
	require.Len(t, occurrences, 2)
	assert.Equal(t, "C1_G1_LEC", occurrences[0].ID)
	assert.Equal(t, "C1_G1_LEC#1", occurrences[1].ID)
	for _, occ := range occurrences {
		assert.Equal(t, []string{"G1-S1", "G1-S2"}, occ.Cohort)
		assert.Equal(t, 2, occ.Slots)
		assert.Equal(t, 40, occ.Students)
		assert.True(t, occ.HasInstructor)
	}
}

func TestExpandTutPerSection(t *testing.T) {
	cat := twoSectionFixture(t, []models.Course{
		{ID: "C2", Name: "Course Two", Year: 1, Kinds: []models.CourseKind{{Type: models.SessionTut, Length: 45}}},
	})

	occurrences, errs := Expand(cat, DefaultGrid())
	require.Empty(t, errs)
	require.Len(t, occurrences, 2)
	assert.Equal(t, []string{"G1-S1"}, occurrences[0].Cohort)
	assert.Equal(t, []string{"G1-S2"}, occurrences[1].Cohort)
	assert.Equal(t, 1, occurrences[0].Slots)
}

func TestExpandLabBundling(t *testing.T) {
	cat := mustCatalog(t,
		[]models.Room{{ID: "L1", Type: models.RoomComputerLab, Capacity: 70, Building: "B1"}},
		[]models.Instructor{{ID: "TA1", Role: models.RoleTA, QualifiedCourses: []string{"C3"}}},
		[]models.Group{{ID: "G1", Year: 2, SectionsCount: 3, StudentsCount: 60}},
		[]models.Section{
			{ID: "G1-S1", GroupID: "G1", StudentsCount: 20},
			{ID: "G1-S2", GroupID: "G1", StudentsCount: 20},
			{ID: "G1-S3", GroupID: "G1", StudentsCount: 20},
		},
		[]models.Course{{
			ID: "C3", Name: "Course Three", Year: 2,
			Kinds: []models.CourseKind{{
				Type: models.SessionLab, Length: 90,
				LabType:             strPtr(string(models.RoomComputerLab)),
				MaxSectionsTogether: 2,
			}},
		}},
	)

	occurrences, errs := Expand(cat, DefaultGrid())
	require.Empty(t, errs)
	require.Len(t, occurrences, 2)
	assert.Equal(t, []string{"G1-S1", "G1-S2"}, occurrences[0].Cohort)
	assert.Equal(t, 40, occurrences[0].Students)
	assert.Equal(t, []string{"G1-S3"}, occurrences[1].Cohort)
	assert.Equal(t, string(models.RoomComputerLab), occurrences[0].LabType)
}

func TestExpandLabDefaultsToPerSection(t *testing.T) {
	cat := twoSectionFixture(t, []models.Course{
		{ID: "C4", Name: "Course Four", Year: 1, Kinds: []models.CourseKind{{
			Type: models.SessionLab, Length: 90, LabType: strPtr(string(models.RoomPhysicsLab)),
		}}},
	})

	occurrences, errs := Expand(cat, DefaultGrid())
	require.Empty(t, errs)
	require.Len(t, occurrences, 2)
	for _, occ := range occurrences {
		assert.Len(t, occ.Cohort, 1)
	}
}

func TestExpandProjectCoercesFullDay(t *testing.T) {
	cat := twoSectionFixture(t, []models.Course{
		{ID: "GP", Name: "Graduation Project", Year: 1, IsProject: true,
			Kinds: []models.CourseKind{{Type: models.SessionLecture, Length: 90}}},
	})

	grid := DefaultGrid()
	occurrences, errs := Expand(cat, grid)
	require.Empty(t, errs)
	require.Len(t, occurrences, 1)
	occ := occurrences[0]
	assert.Equal(t, models.SessionProject, occ.Type)
	assert.Equal(t, grid.SlotsPerDay(), occ.Slots)
	assert.False(t, occ.HasInstructor)
	assert.Equal(t, "GP_G1_PROJECT", occ.ID)
}

func TestExpandFullYearLectureSpansAllSections(t *testing.T) {
	cat := mustCatalog(t,
		[]models.Room{{ID: "T1", Type: models.RoomTheater, Capacity: 300, Building: "B1"}},
		[]models.Instructor{{ID: "P1", Role: models.RoleProfessor, QualifiedCourses: []string{"FY1"}}},
		[]models.Group{
			{ID: "G1", Year: 1, SectionsCount: 2, StudentsCount: 40},
			{ID: "G2", Year: 1, SectionsCount: 2, StudentsCount: 40},
		},
		[]models.Section{
			{ID: "G1-S1", GroupID: "G1", StudentsCount: 20},
			{ID: "G1-S2", GroupID: "G1", StudentsCount: 20},
			{ID: "G2-S1", GroupID: "G2", StudentsCount: 20},
			{ID: "G2-S2", GroupID: "G2", StudentsCount: 20},
		},
		[]models.Course{{
			ID: "FY1", Name: "Full Year One", Year: 1, FullYear: true,
			Kinds: []models.CourseKind{{Type: models.SessionLecture, Length: 90, SessionsPerWeek: 1}},
		}},
	)

	occurrences, errs := Expand(cat, DefaultGrid())
	require.Empty(t, errs)
	require.Len(t, occurrences, 1)
	assert.Equal(t, []string{"G1-S1", "G1-S2", "G2-S1", "G2-S2"}, occurrences[0].Cohort)
	assert.Equal(t, 80, occurrences[0].Students)
	assert.Equal(t, "FY1_Y1_LEC", occurrences[0].ID)
}

func TestExpandMajorFilter(t *testing.T) {
	cat := mustCatalog(t,
		[]models.Room{{ID: "R1", Type: models.RoomClassroom, Capacity: 100, Building: "B1"}},
		[]models.Instructor{{ID: "P1", Role: models.RoleProfessor, QualifiedCourses: []string{"CNC1"}}},
		[]models.Group{
			{ID: "G-AID", Year: 3, Specialization: strPtr("AID"), SectionsCount: 1, StudentsCount: 20},
			{ID: "G-CNC", Year: 3, Specialization: strPtr("CNC"), SectionsCount: 1, StudentsCount: 20},
		},
		[]models.Section{
			{ID: "G-AID-S1", GroupID: "G-AID", StudentsCount: 20},
			{ID: "G-CNC-S1", GroupID: "G-CNC", StudentsCount: 20},
		},
		[]models.Course{{
			ID: "CNC1", Name: "Networks", Year: 3, Major: strPtr("CNC"),
			Kinds: []models.CourseKind{{Type: models.SessionLecture, Length: 90, SessionsPerWeek: 1}},
		}},
	)

	occurrences, errs := Expand(cat, DefaultGrid())
	require.Empty(t, errs)
	require.Len(t, occurrences, 1)
	assert.Equal(t, "G-CNC", occurrences[0].GroupID)
}

func TestExpandRejectsUnalignedLength(t *testing.T) {
	cat := twoSectionFixture(t, []models.Course{
		{ID: "C5", Name: "Course Five", Year: 1, Kinds: []models.CourseKind{{Type: models.SessionLecture, Length: 60}}},
	})

	_, errs := Expand(cat, DefaultGrid())
	require.Len(t, errs, 1)
	assert.Equal(t, "C5", errs[0].Ref)
}

func TestExpandDeterministicOrder(t *testing.T) {
	courses := []models.Course{
		{ID: "B", Name: "B", Year: 1, Kinds: []models.CourseKind{
			{Type: models.SessionTut, Length: 45},
			{Type: models.SessionLecture, Length: 90, SessionsPerWeek: 1},
		}},
		{ID: "A", Name: "A", Year: 1, Kinds: []models.CourseKind{{Type: models.SessionLecture, Length: 90, SessionsPerWeek: 1}}},
	}
	cat := twoSectionFixture(t, courses)

	occurrences, errs := Expand(cat, DefaultGrid())
	require.Empty(t, errs)
	ids := make([]string, len(occurrences))
	for i, occ := range occurrences {
		ids[i] = occ.ID
	}
	assert.Equal(t, []string{"A_G1_LEC", "B_G1_LEC", "B_G1-S1_TUT", "B_G1-S2_TUT"}, ids)
}
