package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func TestStartCandidatesAlignment(t *testing.T) {
	grid := DefaultGrid()

	double := models.Occurrence{Slots: 2}
	starts, startDays := StartCandidates(grid, double)
	require.Len(t, starts, 20) // 4 aligned starts per day over 5 days
	for i, s := range starts {
		assert.Equal(t, 0, s%2, "two-slot sessions start on period boundaries")
		assert.Equal(t, s/grid.SlotsPerDay(), startDays[i][1])
	}

	single := models.Occurrence{Slots: 1}
	starts, _ = StartCandidates(grid, single)
	assert.Len(t, starts, 40)

	fullDay := models.Occurrence{Slots: grid.SlotsPerDay()}
	starts, _ = StartCandidates(grid, fullDay)
	require.Len(t, starts, 5)
	for _, s := range starts {
		assert.Equal(t, 0, s%grid.SlotsPerDay(), "full-day sessions start at the first sub-slot")
	}
}

func TestStartCandidatesNeverCrossDays(t *testing.T) {
	grid := DefaultGrid()
	occ := models.Occurrence{Slots: 4}
	starts, _ := StartCandidates(grid, occ)
	for _, s := range starts {
		assert.Equal(t, grid.DayOf(s), grid.DayOf(s+occ.Slots-1))
	}
}

func TestRoomCandidatesByType(t *testing.T) {
	cat := mustCatalog(t,
		[]models.Room{
			{ID: "C1", Type: models.RoomClassroom, Capacity: 50, Building: "B1"},
			{ID: "T1", Type: models.RoomTheater, Capacity: 200, Building: "B1"},
			{ID: "CL1", Type: models.RoomComputerLab, Capacity: 70, Building: "B1"},
			{ID: "PL1", Type: models.RoomPhysicsLab, Capacity: 30, Building: "B1"},
		},
		nil, nil, nil, nil,
	)

	lecture := models.Occurrence{Type: models.SessionLecture, Students: 40}
	assert.Equal(t, []string{"C1", "T1"}, RoomCandidates(cat, lecture))

	tut := models.Occurrence{Type: models.SessionTut, Students: 20}
	assert.Equal(t, []string{"C1", "CL1"}, RoomCandidates(cat, tut))

	lab := models.Occurrence{Type: models.SessionLab, LabType: string(models.RoomPhysicsLab), Students: 20}
	assert.Equal(t, []string{"PL1"}, RoomCandidates(cat, lab))

	project := models.Occurrence{Type: models.SessionProject, Students: 60}
	assert.Equal(t, []string{"T1"}, RoomCandidates(cat, project))
}

func TestRoomCandidatesCapacity(t *testing.T) {
	cat := mustCatalog(t,
		[]models.Room{
			{ID: "small", Type: models.RoomClassroom, Capacity: 30, Building: "B1"},
			{ID: "big", Type: models.RoomClassroom, Capacity: 120, Building: "B1"},
		},
		nil, nil, nil, nil,
	)

	lecture := models.Occurrence{Type: models.SessionLecture, Students: 60}
	assert.Equal(t, []string{"big"}, RoomCandidates(cat, lecture))

	lecture.IgnoreCapacity = true
	assert.Equal(t, []string{"big", "small"}, RoomCandidates(cat, lecture))
}

func TestInstructorCandidatesByRole(t *testing.T) {
	cat := mustCatalog(t,
		nil,
		[]models.Instructor{
			{ID: "P1", Role: models.RoleProfessor, QualifiedCourses: []string{"C1"}},
			{ID: "TA1", Role: models.RoleTA, QualifiedCourses: []string{"C1"}},
			{ID: "P2", Role: models.RoleProfessor, QualifiedCourses: []string{"other"}},
		},
		nil, nil, nil,
	)

	lecture := models.Occurrence{CourseID: "C1", Type: models.SessionLecture, HasInstructor: true}
	assert.Equal(t, []string{"P1"}, InstructorCandidates(cat, lecture))

	tut := models.Occurrence{CourseID: "C1", Type: models.SessionTut, HasInstructor: true}
	assert.Equal(t, []string{"TA1"}, InstructorCandidates(cat, tut))

	project := models.Occurrence{CourseID: "C1", Type: models.SessionProject, HasInstructor: false}
	assert.Nil(t, InstructorCandidates(cat, project))
}

func TestPrecheckReportsEmptyDomains(t *testing.T) {
	cat := mustCatalog(t,
		[]models.Room{{ID: "C1", Type: models.RoomClassroom, Capacity: 30, Building: "B1"}},
		[]models.Instructor{{ID: "P1", Role: models.RoleProfessor, QualifiedCourses: []string{"X"}}},
		nil, nil, nil,
	)
	grid := DefaultGrid()

	occurrences := []models.Occurrence{
		{ID: "no-room", CourseID: "X", Type: models.SessionLecture, Students: 100, Slots: 2, HasInstructor: true},
		{ID: "no-instructor", CourseID: "Y", Type: models.SessionLecture, Students: 10, Slots: 2, HasInstructor: true},
		{ID: "no-lab-type", CourseID: "X", Type: models.SessionLab, Students: 10, Slots: 2, HasInstructor: true},
		{ID: "too-long", CourseID: "X", Type: models.SessionLecture, Students: 10, Slots: 9, HasInstructor: true},
	}

	errs := Precheck(cat, grid, occurrences)
	refs := make([]string, len(errs))
	for i, e := range errs {
		refs[i] = e.Ref
	}
	assert.Contains(t, refs, "no-room")
	assert.Contains(t, refs, "no-instructor")
	assert.Contains(t, refs, "no-lab-type")
	assert.Contains(t, refs, "too-long")
}

func TestPrecheckPassesFeasibleOccurrence(t *testing.T) {
	cat := mustCatalog(t,
		[]models.Room{{ID: "C1", Type: models.RoomClassroom, Capacity: 50, Building: "B1"}},
		[]models.Instructor{{ID: "P1", Role: models.RoleProfessor, QualifiedCourses: []string{"X"}}},
		nil, nil, nil,
	)

	occ := models.Occurrence{ID: "ok", CourseID: "X", Type: models.SessionLecture, Students: 40, Slots: 2, HasInstructor: true}
	assert.Empty(t, Precheck(cat, DefaultGrid(), []models.Occurrence{occ}))
}
