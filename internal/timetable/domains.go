package timetable

import (
	"fmt"
	"sort"

	"github.com/noah-isme/uni-timetable-api/internal/catalog"
	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// Domain carries the precomputed legal values for one occurrence: the start
// sub-slots (week-wide indices), the (start, day) link table, and the room
// and instructor candidate lists, all in deterministic order.
type Domain struct {
	Starts      []int
	StartDays   [][2]int // (start, day) pairs, aligned with Starts
	Rooms       []string
	Instructors []string
}

// admissibleRoomTypes maps a session type to the room types it may use.
// Labs are handled separately: they demand their declared lab type exactly.
var admissibleRoomTypes = map[models.SessionType][]models.RoomType{
	models.SessionLecture: {models.RoomClassroom, models.RoomTheater, models.RoomHall},
	models.SessionTut:     {models.RoomClassroom, models.RoomComputerLab, models.RoomHall},
	models.SessionProject: {models.RoomHall, models.RoomTheater, models.RoomClassroom},
}

// RoomCandidates returns the ids of rooms admissible for the occurrence,
// ordered by room id.
func RoomCandidates(cat *catalog.Catalog, occ models.Occurrence) []string {
	var ids []string
	for _, room := range cat.Rooms {
		if !roomTypeAdmissible(room.Type, occ) {
			continue
		}
		if !occ.IgnoreCapacity && occ.Students > 0 && room.Capacity < occ.Students {
			continue
		}
		ids = append(ids, room.ID)
	}
	sort.Strings(ids)
	return ids
}

func roomTypeAdmissible(roomType models.RoomType, occ models.Occurrence) bool {
	if occ.Type == models.SessionLab {
		return string(roomType) == occ.LabType
	}
	for _, admissible := range admissibleRoomTypes[occ.Type] {
		if roomType == admissible {
			return true
		}
	}
	return false
}

// InstructorCandidates returns the ids of qualified instructors with the
// correct role, ordered by instructor id. Empty when the occurrence carries
// no instructor.
func InstructorCandidates(cat *catalog.Catalog, occ models.Occurrence) []string {
	if !occ.HasInstructor {
		return nil
	}
	qualified := cat.QualifiedInstructors(occ.CourseID, occ.Type)
	ids := make([]string, len(qualified))
	for i, instr := range qualified {
		ids[i] = instr.ID
	}
	return ids
}

// StartCandidates enumerates every week-wide sub-slot index at which the
// occurrence may begin: the whole span stays within one day, and sessions of
// two or more sub-slots begin on a period boundary.
func StartCandidates(grid Grid, occ models.Occurrence) ([]int, [][2]int) {
	slotsPerDay := grid.SlotsPerDay()
	var starts []int
	var startDays [][2]int
	for s := 0; s <= grid.TotalSlots()-occ.Slots; s++ {
		if s/slotsPerDay != (s+occ.Slots-1)/slotsPerDay {
			continue
		}
		if occ.Slots >= 2 && s%2 != 0 {
			continue
		}
		starts = append(starts, s)
		startDays = append(startDays, [2]int{s, s / slotsPerDay})
	}
	return starts, startDays
}

// Precheck validates every occurrence statically before search: a session
// with no admissible room, no qualified instructor, or no legal start cannot
// be placed and is reported as an input error.
func Precheck(cat *catalog.Catalog, grid Grid, occurrences []models.Occurrence) []models.InputErrorDetail {
	var errs []models.InputErrorDetail
	for _, occ := range occurrences {
		if starts, _ := StartCandidates(grid, occ); len(starts) == 0 {
			errs = append(errs, models.InputErrorDetail{
				Ref:     occ.ID,
				Message: fmt.Sprintf("session of %d sub-slots does not fit into a %d sub-slot day", occ.Slots, grid.SlotsPerDay()),
			})
			continue
		}
		if occ.Type == models.SessionLab && occ.LabType == "" {
			errs = append(errs, models.InputErrorDetail{
				Ref:     occ.ID,
				Message: "lab_type not specified in course definition (required for Lab)",
			})
			continue
		}
		if len(RoomCandidates(cat, occ)) == 0 {
			errs = append(errs, models.InputErrorDetail{
				Ref:     occ.ID,
				Message: "no compatible room (type/capacity)",
			})
		}
		if occ.HasInstructor && len(InstructorCandidates(cat, occ)) == 0 {
			errs = append(errs, models.InputErrorDetail{
				Ref:     occ.ID,
				Message: "no qualified instructor (role/qualification) found",
			})
		}
	}
	return errs
}

// BuildDomains computes the explicit domains for every occurrence. Call only
// after Precheck reported no errors.
func BuildDomains(cat *catalog.Catalog, grid Grid, occurrences []models.Occurrence) []Domain {
	domains := make([]Domain, len(occurrences))
	for i, occ := range occurrences {
		starts, startDays := StartCandidates(grid, occ)
		domains[i] = Domain{
			Starts:      starts,
			StartDays:   startDays,
			Rooms:       RoomCandidates(cat, occ),
			Instructors: InstructorCandidates(cat, occ),
		}
	}
	return domains
}
