package timetable

import (
	"sort"

	"github.com/noah-isme/uni-timetable-api/internal/catalog"
	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// Extract flattens the internal assignment into the external schedule shape:
// one record per (occurrence, contained section), ordered by day, start,
// course, and section.
func Extract(cat *catalog.Catalog, grid Grid, occurrences []models.Occurrence, assignments map[string]models.Assignment) []models.ScheduleRecord {
	type keyedRecord struct {
		day, start int
		record     models.ScheduleRecord
	}

	subslotsPerPeriod := grid.SubslotsPerPeriod()
	var keyed []keyedRecord

	for _, occ := range occurrences {
		assignment, ok := assignments[occ.ID]
		if !ok {
			continue
		}
		room, _ := cat.RoomByID(assignment.RoomID)
		durationPeriods := (occ.Slots + subslotsPerPeriod - 1) / subslotsPerPeriod

		for _, sectionID := range occ.Cohort {
			section, _ := cat.SectionByID(sectionID)
			keyed = append(keyed, keyedRecord{
				day:   assignment.Day,
				start: assignment.Start,
				record: models.ScheduleRecord{
					CourseID:        occ.CourseID,
					Type:            string(occ.Type),
					Day:             grid.DayName(assignment.Day),
					StartPeriod:     assignment.Start/subslotsPerPeriod + 1,
					StartSubSlot:    assignment.Start % subslotsPerPeriod,
					DurationPeriods: durationPeriods,
					DurationMinutes: occ.Slots * grid.BaseSlotMinutes,
					RoomID:          room.ID,
					RoomType:        string(room.Type),
					Building:        room.Building,
					InstructorID:    assignment.InstructorID,
					GroupID:         section.GroupID,
					SectionID:       sectionID,
					Year:            occ.Year,
					LabType:         occ.LabType,
					TimeSlot:        grid.TimeRange(assignment.Start, occ.Slots),
				},
			})
		}
	}

	sort.SliceStable(keyed, func(i, j int) bool {
		a, b := keyed[i], keyed[j]
		if a.day != b.day {
			return a.day < b.day
		}
		if a.start != b.start {
			return a.start < b.start
		}
		if a.record.CourseID != b.record.CourseID {
			return a.record.CourseID < b.record.CourseID
		}
		return a.record.SectionID < b.record.SectionID
	})

	records := make([]models.ScheduleRecord, len(keyed))
	for i, k := range keyed {
		records[i] = k.record
	}
	return records
}
