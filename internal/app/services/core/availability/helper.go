package availability

import (
	"time"

	"citamed-service/internal/app/models"
	"citamed-service/internal/pkg/constvars"
)

func clockToMinutes(clock string) int {
	parsed, err := time.Parse(constvars.ClockLayout, clock)
	if err != nil {
		return -1
	}
	return parsed.Hour()*60 + parsed.Minute()
}

func minutesToClock(minutes int) string {
	return time.Date(0, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC).Format(constvars.ClockLayout)
}

// activeSessionWindows combines the weekly template with the working-day
// record for the exact date. A half day runs only when both agree.
func activeSessionWindows(day models.DayWindows, workingDay models.WorkingDay) []sessionWindow {
	var windows []sessionWindow
	if day.MorningActive() && workingDay.MorningEnabled {
		windows = append(windows, sessionWindow{start: day.MorningStart, end: day.MorningEnd})
	}
	if day.AfternoonActive() && workingDay.AfternoonEnabled {
		windows = append(windows, sessionWindow{start: day.AfternoonStart, end: day.AfternoonEnd})
	}
	return windows
}

// availableUnitStarts walks a window in fixed duration steps and keeps the
// unit starts not already occupied. Occupancy is a single exact-match check
// because the unit granularity equals the booking granularity.
func availableUnitStarts(window sessionWindow, durationMinutes int, occupied map[string]bool) []string {
	start := clockToMinutes(window.start)
	end := clockToMinutes(window.end)
	if start < 0 || end < 0 || durationMinutes <= 0 {
		return nil
	}

	var starts []string
	for t := start; t+durationMinutes <= end; t += durationMinutes {
		clock := minutesToClock(t)
		if !occupied[clock] {
			starts = append(starts, clock)
		}
	}
	return starts
}

// contiguousRunStarts slides a window of unitCount over the free unit starts
// and keeps the starts whose run is truly contiguous: every adjacent pair
// separated by exactly one duration, no gaps from already-booked units.
func contiguousRunStarts(unitStarts []string, unitCount, durationMinutes int) []string {
	if unitCount <= 1 {
		return unitStarts
	}
	if len(unitStarts) < unitCount {
		return nil
	}

	var starts []string
	for i := 0; i+unitCount <= len(unitStarts); i++ {
		contiguous := true
		for j := i; j < i+unitCount-1; j++ {
			if clockToMinutes(unitStarts[j+1])-clockToMinutes(unitStarts[j]) != durationMinutes {
				contiguous = false
				break
			}
		}
		if contiguous {
			starts = append(starts, unitStarts[i])
		}
	}
	return starts
}
