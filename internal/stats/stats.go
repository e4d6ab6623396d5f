package stats

import (
	"sort"
	"time"

	"github.com/Zuo-Peng/whatsapp-chat-viz/internal/parse"
)

type ParticipantCount struct {
	Name  string
	Count int
}

type DayCount struct {
	Day   time.Time // midnight, local
	Count int
}

// Summary holds the headline numbers for a chat. Dateless messages
// count toward the totals but stay out of the time series.
type Summary struct {
	Total        int
	System       int
	Media        int
	Participants []ParticipantCount // most messages first
	Days         int                // distinct days with traffic
	First, Last  time.Time
	Daily        []DayCount // chronological, days with traffic only
	Heatmap      [7][24]int // weekday x hour, Monday row first
}

// WeekdayNames labels the heatmap rows.
var WeekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// mondayIndex maps Go's Sunday-first weekday to a Monday-first row.
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func Compute(msgs []parse.Message) Summary {
	var s Summary
	s.Total = len(msgs)

	days := make(map[time.Time]int)
	senders := make(map[string]int)

	for _, m := range msgs {
		if m.System {
			s.System++
		}
		if m.Media {
			s.Media++
		}
		if !m.System && m.Sender != "" {
			senders[m.Sender]++
		}

		if m.Timestamp.IsZero() {
			continue
		}
		if s.First.IsZero() || m.Timestamp.Before(s.First) {
			s.First = m.Timestamp
		}
		if m.Timestamp.After(s.Last) {
			s.Last = m.Timestamp
		}
		t := m.Timestamp
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		days[day]++
		s.Heatmap[mondayIndex(t.Weekday())][t.Hour()]++
	}

	s.Days = len(days)
	s.Daily = make([]DayCount, 0, len(days))
	for d, n := range days {
		s.Daily = append(s.Daily, DayCount{Day: d, Count: n})
	}
	sort.Slice(s.Daily, func(i, j int) bool {
		return s.Daily[i].Day.Before(s.Daily[j].Day)
	})

	s.Participants = make([]ParticipantCount, 0, len(senders))
	for name, n := range senders {
		s.Participants = append(s.Participants, ParticipantCount{Name: name, Count: n})
	}
	sort.Slice(s.Participants, func(i, j int) bool {
		a, b := s.Participants[i], s.Participants[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})

	return s
}

// MaxDaily returns the busiest day's count, for bar scaling.
func (s Summary) MaxDaily() int {
	max := 0
	for _, d := range s.Daily {
		if d.Count > max {
			max = d.Count
		}
	}
	return max
}

// MaxHour returns the hottest heatmap cell, for shade scaling.
func (s Summary) MaxHour() int {
	max := 0
	for _, row := range s.Heatmap {
		for _, n := range row {
			if n > max {
				max = n
			}
		}
	}
	return max
}
