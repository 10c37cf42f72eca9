// Package dashboard derives the command-overview summary from the patient,
// alert and task collections. Build is pure and synchronous; it holds no
// state of its own and is recomputed whenever any source collection changes.
package dashboard

import (
	"math"
	"sort"
	"time"

	"stealthcompany.com/sentinelcare/internal/backend"
)

// recentLimit caps the recency-ordered views
const recentLimit = 5

// RiskSlice is one segment of the risk mix
type RiskSlice struct {
	Label   backend.Severity `json:"label"`
	Count   int              `json:"count"`
	Percent int              `json:"percent"`
}

// Summary is the derived dashboard view
type Summary struct {
	MonitoredPatients int             `json:"monitored_patients"`
	HighAlerts        int             `json:"high_alerts"`
	OpenTasks         int             `json:"open_tasks"`
	TotalAlerts       int             `json:"total_alerts"`
	RiskMix           []RiskSlice     `json:"risk_mix"`
	RecentAlerts      []backend.Alert `json:"recent_alerts"`
	RecentTasks       []backend.Task  `json:"recent_tasks"`
}

// Build computes the summary from the three source collections
func Build(patients []backend.Patient, alerts []backend.Alert, tasks []backend.Task) Summary {
	summary := Summary{
		TotalAlerts: len(alerts),
	}

	for _, p := range patients {
		if p.Monitoring {
			summary.MonitoredPatients++
		}
	}
	for _, a := range alerts {
		if a.Severity == backend.SeverityHigh {
			summary.HighAlerts++
		}
	}
	for _, t := range tasks {
		if t.Status != backend.TaskStatusDone {
			summary.OpenTasks++
		}
	}

	summary.RiskMix = riskMix(patients)
	summary.RecentAlerts = recentAlerts(alerts)
	summary.RecentTasks = recentTasks(tasks)
	return summary
}

// riskMix counts patients per risk label as a percentage of the roster.
// The denominator is floored at 1 so an empty roster yields zero percentages
// instead of a division by zero.
func riskMix(patients []backend.Patient) []RiskSlice {
	counts := map[backend.Severity]int{}
	for _, p := range patients {
		counts[p.Risk]++
	}

	total := len(patients)
	if total < 1 {
		total = 1
	}

	labels := []backend.Severity{backend.SeverityHigh, backend.SeverityModerate, backend.SeverityNormal}
	mix := make([]RiskSlice, 0, len(labels))
	for _, label := range labels {
		mix = append(mix, RiskSlice{
			Label:   label,
			Count:   counts[label],
			Percent: int(math.Round(float64(counts[label]) / float64(total) * 100)),
		})
	}
	return mix
}

func recentAlerts(alerts []backend.Alert) []backend.Alert {
	recent := make([]backend.Alert, len(alerts))
	copy(recent, alerts)

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})

	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	return recent
}

// taskRecency is the task's update time, falling back to its creation time
func taskRecency(t backend.Task) time.Time {
	if t.UpdatedAt != nil {
		return *t.UpdatedAt
	}
	return t.CreatedAt
}

func recentTasks(tasks []backend.Task) []backend.Task {
	recent := make([]backend.Task, len(tasks))
	copy(recent, tasks)

	sort.SliceStable(recent, func(i, j int) bool {
		return taskRecency(recent[i]).After(taskRecency(recent[j]))
	})

	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	return recent
}
