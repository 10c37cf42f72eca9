// Package roster holds the patient and task collections and applies operator
// mutations against the backend. The monitoring toggle is a transaction:
// tentative local flip, remote write, commit on the server echo or roll back
// to the pre-transaction value on failure.
package roster

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/sentinelcare/internal/backend"
)

// Backend is the slice of the API the roster needs
type Backend interface {
	Patients(ctx context.Context) ([]backend.Patient, error)
	CreatePatient(ctx context.Context, payload backend.PatientCreate) (backend.Patient, error)
	SetPatientMonitoring(ctx context.Context, patientID string, monitoring bool) (backend.Patient, error)
	Tasks(ctx context.Context, patientID string) ([]backend.Task, error)
	CreateTask(ctx context.Context, payload backend.TaskCreate) (backend.Task, error)
	UpdateTask(ctx context.Context, taskID string, payload backend.TaskUpdate) (backend.Task, error)
}

// Roster is the client-side collection state
type Roster struct {
	api Backend

	mu       sync.RWMutex
	patients []backend.Patient
	tasks    []backend.Task
}

// New creates an empty roster over the given backend
func New(api Backend) *Roster {
	return &Roster{api: api}
}

// Refresh reloads both collections from the backend
func (r *Roster) Refresh(ctx context.Context) error {
	patients, err := r.api.Patients(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch patients: %w", err)
	}
	tasks, err := r.api.Tasks(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to fetch tasks: %w", err)
	}

	r.mu.Lock()
	r.patients = patients
	r.tasks = tasks
	r.mu.Unlock()

	log.Debug().
		Int("patients", len(patients)).
		Int("tasks", len(tasks)).
		Msg("Roster refreshed")
	return nil
}

// Patients returns a copy of the patient collection
func (r *Roster) Patients() []backend.Patient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]backend.Patient, len(r.patients))
	copy(out, r.patients)
	return out
}

// Tasks returns a copy of the task collection
func (r *Roster) Tasks() []backend.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]backend.Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// CreatePatient registers a patient and prepends the created record
func (r *Roster) CreatePatient(ctx context.Context, payload backend.PatientCreate) (backend.Patient, error) {
	created, err := r.api.CreatePatient(ctx, payload)
	if err != nil {
		return backend.Patient{}, err
	}

	r.mu.Lock()
	r.patients = append([]backend.Patient{created}, r.patients...)
	r.mu.Unlock()
	return created, nil
}

// ToggleMonitoring flips a patient's monitoring flag optimistically. The
// tentative flip is committed with the server-echoed record on success and
// rolled back to the pre-transaction snapshot on failure.
func (r *Roster) ToggleMonitoring(ctx context.Context, patientID string) (backend.Patient, error) {
	r.mu.Lock()
	idx := -1
	for i, p := range r.patients {
		if p.ID == patientID {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return backend.Patient{}, fmt.Errorf("unknown patient %q", patientID)
	}
	prev := r.patients[idx]
	next := !prev.Monitoring
	r.patients[idx].Monitoring = next
	r.mu.Unlock()

	updated, err := r.api.SetPatientMonitoring(ctx, patientID, next)
	if err != nil {
		// Roll back the tentative flip
		r.mu.Lock()
		for i, p := range r.patients {
			if p.ID == patientID {
				r.patients[i] = prev
				break
			}
		}
		r.mu.Unlock()

		log.Warn().Err(err).Str("patient_id", patientID).Msg("Monitoring toggle rolled back")
		return backend.Patient{}, err
	}

	r.mu.Lock()
	for i, p := range r.patients {
		if p.ID == patientID {
			r.patients[i] = updated
			break
		}
	}
	r.mu.Unlock()
	return updated, nil
}

// CreateTask creates a task and prepends the created record
func (r *Roster) CreateTask(ctx context.Context, payload backend.TaskCreate) (backend.Task, error) {
	created, err := r.api.CreateTask(ctx, payload)
	if err != nil {
		return backend.Task{}, err
	}

	r.mu.Lock()
	r.tasks = append([]backend.Task{created}, r.tasks...)
	r.mu.Unlock()
	return created, nil
}

// UpdateTaskStatus patches a task's status and replaces the record in place
func (r *Roster) UpdateTaskStatus(ctx context.Context, taskID, status string) (backend.Task, error) {
	updated, err := r.api.UpdateTask(ctx, taskID, backend.TaskUpdate{Status: &status})
	if err != nil {
		return backend.Task{}, err
	}

	r.mu.Lock()
	for i, t := range r.tasks {
		if t.ID == taskID {
			r.tasks[i] = updated
			break
		}
	}
	r.mu.Unlock()
	return updated, nil
}
