// Package maintenance
package maintenance

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusInProgress
	StatusCompleted
)

func (s TaskStatus) String() string {
	return [...]string{"Pending", "In Progress", "Completed"}[s]
}

func (s TaskStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *TaskStatus) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return s.Scan(v)
}

func (s *TaskStatus) Scan(i any) error {
	switch v := i.(type) {
	case string:
		switch v {
		case "Pending":
			*s = StatusPending
			return nil
		case "In Progress":
			*s = StatusInProgress
			return nil
		case "Completed":
			*s = StatusCompleted
			return nil
		}
	}
	return fmt.Errorf("invalid task status %v", i)
}

func (s TaskStatus) Value() (driver.Value, error) {
	return s.String(), nil
}

// Task is a service ticket tracked to completion by a technician. Completing
// a task resets the owning bike to Active with a full battery.
type Task struct {
	ID           uuid.UUID
	BikeID       uuid.UUID  `db:"bike_id"`
	TechnicianID *uuid.UUID `db:"technician_id"`
	Description  string
	Date         time.Time
	Status       TaskStatus
}
