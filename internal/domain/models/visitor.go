package models

import "time"

// Visitor временный доступ посетителя. TimeOut == nil - бессрочный
type Visitor struct {
	UUID    string     `json:"uuid" db:"uuid"`
	TimeOut *time.Time `json:"valid_till,omitempty" db:"time_out"`
}
