package dto

import "time"

type CreateVisitorRequest struct {
	// Срок действия в секундах. Не задан - бессрочно
	ValidForSec *int64 `json:"valid_for_sec,omitempty" validate:"omitempty,min=0"`
}

func (r CreateVisitorRequest) ValidFor() *time.Duration {
	if r.ValidForSec == nil {
		return nil
	}

	d := time.Duration(*r.ValidForSec) * time.Second

	return &d
}

type VisitorResponse struct {
	UUID      string     `json:"uuid"`
	ValidTill *time.Time `json:"valid_till,omitempty"`
}
