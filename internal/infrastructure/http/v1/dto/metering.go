package dto

import (
	"fuelbook/internal/core/types"
	"fuelbook/internal/domain/metering"
)

// CreateMeterRequest attaches a new pump meter to a tank.
type CreateMeterRequest struct {
	TankID      string `json:"tankId" binding:"required"`
	MeterNumber string `json:"meterNumber" binding:"required"`
	RecordedBy  string `json:"recordedBy" binding:"required"`
}

// ToInput converts the request to a domain input.
func (r *CreateMeterRequest) ToInput() (metering.MeterInput, error) {
	tankID, err := parseID("tankId", r.TankID)
	if err != nil {
		return metering.MeterInput{}, err
	}
	recordedBy, err := parseID("recordedBy", r.RecordedBy)
	if err != nil {
		return metering.MeterInput{}, err
	}

	return metering.MeterInput{
		TankID:      tankID,
		MeterNumber: r.MeterNumber,
		RecordedBy:  recordedBy,
	}, nil
}

// CreateReadingRequest records one day's cumulative counter pair.
type CreateReadingRequest struct {
	MeterID              string       `json:"meterId" binding:"required"`
	ReadingDate          string       `json:"readingDate" binding:"required"`
	OpeningReadingLiters types.Volume `json:"openingReadingLiters"`
	ClosingReadingLiters types.Volume `json:"closingReadingLiters"`
	RecordedBy           string       `json:"recordedBy" binding:"required"`
}

// ToInput converts the request to a domain input.
func (r *CreateReadingRequest) ToInput() (metering.ReadingInput, error) {
	meterID, err := parseID("meterId", r.MeterID)
	if err != nil {
		return metering.ReadingInput{}, err
	}
	recordedBy, err := parseID("recordedBy", r.RecordedBy)
	if err != nil {
		return metering.ReadingInput{}, err
	}
	date, err := parseDate("readingDate", r.ReadingDate)
	if err != nil {
		return metering.ReadingInput{}, err
	}

	return metering.ReadingInput{
		MeterID:    meterID,
		Date:       date,
		Opening:    r.OpeningReadingLiters,
		Closing:    r.ClosingReadingLiters,
		RecordedBy: recordedBy,
	}, nil
}

// CreateDipRequest records a physical tank measurement.
type CreateDipRequest struct {
	TankID       string       `json:"tankId" binding:"required"`
	ReadingDate  string       `json:"readingDate" binding:"required"`
	ReadingType  string       `json:"readingType" binding:"required"`
	VolumeLiters types.Volume `json:"volumeLiters"`
	RecordedBy   string       `json:"recordedBy" binding:"required"`
}

// ToInput converts the request to a domain input.
func (r *CreateDipRequest) ToInput() (metering.DipInput, error) {
	tankID, err := parseID("tankId", r.TankID)
	if err != nil {
		return metering.DipInput{}, err
	}
	recordedBy, err := parseID("recordedBy", r.RecordedBy)
	if err != nil {
		return metering.DipInput{}, err
	}
	date, err := parseDate("readingDate", r.ReadingDate)
	if err != nil {
		return metering.DipInput{}, err
	}

	return metering.DipInput{
		TankID:     tankID,
		Date:       date,
		Type:       metering.DipReadingType(r.ReadingType),
		Volume:     r.VolumeLiters,
		RecordedBy: recordedBy,
	}, nil
}
