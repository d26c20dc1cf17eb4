package models

import "fmt"

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

func (s Status) String() string { return string(s) }

// ParseStatus accepts any status known to the system; whether closed is in
// play is decided by the lifecycle machine.
func ParseStatus(value string) (Status, error) {
	switch s := Status(value); s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return s, nil
	}
	return "", fmt.Errorf("invalid status %q", value)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities for sorting, low first.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	}
	return 0
}

type Category string

const (
	CategoryHardware Category = "hardware"
	CategorySoftware Category = "software"
	CategoryNetwork  Category = "network"
	CategoryOther    Category = "other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryHardware, CategorySoftware, CategoryNetwork, CategoryOther:
		return true
	}
	return false
}

// TicketType is the kind of field visit requested.
type TicketType string

const (
	TicketTypePreventive              TicketType = "preventive_maintenance"
	TicketTypeCorrective              TicketType = "corrective_maintenance"
	TicketTypeInstallation            TicketType = "installation"
	TicketTypeCorrectiveAndPreventive TicketType = "corrective_and_preventive"
)

func (t TicketType) IsValid() bool {
	switch t {
	case TicketTypePreventive, TicketTypeCorrective, TicketTypeInstallation, TicketTypeCorrectiveAndPreventive:
		return true
	}
	return false
}

// Equipment is the equipment category a ticket is about (ticketDescription).
type Equipment string

const (
	EquipmentMechanicalLock Equipment = "mechanical_lock"
	EquipmentElectronicLock Equipment = "electronic_lock"
	EquipmentAccessControl  Equipment = "access_control"
	EquipmentCamera         Equipment = "camera"
	EquipmentAlarm          Equipment = "alarm"
	EquipmentIntercom       Equipment = "intercom"
	EquipmentOther          Equipment = "other"
)

func (e Equipment) IsValid() bool {
	switch e {
	case EquipmentMechanicalLock, EquipmentElectronicLock, EquipmentAccessControl,
		EquipmentCamera, EquipmentAlarm, EquipmentIntercom, EquipmentOther:
		return true
	}
	return false
}
