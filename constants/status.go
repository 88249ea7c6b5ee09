package constants

// RiskStatus is the canonical traffic-light status for an engagement.
type RiskStatus string

// Stable values (store these exact strings in DB).
const (
	StatusGreen  RiskStatus = "GREEN"
	StatusYellow RiskStatus = "YELLOW"
	StatusRed    RiskStatus = "RED"
)

// HealthStatus summarizes the action-item health of an engagement.
type HealthStatus string

const (
	HealthHealthy HealthStatus = "HEALTHY"
	HealthAtRisk  HealthStatus = "AT_RISK"
)

// Priority is the canonical priority for an action item.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// ItemStatus is the canonical lifecycle status for an action item.
type ItemStatus string

const (
	ItemPending    ItemStatus = "PENDING"
	ItemInProgress ItemStatus = "IN_PROGRESS"
	ItemCompleted  ItemStatus = "COMPLETED"
)

// RiskLevel grades an individual action item.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)
