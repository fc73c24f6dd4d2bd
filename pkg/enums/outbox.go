package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateCertificate      OutboxAggregateType = "certificate"
	AggregateSettlement       OutboxAggregateType = "settlement"
	AggregatePlatformSettings OutboxAggregateType = "platform_settings"
	AggregateCourse           OutboxAggregateType = "course"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateCertificate,
	AggregateSettlement,
	AggregatePlatformSettings,
	AggregateCourse,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventCertificateMinted      OutboxEventType = "certificate_minted"
	EventCertificateItemAdded   OutboxEventType = "certificate_item_added"
	EventCertificateRefreshed   OutboxEventType = "certificate_refreshed"
	EventCertificateRevoked     OutboxEventType = "certificate_revoked"
	EventPaymentSettled         OutboxEventType = "payment_settled"
	EventPlatformConfigChanged  OutboxEventType = "platform_config_changed"
	EventPlatformPauseToggled   OutboxEventType = "platform_pause_toggled"
	EventCoursePriceOverrideSet OutboxEventType = "course_price_override_set"
)

var validOutboxEventTypes = []OutboxEventType{
	EventCertificateMinted,
	EventCertificateItemAdded,
	EventCertificateRefreshed,
	EventCertificateRevoked,
	EventPaymentSettled,
	EventPlatformConfigChanged,
	EventPlatformPauseToggled,
	EventCoursePriceOverrideSet,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
