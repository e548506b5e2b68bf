package domain

// Status is the order state as the API reports it. Values outside the known list are kept verbatim.
type Status string

const (
	StatusPendingConfirmation Status = "Por Confirmar"
	StatusPendingVerification Status = "Pendiente de Verificación"
	StatusConfirmed           Status = "Confirmado"
	StatusInProcess           Status = "En Proceso"
	StatusInTransit           Status = "En Tránsito"
	StatusDelivered           Status = "Entregado"
	StatusFinalized           Status = "Finalizado"
)

// Statuses is the admin picklist in lifecycle order.
var Statuses = []Status{
	StatusPendingConfirmation,
	StatusPendingVerification,
	StatusConfirmed,
	StatusInProcess,
	StatusInTransit,
	StatusDelivered,
	StatusFinalized,
}

var statusLabels = map[Status]string{
	StatusPendingConfirmation: "Por Confirmar Pago",
	StatusPendingVerification: "Pendiente de Verificación",
	StatusConfirmed:           "Pago Confirmado",
	StatusInProcess:           "En Proceso de Envío",
	StatusInTransit:           "En Tránsito",
	StatusDelivered:           "Entregado",
	StatusFinalized:           "Finalizado",
}

var statusTones = map[Status]string{
	StatusPendingConfirmation: "yellow",
	StatusPendingVerification: "orange",
	StatusConfirmed:           "blue",
	StatusInProcess:           "purple",
	StatusInTransit:           "indigo",
	StatusDelivered:           "green",
	StatusFinalized:           "green",
}

// Known reports whether s is one of the picklist values.
func (s Status) Known() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the display name. Unknown statuses render as received.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Tone is the badge color of the status.
func (s Status) Tone() string {
	if t, ok := statusTones[s]; ok {
		return t
	}
	return "gray"
}

// NeedsReview marks rows the admin should look at first.
func (s Status) NeedsReview() bool {
	return s == StatusPendingVerification
}

// Stage is the customer-facing step of an order.
type Stage string

const (
	StageQuoteAccepted   Stage = "QuoteAccepted"
	StageOrderCreated    Stage = "OrderCreated"
	StageAwaitingPayment Stage = "AwaitingPayment"
	StagePaymentReported Stage = "PaymentReported"
	StageInTransit       Stage = "InTransit"
	StageDelivered       Stage = "Delivered"
	StageFinalized       Stage = "Finalized"
)

// Stage derives the customer step from the server status. Unknown statuses have no stage.
func (s Status) Stage() Stage {
	switch s {
	case StatusPendingConfirmation:
		return StageAwaitingPayment
	case StatusPendingVerification, StatusConfirmed:
		return StagePaymentReported
	case StatusInProcess, StatusInTransit:
		return StageInTransit
	case StatusDelivered:
		return StageDelivered
	case StatusFinalized:
		return StageFinalized
	default:
		return ""
	}
}

// AcceptsPayment reports whether the customer may still report a payment.
func (s Status) AcceptsPayment() bool {
	return s == StatusPendingConfirmation
}
