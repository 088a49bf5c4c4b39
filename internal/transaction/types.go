package transaction

type EventType string

const (
	AuthorizationActionRequired EventType = "AUTHORIZATION_ACTION_REQUIRED"
	AuthorizationAdjustment     EventType = "AUTHORIZATION_ADJUSTMENT"
	AuthorizationFailure        EventType = "AUTHORIZATION_FAILURE"
	AuthorizationRequest        EventType = "AUTHORIZATION_REQUEST"
	AuthorizationSuccess        EventType = "AUTHORIZATION_SUCCESS"
	CancelFailure               EventType = "CANCEL_FAILURE"
	CancelRequest               EventType = "CANCEL_REQUEST"
	CancelSuccess               EventType = "CANCEL_SUCCESS"
	ChargeActionRequired        EventType = "CHARGE_ACTION_REQUIRED"
	ChargeBack                  EventType = "CHARGE_BACK"
	ChargeFailure               EventType = "CHARGE_FAILURE"
	ChargeRequest               EventType = "CHARGE_REQUEST"
	ChargeSuccess               EventType = "CHARGE_SUCCESS"
	Info                        EventType = "INFO"
	RefundFailure               EventType = "REFUND_FAILURE"
	RefundRequest               EventType = "REFUND_REQUEST"
	RefundReverse               EventType = "REFUND_REVERSE"
	RefundSuccess               EventType = "REFUND_SUCCESS"
)

// EventTypes lists every normalized event type Saleor accepts.
var EventTypes = []EventType{
	AuthorizationActionRequired, AuthorizationAdjustment, AuthorizationFailure, AuthorizationRequest,
	AuthorizationSuccess, CancelFailure, CancelRequest, CancelSuccess, ChargeActionRequired, ChargeBack,
	ChargeFailure, ChargeRequest, ChargeSuccess, Info, RefundFailure, RefundRequest, RefundReverse,
	RefundSuccess,
}

type Action string

const (
	ActionCharge Action = "CHARGE"
	ActionRefund Action = "REFUND"
	ActionCancel Action = "CANCEL"
)

// FlowStrategy is chosen when the transaction is initialized and never changes afterwards.
type FlowStrategy string

const (
	FlowAuthorization FlowStrategy = "AUTHORIZATION"
	FlowCharge        FlowStrategy = "CHARGE"
)
