package domain

type RegistrationStatus string

const (
	RegistrationPreliminary     RegistrationStatus = "PRELIMINARY"
	RegistrationConfirmed       RegistrationStatus = "CONFIRMED"
	RegistrationRefundRequested RegistrationStatus = "REFUND_REQUESTED"
	RegistrationRefunded        RegistrationStatus = "REFUNDED"
	RegistrationCancelled       RegistrationStatus = "CANCELLED"
)

// IsActive reports whether a registration in this status holds seats.
func (s RegistrationStatus) IsActive() bool {
	switch s {
	case RegistrationPreliminary, RegistrationConfirmed, RegistrationRefundRequested:
		return true
	}
	return false
}

func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationPreliminary, RegistrationConfirmed, RegistrationRefundRequested,
		RegistrationRefunded, RegistrationCancelled:
		return true
	}
	return false
}

type registrationAction string

const (
	actionCompletePayment registrationAction = "complete payment"
	actionFailPayment     registrationAction = "fail payment"
	actionCancel          registrationAction = "cancel"
	actionRequestRefund   registrationAction = "request refund"
	actionWithdrawRefund  registrationAction = "withdraw refund request"
	actionCompleteRefund  registrationAction = "complete refund"
)

var registrationTransitions = map[RegistrationStatus]map[registrationAction]RegistrationStatus{
	RegistrationPreliminary: {
		actionCompletePayment: RegistrationConfirmed,
		actionFailPayment:     RegistrationCancelled,
		actionCancel:          RegistrationCancelled,
	},
	RegistrationConfirmed: {
		actionRequestRefund: RegistrationRefundRequested,
		actionCancel:        RegistrationCancelled,
	},
	RegistrationRefundRequested: {
		actionWithdrawRefund: RegistrationConfirmed,
		actionCompleteRefund: RegistrationRefunded,
	},
}

func nextRegistrationStatus(from RegistrationStatus, action registrationAction) (RegistrationStatus, error) {
	if to, ok := registrationTransitions[from][action]; ok {
		return to, nil
	}
	return from, conflictError("Cannot %s for registration with status %s", action, from)
}
