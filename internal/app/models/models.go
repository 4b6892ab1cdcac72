package models

// RoleType defines the actor role attached to a user account.
// REVIEWER covers scholarship-office staff, APPLICANT covers students.
type RoleType string

const (
	RoleReviewer  RoleType = "REVIEWER"
	RoleApplicant RoleType = "APPLICANT"
)

// AcademicCondition is the eligibility flag carried by imported rows.
// Only REGULAR students participate in the ranking.
type AcademicCondition string

const (
	ConditionRegular AcademicCondition = "REGULAR"
	ConditionFree    AcademicCondition = "FREE"
	ConditionLeave   AcademicCondition = "LEAVE"
)

// DocumentType identifies a class of evidence attached to a scholarship record.
type DocumentType string

const (
	DocumentBankCert         DocumentType = "BANK_CERT"
	DocumentContractUnsigned DocumentType = "CONTRACT_UNSIGNED"
	DocumentContractSigned   DocumentType = "CONTRACT_SIGNED"
	DocumentPaymentReceipt   DocumentType = "PAYMENT_RECEIPT"
)

// AllDocumentTypes lists every valid document type, used for request validation.
var AllDocumentTypes = []DocumentType{
	DocumentBankCert,
	DocumentContractUnsigned,
	DocumentContractSigned,
	DocumentPaymentReceipt,
}

// IsValid reports whether d is one of the known document types.
func (d DocumentType) IsValid() bool {
	for _, known := range AllDocumentTypes {
		if d == known {
			return true
		}
	}
	return false
}

// RejectionReason explains why a student was not selected during ranking.
type RejectionReason string

const (
	RejectionNotRegular  RejectionReason = "NOT_REGULAR"
	RejectionBelowCutoff RejectionReason = "BELOW_CUTOFF"
)
