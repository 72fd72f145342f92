package audithook

// Action constants for audit events.
const (
	// Transfer actions
	ActionTransferCommitted = "transfer.committed"
	ActionTransferDeclined  = "transfer.declined"

	// Allowance actions
	ActionApprovalChanged = "approval.changed"

	// Supply actions
	ActionSupplyMinted = "supply.minted"
	ActionSupplyBurned = "supply.burned"

	// Administration actions
	ActionMintAgentChanged     = "mint_agent.changed"
	ActionOwnershipTransferred = "ownership.transferred"
)

// Resource constants for audit events.
const (
	ResourceTransfer  = "transfer"
	ResourceAllowance = "allowance"
	ResourceSupply    = "supply"
	ResourceAdmin     = "admin"
)

// Category constants for audit events.
const (
	CategoryLedger = "ledger"
	CategoryAccess = "access"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDenied  = "denied"
)
