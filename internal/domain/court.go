package domain

import "time"

// Case is a judicial/administrative proceeding. Other records reference a
// case through an optional CaseID; deleting a child never touches the case.
type Case struct {
	Base
	ProcessNumber string     `json:"process_number" gorm:"type:varchar(64);not null;uniqueIndex" binding:"required"`
	Subject       string     `json:"subject"        gorm:"type:varchar(255);not null" binding:"required"`
	Plaintiff     string     `json:"plaintiff"      gorm:"type:varchar(255)"`
	Defendant     string     `json:"defendant"      gorm:"type:varchar(255)"`
	Court         string     `json:"court"          gorm:"type:varchar(128)"`
	FiledOn       *time.Time `json:"filed_on"`
	Notes         string     `json:"notes"          gorm:"type:text"`
}

// TableName returns the database table name for Case.
func (Case) TableName() string { return "cases" }

// Filing records a document or petition registered against a case.
type Filing struct {
	Base
	CaseID      *string    `json:"case_id"     gorm:"type:char(36);index"`
	FilingType  string     `json:"filing_type" gorm:"type:varchar(64);not null" binding:"required"`
	FiledOn     *time.Time `json:"filed_on"`
	Protocol    string     `json:"protocol"    gorm:"type:varchar(64)"`
	Description string     `json:"description" gorm:"type:text"`
}

// TableName returns the database table name for Filing.
func (Filing) TableName() string { return "filings" }

// Dispatch is an order issued on a case, optionally with a compliance deadline.
type Dispatch struct {
	Base
	CaseID       *string    `json:"case_id"       gorm:"type:char(36);index"`
	DispatchType string     `json:"dispatch_type" gorm:"type:varchar(64);not null" binding:"required"`
	Content      string     `json:"content"       gorm:"type:text;not null" binding:"required"`
	IssuedOn     *time.Time `json:"issued_on"`
	Deadline     *time.Time `json:"deadline"`
	Responsible  string     `json:"responsible"   gorm:"type:varchar(128)"`
}

// TableName returns the database table name for Dispatch.
func (Dispatch) TableName() string { return "dispatches" }

// DispatchCompliance tracks fulfilment of a dispatch.
type DispatchCompliance struct {
	Base
	CaseID         *string    `json:"case_id"         gorm:"type:char(36);index"`
	DispatchID     *string    `json:"dispatch_id"     gorm:"type:char(36);index"`
	ComplianceDate *time.Time `json:"compliance_date"`
	Action         string     `json:"action"          gorm:"type:varchar(255);not null" binding:"required"`
	Notes          string     `json:"notes"           gorm:"type:text"`
}

// TableName returns the database table name for DispatchCompliance.
func (DispatchCompliance) TableName() string { return "dispatch_compliances" }

// Fine is a monetary penalty imposed in a case. Amounts are integer cents.
type Fine struct {
	Base
	CaseID      *string    `json:"case_id"      gorm:"type:char(36);index"`
	Debtor      string     `json:"debtor"       gorm:"type:varchar(255);not null" binding:"required"`
	AmountCents int64      `json:"amount_cents" gorm:"not null" binding:"gte=0"`
	DueDate     *time.Time `json:"due_date"`
	Reason      string     `json:"reason"       gorm:"type:text"`
}

// TableName returns the database table name for Fine.
func (Fine) TableName() string { return "fines" }

// FineReduction is a request to lower a fine.
type FineReduction struct {
	Base
	CaseID              *string    `json:"case_id"               gorm:"type:char(36);index"`
	FineID              *string    `json:"fine_id"               gorm:"type:char(36);index"`
	OriginalAmountCents int64      `json:"original_amount_cents" gorm:"not null" binding:"gte=0"`
	RequestedCents      int64      `json:"requested_cents"       gorm:"not null" binding:"gte=0"`
	GrantedCents        *int64     `json:"granted_cents"`
	RequestedOn         *time.Time `json:"requested_on"`
	Justification       string     `json:"justification"         gorm:"type:text;not null" binding:"required"`
}

// TableName returns the database table name for FineReduction.
func (FineReduction) TableName() string { return "fine_reductions" }

// CaseRouting records the movement of a case between units.
type CaseRouting struct {
	Base
	CaseID   *string    `json:"case_id"   gorm:"type:char(36);index"`
	FromUnit string     `json:"from_unit" gorm:"type:varchar(128)"`
	ToUnit   string     `json:"to_unit"   gorm:"type:varchar(128);not null" binding:"required"`
	RoutedOn *time.Time `json:"routed_on"`
	Reason   string     `json:"reason"    gorm:"type:text"`
}

// TableName returns the database table name for CaseRouting.
func (CaseRouting) TableName() string { return "case_routings" }

// Hearing is a scheduled session for a case.
type Hearing struct {
	Base
	CaseID       *string    `json:"case_id"       gorm:"type:char(36);index"`
	ScheduledFor *time.Time `json:"scheduled_for" binding:"required"`
	Room         string     `json:"room"          gorm:"type:varchar(64)"`
	Presiding    string     `json:"presiding"     gorm:"type:varchar(128)"`
	Notes        string     `json:"notes"         gorm:"type:text"`
}

// TableName returns the database table name for Hearing.
func (Hearing) TableName() string { return "hearings" }
