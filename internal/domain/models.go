package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                string          `json:"id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Category          string          `json:"category,omitempty"`
	Barcode           string          `json:"barcode,omitempty"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	Expiry            *time.Time      `json:"expiry,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type ProductCreateRequest struct {
	Code              string          `json:"code"`
	Name              string          `json:"name" validate:"required"`
	Category          string          `json:"category"`
	Barcode           string          `json:"barcode"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	InitialStock      int             `json:"initial_stock"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	Expiry            string          `json:"expiry"`
}

type ProductUpdateRequest struct {
	Name              *string          `json:"name,omitempty"`
	Category          *string          `json:"category,omitempty"`
	Barcode           *string          `json:"barcode,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	Cost              *decimal.Decimal `json:"cost,omitempty"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty"`
	Expiry            *string          `json:"expiry,omitempty"`
}

type Customer struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Phone            string          `json:"phone"`
	Email            string          `json:"email,omitempty"`
	Type             string          `json:"type,omitempty"`
	Address          string          `json:"address,omitempty"`
	City             string          `json:"city,omitempty"`
	Zip              string          `json:"zip,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	PaymentTermsDays int             `json:"payment_terms_days"`

	// Derived fields. Recomputed from invoices and payments, never hand-edited.
	TotalPurchases   decimal.Decimal `json:"total_purchases"`
	DueAmount        decimal.Decimal `json:"due_amount"`
	LastPurchaseDate *time.Time      `json:"last_purchase_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CustomerCreateRequest struct {
	Name             string          `json:"name" validate:"required"`
	Phone            string          `json:"phone" validate:"required"`
	Email            string          `json:"email" validate:"omitempty,email"`
	Type             string          `json:"type"`
	Address          string          `json:"address"`
	City             string          `json:"city"`
	Zip              string          `json:"zip"`
	Notes            string          `json:"notes"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	PaymentTermsDays int             `json:"payment_terms_days"`
}

type CustomerUpdateRequest struct {
	Name             *string          `json:"name,omitempty"`
	Phone            *string          `json:"phone,omitempty"`
	Email            *string          `json:"email,omitempty"`
	Type             *string          `json:"type,omitempty"`
	Address          *string          `json:"address,omitempty"`
	City             *string          `json:"city,omitempty"`
	Zip              *string          `json:"zip,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	CreditLimit      *decimal.Decimal `json:"credit_limit,omitempty"`
	PaymentTermsDays *int             `json:"payment_terms_days,omitempty"`
}

type InvoiceItem struct {
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name,omitempty"`
	ProductCode     string          `json:"product_code,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        int             `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

type Invoice struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	Date           time.Time       `json:"date"`
	CustomerID     string          `json:"customer_id,omitempty"`
	CustomerName   string          `json:"customer_name,omitempty"`
	CustomerPhone  string          `json:"customer_phone,omitempty"`
	Items          []InvoiceItem   `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	AmountReceived decimal.Decimal `json:"amount_received"`
	Change         decimal.Decimal `json:"change"`
	Status         string          `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	CreatedBy      string          `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type InvoiceLineRequest struct {
	ProductID       string           `json:"product_id" validate:"required"`
	Quantity        int              `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
}

type InvoiceCreateRequest struct {
	CustomerID     string               `json:"customer_id"`
	Date           string               `json:"date"`
	Items          []InvoiceLineRequest `json:"items" validate:"required,min=1"`
	DiscountType   string               `json:"discount_type"`
	DiscountValue  decimal.Decimal      `json:"discount_value"`
	TaxRate        decimal.Decimal      `json:"tax_rate"`
	AmountReceived decimal.Decimal      `json:"amount_received"`
	Notes          string               `json:"notes"`
	CreatedBy      string               `json:"created_by"`
}

// Payment is a credit against a customer's balance. InvoiceID is set on
// payments recorded automatically for cash tendered at the register; manual
// payments leave it blank.
type Payment struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	InvoiceID  string          `json:"invoice_id,omitempty"`
	Date       time.Time       `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type PaymentCreateRequest struct {
	CustomerID string          `json:"customer_id" validate:"required"`
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference"`
	Notes      string          `json:"notes"`
}

// CustomerSummary is the CustomerLedger projection over invoices and payments.
type CustomerSummary struct {
	CustomerID       string          `json:"customer_id"`
	TotalPurchases   decimal.Decimal `json:"total_purchases"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	DueAmount        decimal.Decimal `json:"due_amount"`
	InvoiceCount     int             `json:"invoice_count"`
	LastPurchaseDate *time.Time      `json:"last_purchase_date,omitempty"`
	Overdue          bool            `json:"overdue"`
	Active           bool            `json:"active"`
}

type StatementRow struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

type Statement struct {
	CustomerID     string          `json:"customer_id"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Rows           []StatementRow  `json:"rows"`
	TotalDebits    decimal.Decimal `json:"total_debits"`
	TotalCredits   decimal.Decimal `json:"total_credits"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

type Settings struct {
	ShopName          string          `json:"shop_name,omitempty"`
	ShopPhone         string          `json:"shop_phone,omitempty"`
	ShopEmail         string          `json:"shop_email,omitempty"`
	ShopAddress       string          `json:"shop_address,omitempty"`
	Currency          string          `json:"currency"`
	DateFormat        string          `json:"date_format,omitempty"`
	DefaultTaxRate    decimal.Decimal `json:"default_tax_rate"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	BackupEnabled     bool            `json:"backup_enabled"`
	BackupFrequency   string          `json:"backup_frequency,omitempty"`
	BackupTimeOfDay   string          `json:"backup_time_of_day,omitempty"`
}

// UserAccount is an internal persistence model; PasswordHash never leaves the store layer.
type UserAccount struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type SnapshotOptions struct {
	Products  bool `json:"products"`
	Customers bool `json:"customers"`
	Invoices  bool `json:"invoices"`
	Payments  bool `json:"payments"`
	Settings  bool `json:"settings"`
	Users     bool `json:"users"`
}

type SnapshotMetadata struct {
	Version   string          `json:"version"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Options   SnapshotOptions `json:"options"`
}

type SnapshotData struct {
	Products  []Product     `json:"products,omitempty"`
	Customers []Customer    `json:"customers,omitempty"`
	Invoices  []Invoice     `json:"invoices,omitempty"`
	Payments  []Payment     `json:"payments,omitempty"`
	Settings  *Settings     `json:"settings,omitempty"`
	Users     []UserAccount `json:"users,omitempty"`
}

type Snapshot struct {
	Metadata SnapshotMetadata `json:"metadata"`
	Data     SnapshotData     `json:"data"`
}

type BackupHistoryEntry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"`
	SizeBytes   int       `json:"size_bytes"`
	RecordCount int       `json:"record_count"`
	Status      string    `json:"status"`
}

const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusPartial   = "partial"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

const (
	DiscountTypeAbsolute = "absolute"
	DiscountTypePercent  = "percent"
)

const (
	SnapshotTypeFull      = "full"
	SnapshotTypeQuick     = "quick"
	SnapshotTypeScheduled = "scheduled"
	SnapshotTypeManual    = "manual"
)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

const (
	RoleAdmin    = "admin"
	RoleSalesman = "salesman"
)

const SnapshotVersion = "1.0"
