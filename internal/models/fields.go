package models

import (
	"github.com/diewo77/gst-invoices/internal/money"
)

// InvoiceFields holds every free-text field of the invoice form. The yaml and
// json names double as the HTML form input names.
type InvoiceFields struct {
	// Seller
	SellerName    string `yaml:"sellerName" json:"sellerName"`
	SellerAddress string `yaml:"sellerAddress" json:"sellerAddress"`
	SellerGSTIN   string `yaml:"sellerGSTIN" json:"sellerGSTIN"`
	SellerState   string `yaml:"sellerState" json:"sellerState"`
	SellerEmail   string `yaml:"sellerEmail" json:"sellerEmail"`
	SellerPhone   string `yaml:"sellerPhone" json:"sellerPhone"`

	// Invoice details
	InvoiceNo       string `yaml:"invoiceNo" json:"invoiceNo"`
	InvoiceDate     string `yaml:"invoiceDate" json:"invoiceDate"`
	PaymentTerms    string `yaml:"paymentTerms" json:"paymentTerms"`
	SupplierRef     string `yaml:"supplierRef" json:"supplierRef"`
	BuyerOrderNo    string `yaml:"buyerOrderNo" json:"buyerOrderNo"`
	BuyerOrderDate  string `yaml:"buyerOrderDate" json:"buyerOrderDate"`
	DespatchThrough string `yaml:"despatchThrough" json:"despatchThrough"`
	Destination     string `yaml:"destination" json:"destination"`

	// Consignee (ship to)
	ConsigneeName    string `yaml:"consigneeName" json:"consigneeName"`
	ConsigneeAddress string `yaml:"consigneeAddress" json:"consigneeAddress"`
	ConsigneeGSTIN   string `yaml:"consigneeGSTIN" json:"consigneeGSTIN"`
	ConsigneeState   string `yaml:"consigneeState" json:"consigneeState"`

	// Buyer (bill to)
	BuyerName    string `yaml:"buyerName" json:"buyerName"`
	BuyerAddress string `yaml:"buyerAddress" json:"buyerAddress"`
	BuyerGSTIN   string `yaml:"buyerGSTIN" json:"buyerGSTIN"`
	BuyerState   string `yaml:"buyerState" json:"buyerState"`

	// Bank
	BankName   string `yaml:"bankName" json:"bankName"`
	AccountNo  string `yaml:"accountNo" json:"accountNo"`
	IFSCCode   string `yaml:"ifscCode" json:"ifscCode"`
	BranchName string `yaml:"branchName" json:"branchName"`

	Declaration  string `yaml:"declaration" json:"declaration"`
	Jurisdiction string `yaml:"jurisdiction" json:"jurisdiction"`

	// Tax, in percent
	CGSTRate string `yaml:"cgstRate" json:"cgstRate"`
	SGSTRate string `yaml:"sgstRate" json:"sgstRate"`
	IGSTRate string `yaml:"igstRate" json:"igstRate"`
	RoundOff bool   `yaml:"roundOff" json:"roundOff"`
}

var fieldRefs = map[string]func(*InvoiceFields) *string{
	"sellerName":       func(f *InvoiceFields) *string { return &f.SellerName },
	"sellerAddress":    func(f *InvoiceFields) *string { return &f.SellerAddress },
	"sellerGSTIN":      func(f *InvoiceFields) *string { return &f.SellerGSTIN },
	"sellerState":      func(f *InvoiceFields) *string { return &f.SellerState },
	"sellerEmail":      func(f *InvoiceFields) *string { return &f.SellerEmail },
	"sellerPhone":      func(f *InvoiceFields) *string { return &f.SellerPhone },
	"invoiceNo":        func(f *InvoiceFields) *string { return &f.InvoiceNo },
	"invoiceDate":      func(f *InvoiceFields) *string { return &f.InvoiceDate },
	"paymentTerms":     func(f *InvoiceFields) *string { return &f.PaymentTerms },
	"supplierRef":      func(f *InvoiceFields) *string { return &f.SupplierRef },
	"buyerOrderNo":     func(f *InvoiceFields) *string { return &f.BuyerOrderNo },
	"buyerOrderDate":   func(f *InvoiceFields) *string { return &f.BuyerOrderDate },
	"despatchThrough":  func(f *InvoiceFields) *string { return &f.DespatchThrough },
	"destination":      func(f *InvoiceFields) *string { return &f.Destination },
	"consigneeName":    func(f *InvoiceFields) *string { return &f.ConsigneeName },
	"consigneeAddress": func(f *InvoiceFields) *string { return &f.ConsigneeAddress },
	"consigneeGSTIN":   func(f *InvoiceFields) *string { return &f.ConsigneeGSTIN },
	"consigneeState":   func(f *InvoiceFields) *string { return &f.ConsigneeState },
	"buyerName":        func(f *InvoiceFields) *string { return &f.BuyerName },
	"buyerAddress":     func(f *InvoiceFields) *string { return &f.BuyerAddress },
	"buyerGSTIN":       func(f *InvoiceFields) *string { return &f.BuyerGSTIN },
	"buyerState":       func(f *InvoiceFields) *string { return &f.BuyerState },
	"bankName":         func(f *InvoiceFields) *string { return &f.BankName },
	"accountNo":        func(f *InvoiceFields) *string { return &f.AccountNo },
	"ifscCode":         func(f *InvoiceFields) *string { return &f.IFSCCode },
	"branchName":       func(f *InvoiceFields) *string { return &f.BranchName },
	"declaration":      func(f *InvoiceFields) *string { return &f.Declaration },
	"jurisdiction":     func(f *InvoiceFields) *string { return &f.Jurisdiction },
	"cgstRate":         func(f *InvoiceFields) *string { return &f.CGSTRate },
	"sgstRate":         func(f *InvoiceFields) *string { return &f.SGSTRate },
	"igstRate":         func(f *InvoiceFields) *string { return &f.IGSTRate },
}

// BuyerFieldNames are the fields filled by the "same as consignee" action.
var BuyerFieldNames = []string{"buyerName", "buyerAddress", "buyerGSTIN", "buyerState"}

// IsTextField reports whether name is a known text field.
func IsTextField(name string) bool {
	_, ok := fieldRefs[name]
	return ok
}

// IsBuyerField reports whether name is one of BuyerFieldNames.
func IsBuyerField(name string) bool {
	for _, n := range BuyerFieldNames {
		if n == name {
			return true
		}
	}
	return false
}

// Get returns the value of a named text field.
func (f *InvoiceFields) Get(name string) (string, bool) {
	ref, ok := fieldRefs[name]
	if !ok {
		return "", false
	}
	return *ref(f), true
}

// Set assigns a named text field. Unknown names are ignored and reported false.
func (f *InvoiceFields) Set(name, value string) bool {
	ref, ok := fieldRefs[name]
	if !ok {
		return false
	}
	*ref(f) = value
	return true
}

// CopyConsigneeToBuyer copies the consignee identity into the buyer fields.
// It is a one-shot copy; later consignee edits are not propagated.
func (f *InvoiceFields) CopyConsigneeToBuyer() {
	f.BuyerName = f.ConsigneeName
	f.BuyerAddress = f.ConsigneeAddress
	f.BuyerGSTIN = f.ConsigneeGSTIN
	f.BuyerState = f.ConsigneeState
}

// TaxRates parses the three rate fields; invalid rates are 0.
func (f *InvoiceFields) TaxRates() TaxRates {
	return TaxRates{
		CGST: money.Parse(f.CGSTRate),
		SGST: money.Parse(f.SGSTRate),
		IGST: money.Parse(f.IGSTRate),
	}
}
