package morocco

import "fmt"

// InvoicePrefix starts every invoice number issued by the platform.
const InvoicePrefix = "FLA"

// GenerateInvoiceNumber returns FLA-{year}-{seq} with seq zero-padded to five
// digits. Sequences of 100000 and above keep all their digits.
func GenerateInvoiceNumber(seq int, year int) string {
	return fmt.Sprintf("%s-%d-%05d", InvoicePrefix, year, seq)
}
