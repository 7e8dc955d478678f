package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	headerOpen  = "=== PRODUCT CATALOG VERIFICATION ==="
	headerClose = "=== END OF VERIFICATION ==="
)

var headerCountRe = regexp.MustCompile(`This catalog contains exactly (\d+) products?\.`)

// VerificationHeader is prepended to the product list so the model only ever
// talks about the enumerated products
func VerificationHeader(count int) string {
	noun := "products"
	if count == 1 {
		noun = "product"
	}
	var b strings.Builder
	b.WriteString(headerOpen + "\n")
	fmt.Fprintf(&b, "This catalog contains exactly %d %s.\n", count, noun)
	b.WriteString("Only mention, recommend or quote the products numbered below, using their exact names.\n")
	b.WriteString("Never invent products, variations or prices. If a customer asks for something that is not listed, say it is not available.\n")
	b.WriteString(headerClose + "\n")
	return b.String()
}

// BuildProductPrompt renders the catalog as numbered lines under the header
func BuildProductPrompt(products []Product) string {
	var b strings.Builder
	b.WriteString(VerificationHeader(len(products)))
	for i, p := range products {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d. %s", i+1, p.Name)
		if p.Price > 0 {
			fmt.Fprintf(&b, " | price: %s", strconv.FormatFloat(p.Price, 'f', 2, 64))
		}
		if p.ID != "" {
			fmt.Fprintf(&b, " | id: %s", p.ID)
		}
		if d := strings.TrimSpace(p.Description); d != "" {
			fmt.Fprintf(&b, "\n   %s", strings.ReplaceAll(d, "\n", " "))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// HeaderCount reads the product count declared by a verification header
// embedded anywhere in prompt
func HeaderCount(prompt string) (int, bool) {
	m := headerCountRe.FindStringSubmatch(prompt)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
