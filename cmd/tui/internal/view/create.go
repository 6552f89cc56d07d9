package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/backoffice/internal/api"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

// createDraft holds the raw form input. It lives behind a pointer so the
// form keeps writing to the same fields while the model is copied around.
type createDraft struct {
	Reference    string
	Counterparty string
	Company      string
	Category     string
	Description  string
	Amount       string
	Target       string
	IssueDate    string
	DueDate      string

	BaseSalary  string
	Commissions string
	Bonuses     string
	Deductions  string
}

// parseMajor reads an amount in major units into cents. A lone comma is
// taken as the decimal separator, otherwise commas group thousands.
func parseMajor(s string) (int64, error) {
	s = strings.NewReplacer("$", "", " ", "", "_", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}

	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	if d.IsNegative() {
		return 0, errors.New("amount must not be negative")
	}

	return d.Shift(2).Round(0).IntPart(), nil
}

func validateMajor(s string) error {
	_, err := parseMajor(s)
	return err
}

func parseOptionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (YYYY-MM-DD)", s)
	}

	return &t, nil
}

func validateDate(s string) error {
	_, err := parseOptionalDate(s)
	return err
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", label)
		}

		return nil
	}
}

func newCreateForm(kind record.Kind, d *createDraft) *huh.Form {
	payroll := kind == record.KindPayroll

	details := huh.NewGroup(
		huh.NewInput().Title("Reference").Placeholder("COT-992").Value(&d.Reference),
		huh.NewInput().Title(counterpartyLabel(kind)).Value(&d.Counterparty).Validate(required("counterparty")),
		huh.NewInput().Title("Company").Value(&d.Company),
		huh.NewInput().Title("Category").Value(&d.Category),
		huh.NewInput().Title("Issue date").Placeholder("YYYY-MM-DD, empty for today").Value(&d.IssueDate).Validate(validateDate),
		huh.NewInput().Title("Due date").Placeholder("YYYY-MM-DD").Value(&d.DueDate).Validate(validateDate),
		huh.NewText().Title("Description").Lines(2).Value(&d.Description),
	)

	amounts := huh.NewGroup(
		huh.NewInput().Title("Amount").Placeholder("1234.50").Value(&d.Amount).Validate(validateMajor),
		huh.NewInput().Title("Target").Description("Goal used for achievement rates").Value(&d.Target).Validate(validateMajor),
	).WithHideFunc(func() bool { return payroll })

	salary := huh.NewGroup(
		huh.NewInput().Title("Base salary").Value(&d.BaseSalary).Validate(validateMajor),
		huh.NewInput().Title("Commissions").Value(&d.Commissions).Validate(validateMajor),
		huh.NewInput().Title("Bonuses").Value(&d.Bonuses).Validate(validateMajor),
		huh.NewInput().Title("Deductions").Value(&d.Deductions).Validate(validateMajor),
	).WithHideFunc(func() bool { return !payroll })

	return huh.NewForm(details, amounts, salary).WithWidth(50).WithShowHelp(false)
}

func counterpartyLabel(kind record.Kind) string {
	switch kind {
	case record.KindPayroll:
		return "Employee"
	case record.KindCommission:
		return "Advisor"
	case record.KindShipment:
		return "Recipient"
	case record.KindExpense, record.KindPayment:
		return "Supplier"
	default:
		return "Client"
	}
}

// request converts the draft into a create request for kind.
func (d *createDraft) request(kind record.Kind) (api.CreateRequest, error) {
	req := api.CreateRequest{
		Reference:    strings.TrimSpace(d.Reference),
		Counterparty: strings.TrimSpace(d.Counterparty),
		Company:      strings.TrimSpace(d.Company),
		Category:     strings.ToLower(strings.TrimSpace(d.Category)),
		Description:  strings.TrimSpace(d.Description),
	}

	issued, err := parseOptionalDate(d.IssueDate)
	if err != nil {
		return req, err
	}

	if issued != nil {
		req.IssueDate = *issued
	}

	if req.DueDate, err = parseOptionalDate(d.DueDate); err != nil {
		return req, err
	}

	if kind == record.KindPayroll {
		var p api.Payroll

		for _, f := range []struct {
			raw string
			dst *int64
		}{
			{d.BaseSalary, &p.BaseSalary},
			{d.Commissions, &p.Commissions},
			{d.Bonuses, &p.Bonuses},
			{d.Deductions, &p.Deductions},
		} {
			if *f.dst, err = parseMajor(f.raw); err != nil {
				return req, err
			}
		}

		req.Payroll = &p

		return req, nil
	}

	if req.Amount, err = parseMajor(d.Amount); err != nil {
		return req, err
	}

	if strings.TrimSpace(d.Target) != "" {
		target, err := parseMajor(d.Target)
		if err != nil {
			return req, err
		}

		req.Target = &target
	}

	return req, nil
}
