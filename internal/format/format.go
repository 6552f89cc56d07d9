// Package format renders record values for people: amounts, KPI values,
// dates and status labels.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

const DateLayout = "2006-01-02"

type Formatter struct {
	tag     language.Tag
	printer *message.Printer
	symbol  string
	scale   int
	layout  string
}

type Option func(*Formatter)

// WithSymbol sets the prefix printed before money amounts.
func WithSymbol(s string) Option {
	return func(f *Formatter) { f.symbol = s }
}

// WithScale overrides the number of fraction digits shown for money.
func WithScale(n int) Option {
	return func(f *Formatter) { f.scale = n }
}

func WithDateLayout(layout string) Option {
	return func(f *Formatter) { f.layout = layout }
}

// New builds a Formatter for the given locale and currency. Money precision
// follows the currency's ISO rounding unless WithScale is given.
func New(tag language.Tag, cur currency.Unit, opts ...Option) *Formatter {
	scale, _ := currency.Standard.Rounding(cur)

	f := &Formatter{
		tag:     tag,
		printer: message.NewPrinter(tag),
		symbol:  "$ ",
		scale:   scale,
		layout:  DateLayout,
	}

	for _, o := range opts {
		o(f)
	}

	return f
}

// Default groups with dots and uses a decimal comma: "$ 1.234.567,00".
func Default() *Formatter {
	return New(language.German, currency.USD)
}

// Parse builds a Formatter from a BCP 47 tag and an ISO 4217 code.
func Parse(locale, code string, opts ...Option) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, err
	}

	cur, err := currency.ParseISO(code)
	if err != nil {
		return nil, err
	}

	return New(tag, cur, opts...), nil
}

// Money formats an amount held in cents.
func (f *Formatter) Money(cents int64) string {
	return f.Major(decimal.New(cents, -2))
}

// Major formats an amount already in major units.
func (f *Formatter) Major(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	v := d.Round(int32(f.scale)).InexactFloat64()

	return sign + f.symbol + f.printer.Sprint(number.Decimal(v, number.Scale(f.scale)))
}

// Count formats an integer with locale grouping.
func (f *Formatter) Count(d decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(d.IntPart()))
}

// Percent formats a 0-100 value with at most one fraction digit.
func (f *Formatter) Percent(d decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(1))) + " %"
}

// KPI formats a KPI value according to its display type.
func (f *Formatter) KPI(k record.KPI) string {
	switch k.Display {
	case record.DisplayCurrency:
		return f.Major(k.Value)
	case record.DisplayPercentage:
		return f.Percent(k.Value)
	default:
		return f.Count(k.Value)
	}
}

func (f *Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Format(f.layout)
}

// DatePtr formats an optional date, "-" when absent.
func (f *Formatter) DatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return f.Date(*t)
}

// Status turns "out_for_delivery" into "Out For Delivery".
func (f *Formatter) Status(s record.Status) string {
	return cases.Title(f.tag).String(strings.ReplaceAll(string(s), "_", " "))
}

// StatusUpper turns "in_transit" into "IN TRANSIT", as exports show it.
func (f *Formatter) StatusUpper(s record.Status) string {
	return cases.Upper(f.tag).String(strings.ReplaceAll(string(s), "_", " "))
}
