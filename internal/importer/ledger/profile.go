package ledger

import (
	"strings"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

type field int

const (
	fieldReference field = iota
	fieldCounterparty
	fieldCompany
	fieldCategory
	fieldStatus
	fieldAmount
	fieldTarget
	fieldIssueDate
	fieldDueDate
	fieldDescription
)

// aliases lists the header names accepted for each field, compared after
// lower-casing and trimming. Spanish headers come from the spreadsheets the
// back office already keeps.
var aliases = map[field][]string{
	fieldReference:    {"referencia", "reference", "ref", "no.", "número", "guía", "id"},
	fieldCounterparty: {"cliente", "proveedor", "empleado", "asesor", "destinatario", "counterparty", "name", "nombre"},
	fieldCompany:      {"empresa", "company"},
	fieldCategory:     {"categoría", "categoria", "tipo", "category"},
	fieldStatus:       {"estado", "status"},
	fieldAmount:       {"monto", "valor", "total", "amount"},
	fieldTarget:       {"meta", "target", "goal"},
	fieldIssueDate:    {"fecha", "fecha emisión", "date", "issue date"},
	fieldDueDate:      {"vencimiento", "fecha vencimiento", "due date"},
	fieldDescription:  {"descripción", "descripcion", "concepto", "description"},
}

// required fields must all be present for a row to count as the header.
var required = []field{fieldCounterparty, fieldAmount}

var fieldByAlias = func() map[string]field {
	m := make(map[string]field)
	for f, names := range aliases {
		for _, n := range names {
			m[n] = f
		}
	}

	return m
}()

// columns maps fields to their index in the header row.
type columns map[field]int

func detectHeader(rows [][]string) (columns, int, bool) {
	for rowIdx, row := range rows {
		cols := make(columns)

		for i, cell := range row {
			f, ok := fieldByAlias[strings.ToLower(strings.TrimSpace(cell))]
			if !ok {
				continue
			}

			if _, seen := cols[f]; !seen {
				cols[f] = i
			}
		}

		if hasAll(cols, required) {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

func hasAll(cols columns, fields []field) bool {
	for _, f := range fields {
		if _, ok := cols[f]; !ok {
			return false
		}
	}

	return true
}

var statusAliases = map[string]record.Status{
	"pendiente":     record.StatusPending,
	"procesando":    record.StatusProcessing,
	"en proceso":    record.StatusProcessing,
	"pagado":        record.StatusPaid,
	"pagada":        record.StatusPaid,
	"cobrado":       record.StatusCollected,
	"cobrada":       record.StatusCollected,
	"liquidado":     record.StatusLiquidated,
	"liquidada":     record.StatusLiquidated,
	"borrador":      record.StatusDraft,
	"enviada":       record.StatusSent,
	"enviado":       record.StatusSent,
	"aceptada":      record.StatusAccepted,
	"vencida":       record.StatusExpired,
	"rechazada":     record.StatusDeclined,
	"guía generada": record.StatusLabelGenerated,
	"en tránsito":   record.StatusInTransit,
	"en transito":   record.StatusInTransit,
	"en reparto":    record.StatusOutForDelivery,
	"entregado":     record.StatusDelivered,
	"incidencia":    record.StatusIncident,
	"devuelto":      record.StatusReturned,
}

// normalizeStatus maps a cell to a status string. Unknown values are passed
// through in snake_case so validation can name them.
func normalizeStatus(s string) record.Status {
	key := strings.ToLower(strings.TrimSpace(s))
	if st, ok := statusAliases[key]; ok {
		return st
	}

	return record.Status(strings.ReplaceAll(key, " ", "_"))
}
