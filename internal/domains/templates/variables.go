package templates

import "strings"

const (
	CategoryCustomer = "Cliente"
	CategoryPackage  = "Paquete"
	CategorySystem   = "Sistema"
)

// System variables are filled in by the generator when the caller leaves
// them unbound.
const (
	VariableDate        = "fecha"
	VariablePaymentLink = "link_pago"
)

// Customer variables are prefilled from the customer record.
const (
	VariableName         = "nombre"
	VariableCustomerCode = "numero_cliente"
	VariablePhone        = "telefono"
)

type Variable struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Example     string `json:"example"`
	Category    string `json:"category"`
}

// Catalogue lists the variables the editor offers. Templates may still use
// any other name.
var Catalogue = []Variable{
	{VariableName, "Nombre", "Nombre del cliente", "Carlos Mendoza", CategoryCustomer},
	{VariableCustomerCode, "Número Cliente", "ID del cliente KeyBox", "KB001", CategoryCustomer},
	{VariablePhone, "Teléfono", "Número WhatsApp", "+504 9999-9999", CategoryCustomer},

	{"cantidad", "Cantidad", "Número de paquetes", "2", CategoryPackage},
	{"modalidad", "Modalidad", "Tipo de envío", "Premium", CategoryPackage},
	{"peso", "Peso Total", "Peso en libras", "1.8 lbs", CategoryPackage},
	{"monto", "Monto", "Total a pagar", "L105", CategoryPackage},
	{"trackings", "Trackings", "Lista de códigos", "1ZXY921A, 92374823US", CategoryPackage},

	{VariableDate, "Fecha", "Fecha actual", "2024-01-15", CategorySystem},
	{VariablePaymentLink, "Link de Pago", "URL formas de pago", "https://keyboxhn.com/pago", CategorySystem},
	{"domicilio_info", "Info Domicilio", "Información de entrega", "TGU desde L70", CategorySystem},
}

// SearchVariables filters the catalogue by name, label or description.
func SearchVariables(query string) []Variable {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Variable, 0, len(Catalogue))
	for _, v := range Catalogue {
		if query == "" ||
			strings.Contains(strings.ToLower(v.Name), query) ||
			strings.Contains(strings.ToLower(v.Label), query) ||
			strings.Contains(strings.ToLower(v.Description), query) {
			out = append(out, v)
		}
	}
	return out
}
