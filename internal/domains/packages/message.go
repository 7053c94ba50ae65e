package packages

import (
	"strconv"
	"strings"

	"github.com/keyboxhn/keybox/internal/render"
)

// Shipping modalities offered by KeyBox.
const (
	ModalityPremium  = "Premium"
	ModalityStandard = "Standard"
	ModalityMaritime = "Marítimo"
)

var Modalities = []string{ModalityPremium, ModalityStandard, ModalityMaritime}

// DefaultZone is the delivery zone used when none is given.
const DefaultZone = "TGU"

var deliveryPrices = map[string]string{
	DefaultZone: "L70",
}

const otherZonePrice = "L125"

const (
	bodyHeader = "¡Hola *{nombre}*! 🚀\n\n" +
		"🎁 Tienes *{cantidad}* listos para entrega vía *{modalidad}* ✈️\n\n" +
		"📦 Trackings:\n{trackings}\n\n" +
		"⚖️ Peso total: *{peso} lbs*\n" +
		"💰 Monto a pagar: *L{monto}*\n\n" +
		"💡 Puedes consultar nuestras formas de pago aquí:\n" +
		"👉 {link_pago}\n\n"
	bodyFooter = "¡Gracias por elegir KeyBox! ✨"

	deliverySection = "📍 Domicilio {zona} desde {precio_domicilio}\n(No se acepta pago en efectivo)\n\n"
	waitSection     = "Si estás esperando más paquetes, puedes esperar la próxima notificación para agruparlos 😄📦\n\n"
)

// CanonicalModality returns the canonical spelling of a modality name, or
// false when the name is not offered.
func CanonicalModality(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, m := range Modalities {
		if strings.EqualFold(m, name) {
			return m, true
		}
	}
	return "", false
}

// PackageCount renders "1 paquete" or "N paquetes".
func PackageCount(n int) string {
	if n == 1 {
		return "1 paquete"
	}
	return strconv.Itoa(n) + " paquetes"
}

// JoinModalities joins labels as "A", "A y B" or "A, B y C", dropping
// repeats.
func JoinModalities(labels []string) string {
	seen := make(map[string]bool, len(labels))
	unique := make([]string, 0, len(labels))
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			unique = append(unique, l)
		}
	}

	switch len(unique) {
	case 0:
		return ""
	case 1:
		return unique[0]
	default:
		return strings.Join(unique[:len(unique)-1], ", ") + " y " + unique[len(unique)-1]
	}
}

// DeliveryPrice looks up the home-delivery price for a zone.
func DeliveryPrice(zone string) string {
	if price, ok := deliveryPrices[strings.ToUpper(zone)]; ok {
		return price
	}
	return otherZonePrice
}

// TrackingLines splits a tracking value into trimmed, non-blank lines.
func TrackingLines(v render.Value) []string {
	var out []string
	for _, item := range v.Items() {
		for _, line := range strings.Split(item, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// notificationBody assembles the built-in body. Optional sections are left
// out of the body entirely, never rendered with empty values.
func notificationBody(includeDelivery, waitForMore bool) string {
	var b strings.Builder
	b.WriteString(bodyHeader)
	if includeDelivery {
		b.WriteString(deliverySection)
	}
	if waitForMore {
		b.WriteString(waitSection)
	}
	b.WriteString(bodyFooter)
	return b.String()
}
