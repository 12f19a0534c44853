// Package nit normaliza y valida identificaciones tributarias colombianas (NIT).
package nit

import (
	"fmt"
	"strings"
	"unicode"
)

// pesos del dígito de verificación (módulo 11, DIAN), aplicados a los 9 dígitos base de izquierda a derecha.
var weights = [9]int{41, 37, 29, 23, 19, 17, 13, 7, 3}

// Normalize quita puntos y espacios: "900.123.456 - 7" → "900123456-7".
func Normalize(taxID string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(taxID) {
		if r == '.' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Split separa base y dígito de verificación de un NIT con formato 9 dígitos + "-" + DV.
// ok es false para cualquier otro formato (cédulas, identificaciones extranjeras).
func Split(taxID string) (base string, dv byte, ok bool) {
	n := Normalize(taxID)
	if len(n) != 11 || n[9] != '-' || !isDigits(n[:9]) || !isDigits(n[10:]) {
		return "", 0, false
	}
	return n[:9], n[10], true
}

// Validate acepta cualquier identificación, pero si trae dígito de verificación debe ser correcto.
func Validate(taxID string) error {
	base, dv, ok := Split(taxID)
	if !ok {
		return nil
	}
	expected := CheckDigit(base)
	if dv != expected {
		return fmt.Errorf("dígito de verificación del NIT inválido: esperado %c, recibido %c", expected, dv)
	}
	return nil
}

// CheckDigit calcula el dígito de verificación de una base de 9 dígitos.
func CheckDigit(base string) byte {
	var sum int
	for i := 0; i < 9 && i < len(base); i++ {
		sum += int(base[i]-'0') * weights[i]
	}
	r := sum % 11
	if r == 0 || r == 1 {
		return byte('0' + r)
	}
	return byte('0' + (11 - r))
}

// SchemeDigit devuelve el DV para el atributo schemeID de UBL: el informado o, si la
// identificación es una base de 9 dígitos, el calculado. Vacío en otro caso.
func SchemeDigit(taxID string) string {
	if _, dv, ok := Split(taxID); ok {
		return string(dv)
	}
	n := Normalize(taxID)
	if len(n) == 9 && isDigits(n) {
		return string(CheckDigit(n))
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
