package email

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// requestNumberRe reconoce referencias a solicitudes: "SC-000123", "sc 123", "SC#123", "SC_0123".
var requestNumberRe = regexp.MustCompile(`(?i)\bsc[\s\-_#º.:]*0*(\d{1,9})\b`)

// Normalize pasa a minúsculas, quita acentos y colapsa espacios.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// CanonicalRequestNumber formato del correlativo de solicitudes.
func CanonicalRequestNumber(n int) string {
	return fmt.Sprintf("SC-%06d", n)
}

// ExtractRequestNumbers devuelve, sin repetir y en orden de aparición, los números de
// solicitud mencionados en el texto, en formato canónico.
func ExtractRequestNumbers(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range requestNumberRe.FindAllStringSubmatch(Normalize(text), -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n == 0 {
			continue
		}
		num := CanonicalRequestNumber(n)
		if !seen[num] {
			seen[num] = true
			out = append(out, num)
		}
	}
	return out
}

// MatchRequestNumber devuelve el primer número citado en el texto que esté entre los
// candidatos (comparación en formato canónico), o "" si no hay coincidencia.
func MatchRequestNumber(text string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	canon := make(map[string]string, len(candidates))
	for _, c := range candidates {
		found := ExtractRequestNumbers(c)
		if len(found) == 1 {
			canon[found[0]] = c
		}
	}
	for _, n := range ExtractRequestNumbers(text) {
		if orig, ok := canon[n]; ok {
			return orig
		}
	}
	return ""
}

// SimilarDescriptions compara descripciones sin acentos ni mayúsculas: iguales o una
// contenida en la otra.
func SimilarDescriptions(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}
