// seed_catalog genera un script SQL para cargar el catálogo de una empresa (categorías,
// productos y proveedores) desde un CSV exportado de Excel.
//
// Uso: go run ./cmd/seed_catalog -company <uuid> [-latin1] [-out catalogo.sql] catalogo.csv
//
// Formato (separador ';', primera columna el tipo, líneas con # se ignoran):
//
//	categoria;COD;Nombre;COD_PADRE
//	producto;SKU;Nombre;COD_CATEGORIA;UNIDAD
//	proveedor;NIT;Nombre;email;telefono
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogNamespace fija los UUID generados: el mismo CSV produce siempre los mismos IDs.
var catalogNamespace = uuid.MustParse("6f1c7a52-9d0e-4b6c-8a51-2f0a3c9d7e14")

type row struct {
	kind   string
	code   string
	name   string
	extra1 string
	extra2 string
}

type stats struct {
	categories int
	products   int
	suppliers  int
}

func main() {
	companyID := flag.String("company", "", "UUID de la empresa dueña del catálogo")
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1 (exportación de Excel en Windows)")
	outPath := flag.String("out", "", "archivo de salida (por defecto stdout)")
	flag.Parse()

	if _, err := uuid.Parse(*companyID); err != nil || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_catalog -company <uuid> [-latin1] [-out archivo.sql] catalogo.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var out io.Writer = os.Stdout
	if *outPath != "" {
		file, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		out = file
	}

	var in io.Reader = f
	if *latin1 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}

	st, err := generate(in, out, *companyID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Generado: %d categorías, %d productos, %d proveedores\n", st.categories, st.products, st.suppliers)
}

func readRows(in io.Reader) ([]row, error) {
	r := csv.NewReader(in)
	r.Comma = ';'
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows []row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for len(rec) < 5 {
			rec = append(rec, "")
		}
		x := row{
			kind:   strings.ToLower(strings.TrimSpace(rec[0])),
			code:   strings.TrimSpace(rec[1]),
			name:   strings.TrimSpace(rec[2]),
			extra1: strings.TrimSpace(rec[3]),
			extra2: strings.TrimSpace(rec[4]),
		}
		if x.kind == "" || x.kind == "tipo" {
			continue // línea vacía o encabezado
		}
		line, _ := r.FieldPos(0)
		if x.code == "" || x.name == "" {
			return nil, fmt.Errorf("línea %d: código y nombre son obligatorios", line)
		}
		switch x.kind {
		case "categoria", "producto", "proveedor":
		default:
			return nil, fmt.Errorf("línea %d: tipo desconocido %q", line, x.kind)
		}
		rows = append(rows, x)
	}
	return rows, nil
}

// generate escribe el SQL. Las categorías se insertan primero sin padre y luego se enlazan,
// así el orden de las líneas del CSV no importa.
func generate(in io.Reader, out io.Writer, companyID string) (stats, error) {
	rows, err := readRows(in)
	if err != nil {
		return stats{}, err
	}
	var st stats
	w := &sqlWriter{w: out}

	w.printf("-- Catálogo de la empresa %s\n-- Generado por seed_catalog\n\nBEGIN;\n\n", companyID)

	w.printf("-- 1. Categorías\n")
	for _, x := range rows {
		if x.kind != "categoria" {
			continue
		}
		st.categories++
		w.printf("INSERT INTO categories (id, company_id, code, name) VALUES ('%s', '%s', '%s', '%s')\n",
			stableID(companyID, "categoria", x.code), companyID, escapeSQL(x.code), escapeSQL(x.name))
		w.printf("ON CONFLICT (company_id, code) DO UPDATE SET name = EXCLUDED.name, updated_at = now();\n")
	}
	for _, x := range rows {
		if x.kind != "categoria" || x.extra1 == "" {
			continue
		}
		w.printf("UPDATE categories SET parent_id = (SELECT id FROM categories WHERE company_id = '%s' AND code = '%s')\n",
			companyID, escapeSQL(x.extra1))
		w.printf("WHERE company_id = '%s' AND code = '%s';\n", companyID, escapeSQL(x.code))
	}

	w.printf("\n-- 2. Productos\n")
	for _, x := range rows {
		if x.kind != "producto" {
			continue
		}
		st.products++
		unit := strings.ToUpper(x.extra2)
		if unit == "" {
			unit = "UN"
		}
		category := "NULL"
		if x.extra1 != "" {
			category = fmt.Sprintf("(SELECT id FROM categories WHERE company_id = '%s' AND code = '%s')", companyID, escapeSQL(x.extra1))
		}
		w.printf("INSERT INTO products (id, company_id, category_id, sku, name, unit_measure) VALUES ('%s', '%s', %s, '%s', '%s', '%s')\n",
			stableID(companyID, "producto", x.code), companyID, category, escapeSQL(x.code), escapeSQL(x.name), escapeSQL(unit))
		w.printf("ON CONFLICT (company_id, sku) DO UPDATE SET name = EXCLUDED.name, category_id = EXCLUDED.category_id, unit_measure = EXCLUDED.unit_measure, updated_at = now();\n")
	}

	w.printf("\n-- 3. Proveedores\n")
	for _, x := range rows {
		if x.kind != "proveedor" {
			continue
		}
		st.suppliers++
		w.printf("INSERT INTO suppliers (id, company_id, tax_id, name, email, phone) VALUES ('%s', '%s', '%s', '%s', '%s', '%s')\n",
			stableID(companyID, "proveedor", x.code), companyID, escapeSQL(x.code), escapeSQL(x.name),
			escapeSQL(strings.ToLower(x.extra1)), escapeSQL(x.extra2))
		w.printf("ON CONFLICT (company_id, tax_id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone, updated_at = now();\n")
	}

	w.printf("\nCOMMIT;\n")
	return st, w.err
}

// sqlWriter guarda el primer error de escritura.
type sqlWriter struct {
	w   io.Writer
	err error
}

func (s *sqlWriter) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

func stableID(companyID, kind, code string) string {
	return uuid.NewSHA1(catalogNamespace, []byte(companyID+"|"+kind+"|"+code)).String()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
