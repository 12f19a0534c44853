package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const companyID = "11111111-2222-3333-4444-555555555555"

const sample = `tipo;codigo;nombre;extra;extra2
# papelería
categoria;PAP-01;Papel bond;PAP
categoria;PAP;Papelería
producto;A4-75;Resma carta 75g;PAP-01;resma
producto;GRAP;Grapas
proveedor;800111222;Papelería O'Brien;VENTAS@OBRIEN.TEST;6011234
`

func TestGenerate(t *testing.T) {
	var out bytes.Buffer
	st, err := generate(strings.NewReader(sample), &out, companyID)
	require.NoError(t, err)

	assert.Equal(t, stats{categories: 2, products: 2, suppliers: 1}, st)
	sql := out.String()
	assert.True(t, strings.HasPrefix(sql, "-- Catálogo"))
	assert.Contains(t, sql, "BEGIN;")
	assert.Contains(t, sql, "COMMIT;")
	// el padre se enlaza después de insertar todas las categorías
	assert.Less(t, strings.LastIndex(sql, "INSERT INTO categories"), strings.Index(sql, "UPDATE categories SET parent_id"))
	assert.Contains(t, sql, "code = 'PAP')\nWHERE company_id = '"+companyID+"' AND code = 'PAP-01';")
	assert.Contains(t, sql, "'RESMA')")
	assert.Contains(t, sql, ", NULL, 'GRAP', 'Grapas', 'UN')")
	assert.Contains(t, sql, "'Papelería O''Brien', 'ventas@obrien.test', '6011234'")
}

func TestGenerate_IDsEstables(t *testing.T) {
	var a, b bytes.Buffer
	_, err := generate(strings.NewReader(sample), &a, companyID)
	require.NoError(t, err)
	_, err = generate(strings.NewReader(sample), &b, companyID)
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
	assert.NotEqual(t, stableID(companyID, "producto", "X"), stableID(companyID, "proveedor", "X"))
}

func TestGenerate_Latin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("categoria;LIM;Limpieza y aseo ñandú\n")
	require.NoError(t, err)

	var out bytes.Buffer
	in := transform.NewReader(strings.NewReader(encoded), charmap.ISO8859_1.NewDecoder())
	_, err = generate(in, &out, companyID)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Limpieza y aseo ñandú")
}

func TestGenerate_Errores(t *testing.T) {
	_, err := generate(strings.NewReader("bodega;B1;Principal\n"), &bytes.Buffer{}, companyID)
	assert.ErrorContains(t, err, "tipo desconocido")

	_, err = generate(strings.NewReader("producto;;Sin código\n"), &bytes.Buffer{}, companyID)
	assert.ErrorContains(t, err, "obligatorios")
}
