package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const sampleXML = `<?xml version="1.0" encoding="ISO-8859-1"?>
<parametros>
  <tabla>
    <valor cod="05001" nombre="Medellín"><otro codigo="05" valor="Antioquia"/></valor>
    <valor cod="13001" nombre="Cartagena de Indias"><otro codigo="13" valor="Bolívar"/></valor>
    <valor cod="05001" nombre="Medellín"><otro codigo="05" valor="Antioquia"/></valor>
    <valor cod="" nombre="Sin código"/>
    <valor cod="52001" nombre="San Juan de Pasto"><otro codigo="52" valor="Nariño"/></valor>
  </tabla>
</parametros>`

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestParse_ISO88591(t *testing.T) {
	got, err := parse(bytes.NewReader(latin1(t, sampleXML)))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "05001", got[0].Codigo)
	assert.Equal(t, "Medellín", got[0].Nombre)
	assert.Equal(t, "Antioquia", got[0].Departamento)
	assert.Equal(t, "Nariño", got[2].Departamento)
}

func TestParse_IDsEstables(t *testing.T) {
	a, err := parse(bytes.NewReader(latin1(t, sampleXML)))
	require.NoError(t, err)
	b, err := parse(bytes.NewReader(latin1(t, sampleXML)))
	require.NoError(t, err)
	assert.Equal(t, a[1].ID, b[1].ID)
	assert.NotEqual(t, a[0].ID, a[1].ID)
}

func TestWriteSQL(t *testing.T) {
	var buf bytes.Buffer
	err := writeSQL(&buf, []municipio{
		{ID: "id-1", Codigo: "1", Nombre: "O'Higgins", Departamento: "Dep"},
		{ID: "id-2", Codigo: "2", Nombre: "Otro", Departamento: "Dep"},
	})
	require.NoError(t, err)

	sql := buf.String()
	assert.Contains(t, sql, "('id-1', 'O''Higgins', 'Dep'),")
	assert.Contains(t, sql, "('id-2', 'Otro', 'Dep')\nON CONFLICT")
	assert.Equal(t, 1, strings.Count(sql, "INSERT INTO municipios"))
}
