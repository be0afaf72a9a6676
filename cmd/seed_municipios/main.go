// seed_municipios genera un script SQL para poblar la tabla municipios
// a partir del XML oficial de divisiones territoriales (Municipios.xml, ISO-8859-1).
//
// Uso: go run ./cmd/seed_municipios [ruta/Municipios.xml] [salida.sql]
// Por defecto lee Municipios.xml del directorio actual y escribe seed_municipios.sql.
// El script es idempotente: los ids se derivan del código DANE.
package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// namespaceMunicipios fija los UUID v5 generados a partir del código DANE.
var namespaceMunicipios = uuid.MustParse("6f1c1b5e-3f0a-4c55-9a8e-0d1f6a2b7c41")

type parametros struct {
	Tabla struct {
		Valores []valor `xml:"valor"`
	} `xml:"tabla"`
}

type valor struct {
	Cod    string `xml:"cod,attr"`
	Nombre string `xml:"nombre,attr"`
	Otro   struct {
		Codigo string `xml:"codigo,attr"`
		Valor  string `xml:"valor,attr"`
	} `xml:"otro"`
}

type municipio struct {
	ID           string
	Codigo       string
	Nombre       string
	Departamento string
}

func main() {
	xmlPath := "Municipios.xml"
	outPath := "seed_municipios.sql"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	municipios, err := parse(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, municipios); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d municipios\n", outPath, len(municipios))
}

// parse decodifica el XML (UTF-8 o ISO-8859-1) y devuelve los municipios ordenados por código.
func parse(r io.Reader) ([]municipio, error) {
	var p parametros
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []municipio
	for _, v := range p.Tabla.Valores {
		cod := strings.TrimSpace(v.Cod)
		nombre := strings.TrimSpace(v.Nombre)
		if cod == "" || nombre == "" || seen[cod] {
			continue
		}
		seen[cod] = true
		out = append(out, municipio{
			ID:           uuid.NewSHA1(namespaceMunicipios, []byte(cod)).String(),
			Codigo:       cod,
			Nombre:       nombre,
			Departamento: strings.TrimSpace(v.Otro.Valor),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Codigo < out[j].Codigo })
	return out, nil
}

func writeSQL(w io.Writer, municipios []municipio) error {
	if _, err := io.WriteString(w, "-- Municipios (código DANE)\n-- Generado desde Municipios.xml\n\n"); err != nil {
		return err
	}
	if len(municipios) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, "INSERT INTO municipios (id, name, department) VALUES\n"); err != nil {
		return err
	}
	for i, m := range municipios {
		sep := ","
		if i == len(municipios)-1 {
			sep = ""
		}
		if _, err := fmt.Fprintf(w, "  ('%s', '%s', '%s')%s\n", m.ID, escapeSQL(m.Nombre), escapeSQL(m.Departamento), sep); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "ON CONFLICT (name, department) DO NOTHING;\n")
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
