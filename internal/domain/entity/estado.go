package entity

import (
	"fmt"
	"strings"
)

// Estado es el estado de un expediente. Es un conjunto cerrado: el valor cero
// no es un estado válido y ParseEstado rechaza cualquier texto desconocido.
type Estado uint8

const (
	EstadoBorrador Estado = iota + 1
	EstadoEnRevision
	EstadoCompleto
	EstadoIncompleto
	EstadoAprobado
	EstadoRechazado
	EstadoArchivado
)

var estadoNames = [...]string{
	EstadoBorrador:   "Borrador",
	EstadoEnRevision: "En Revisión",
	EstadoCompleto:   "Completo",
	EstadoIncompleto: "Incompleto",
	EstadoAprobado:   "Aprobado",
	EstadoRechazado:  "Rechazado",
	EstadoArchivado:  "Archivado",
}

// Estados devuelve los siete estados en orden de flujo.
func Estados() []Estado {
	return []Estado{
		EstadoBorrador, EstadoEnRevision, EstadoCompleto, EstadoIncompleto,
		EstadoAprobado, EstadoRechazado, EstadoArchivado,
	}
}

// Valid indica si e es uno de los siete estados definidos.
func (e Estado) Valid() bool {
	return e >= EstadoBorrador && e <= EstadoArchivado
}

func (e Estado) String() string {
	if !e.Valid() {
		return fmt.Sprintf("Estado(%d)", uint8(e))
	}
	return estadoNames[e]
}

// Editable indica si los datos del expediente pueden corregirse en este estado.
func (e Estado) Editable() bool {
	return e == EstadoBorrador || e == EstadoRechazado || e == EstadoIncompleto
}

// InFinancialReview indica si el expediente ya entró al circuito financiero.
func (e Estado) InFinancialReview() bool {
	return e != EstadoBorrador
}

// ParseEstado convierte el texto persistido o recibido por la API en un Estado.
// "Recibido" se acepta como alias histórico de Borrador.
func ParseEstado(s string) (Estado, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "Recibido") {
		return EstadoBorrador, nil
	}
	norm := strings.ToLower(strings.ReplaceAll(s, "ó", "o"))
	for _, e := range Estados() {
		if strings.ToLower(strings.ReplaceAll(e.String(), "ó", "o")) == norm {
			return e, nil
		}
	}
	return 0, fmt.Errorf("estado desconocido %q", s)
}

// MarshalText serializa el estado con su nombre visible.
func (e Estado) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("estado inválido %d", uint8(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText acepta cualquier forma reconocida por ParseEstado.
func (e *Estado) UnmarshalText(b []byte) error {
	v, err := ParseEstado(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}
