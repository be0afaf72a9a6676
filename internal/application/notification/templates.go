package notification

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/jhoicas/Expedientes-api/internal/domain/entity"
)

// templateData contexto disponible en asunto y cuerpo.
type templateData struct {
	Codigo      string
	Proyecto    string
	Municipio   string
	Estado      string
	Remitente   string
	Comentarios string
	Fecha       string
}

type mailTemplate struct {
	subject *template.Template
	body    *template.Template
}

var templates = map[string]mailTemplate{
	entity.NotifEnviadoRevision: mustTemplate(entity.NotifEnviadoRevision,
		"Expediente {{.Codigo}} enviado a revisión financiera",
		`El expediente {{.Codigo}} ({{.Proyecto}}) del municipio {{.Municipio}} fue enviado a revisión por {{.Remitente}} el {{.Fecha}}.
Ingrese al sistema para realizar la revisión financiera.`),
	entity.NotifRevisionCompleta: mustTemplate(entity.NotifRevisionCompleta,
		"Expediente {{.Codigo}}: revisión financiera completa",
		`La revisión financiera del expediente {{.Codigo}} ({{.Proyecto}}) del municipio {{.Municipio}} concluyó como Completo.
Revisor: {{.Remitente}}.{{if .Comentarios}}
Comentarios: {{.Comentarios}}{{end}}
El expediente queda pendiente de resolución.`),
	entity.NotifRevisionIncompleta: mustTemplate(entity.NotifRevisionIncompleta,
		"Expediente {{.Codigo}}: documentación incompleta",
		`La revisión financiera del expediente {{.Codigo}} ({{.Proyecto}}) del municipio {{.Municipio}} lo marcó como Incompleto.
Revisor: {{.Remitente}}.{{if .Comentarios}}
Observaciones: {{.Comentarios}}{{end}}
Corrija la información y vuelva a enviarlo a revisión.`),
	entity.NotifExpedienteAprobado: mustTemplate(entity.NotifExpedienteAprobado,
		"Expediente {{.Codigo}} aprobado",
		`El expediente {{.Codigo}} ({{.Proyecto}}) del municipio {{.Municipio}} fue aprobado el {{.Fecha}}.{{if .Comentarios}}
Comentarios: {{.Comentarios}}{{end}}`),
	entity.NotifExpedienteRechazado: mustTemplate(entity.NotifExpedienteRechazado,
		"Expediente {{.Codigo}} rechazado",
		`El expediente {{.Codigo}} ({{.Proyecto}}) del municipio {{.Municipio}} fue rechazado el {{.Fecha}}.{{if .Comentarios}}
Motivo: {{.Comentarios}}{{end}}`),
}

func mustTemplate(tipo, subject, body string) mailTemplate {
	return mailTemplate{
		subject: template.Must(template.New(tipo + ".subject").Parse(subject)),
		body:    template.Must(template.New(tipo + ".body").Parse(body)),
	}
}

// render compone asunto y cuerpo para el tipo de notificación.
func render(tipo string, data templateData) (subject, body string, err error) {
	t, ok := templates[tipo]
	if !ok {
		return "", "", fmt.Errorf("notification: plantilla desconocida %q", tipo)
	}
	var sb, bb strings.Builder
	if err := t.subject.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("notification: asunto %s: %w", tipo, err)
	}
	if err := t.body.Execute(&bb, data); err != nil {
		return "", "", fmt.Errorf("notification: cuerpo %s: %w", tipo, err)
	}
	return sb.String(), bb.String(), nil
}
