package notify

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/amoralabs/amora-backend/internal/models"
)

// TemplateVars are the placeholder values an event carries. Missing
// fields substitute as empty strings.
type TemplateVars struct {
	Title   string
	Sender  string
	Count   int
	Emoji   string
	Status  string
	Context string
}

// Template is one title/body wording variant.
type Template struct {
	Title string
	Body  string
}

// Wording pools per event type. Dispatch picks one variant at random so
// repeated notifications don't read identically.
var templatePools = map[models.NotificationType][]Template{
	models.NotifNewMessage: {
		{Title: "Nova mensagem de {sender}", Body: "{sender} escreveu em \"{title}\""},
		{Title: "{sender} mandou mensagem", Body: "Tem recado novo em \"{title}\""},
		{Title: "Mensagem nova 💌", Body: "{sender} deixou uma mensagem em \"{title}\""},
	},
	models.NotifMultipleMessages: {
		{Title: "{count} mensagens de {sender}", Body: "{sender} mandou {count} mensagens em \"{title}\""},
		{Title: "{sender} está inspirado(a)", Body: "{count} mensagens novas em \"{title}\""},
	},
	models.NotifThreadReply: {
		{Title: "{sender} respondeu", Body: "Resposta nova na conversa: {context}"},
		{Title: "Resposta de {sender}", Body: "{sender} respondeu em \"{title}\": {context}"},
	},
	models.NotifStatusChange: {
		{Title: "\"{title}\" mudou de status", Body: "{sender} marcou a discussão como {status}"},
		{Title: "Status atualizado", Body: "\"{title}\" agora está {status}"},
	},
	models.NotifPinnedArgument: {
		{Title: "{sender} fixou um argumento", Body: "Um argumento foi fixado em \"{title}\""},
		{Title: "Argumento fixado 📌", Body: "{sender} destacou um ponto em \"{title}\""},
	},
	models.NotifReaction: {
		{Title: "{sender} reagiu {emoji}", Body: "{sender} reagiu com {emoji} em \"{title}\""},
		{Title: "Reação nova {emoji}", Body: "{sender} deixou um {emoji} para você"},
	},
}

// pingPool is ordered by intensity: the Nth ping of the day reads the Nth
// entry (capped at the last), so insistence grows with repetition.
var pingPool = []Template{
	{Title: "Pensando em você 💭", Body: "{sender} está pensando em você agora"},
	{Title: "De novo! 💭", Body: "{sender} pensou em você de novo"},
	{Title: "Olha quem não sai da cabeça", Body: "{sender} não para de pensar em você"},
	{Title: "Sério, é você de novo", Body: "{sender} pensou em você pela {count}ª vez hoje"},
	{Title: "Alguém está obcecado(a) 🫠", Body: "{sender} já pensou em você {count} vezes só hoje"},
}

// Render picks a wording variant for the event type using the provided
// random source and substitutes the placeholders. The random source is a
// parameter so callers (and tests) control which variant comes out.
func Render(typ models.NotificationType, vars TemplateVars, rng *rand.Rand) Template {
	pool, ok := templatePools[typ]
	if !ok || len(pool) == 0 {
		// Unknown type still produces something renderable.
		return Template{
			Title: substitute("{sender}", vars),
			Body:  substitute("{title}", vars),
		}
	}
	t := pool[rng.Intn(len(pool))]
	return Template{
		Title: substitute(t.Title, vars),
		Body:  substitute(t.Body, vars),
	}
}

// RenderPing returns the escalation variant for the sender's Nth ping of
// the day (sentSoFar = sends already made today).
func RenderPing(sentSoFar int, vars TemplateVars) Template {
	idx := sentSoFar
	if idx >= len(pingPool) {
		idx = len(pingPool) - 1
	}
	if idx < 0 {
		idx = 0
	}
	if vars.Count == 0 {
		vars.Count = sentSoFar + 1
	}
	t := pingPool[idx]
	return Template{
		Title: substitute(t.Title, vars),
		Body:  substitute(t.Body, vars),
	}
}

// PoolSize reports how many variants exist for a type. Tests use it to
// pin down deterministic selection.
func PoolSize(typ models.NotificationType) int {
	return len(templatePools[typ])
}

func substitute(s string, vars TemplateVars) string {
	count := ""
	if vars.Count > 0 {
		count = strconv.Itoa(vars.Count)
	}
	r := strings.NewReplacer(
		"{title}", vars.Title,
		"{sender}", vars.Sender,
		"{count}", count,
		"{emoji}", vars.Emoji,
		"{status}", vars.Status,
		"{context}", vars.Context,
	)
	return r.Replace(s)
}
