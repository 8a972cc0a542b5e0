package notify

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/amoralabs/amora-backend/internal/models"
)

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	vars := TemplateVars{Title: "Pagamento", Sender: "Ana", Count: 3, Emoji: "❤️", Status: "resolved"}

	tests := []struct {
		name string
		typ  models.NotificationType
		want string
	}{
		{"New message carries the title", models.NotifNewMessage, "Pagamento"},
		{"Multiple messages carries the count", models.NotifMultipleMessages, "3"},
		{"Status change carries the status", models.NotifStatusChange, "resolved"},
		{"Reaction carries the emoji", models.NotifReaction, "❤️"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered := Render(tt.typ, vars, rng)
			combined := rendered.Title + " " + rendered.Body
			if !strings.Contains(combined, tt.want) {
				t.Errorf("Render(%s) = %q, want it to contain %q", tt.typ, combined, tt.want)
			}
			if strings.Contains(combined, "{") {
				t.Errorf("Render(%s) left an unsubstituted placeholder: %q", tt.typ, combined)
			}
		})
	}
}

func TestRenderMissingMetadataBecomesEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	rendered := Render(models.NotifNewMessage, TemplateVars{}, rng)
	if strings.Contains(rendered.Title+rendered.Body, "{") {
		t.Errorf("empty vars must substitute as empty strings, got %q / %q", rendered.Title, rendered.Body)
	}
	// A zero count renders as nothing, not as "0".
	multi := Render(models.NotifMultipleMessages, TemplateVars{}, rng)
	if strings.Contains(multi.Title+multi.Body, "0") {
		t.Errorf("zero count leaked into %q / %q", multi.Title, multi.Body)
	}
}

func TestRenderIsDeterministicPerSeed(t *testing.T) {
	vars := TemplateVars{Title: "Viagem", Sender: "Léo"}
	a := Render(models.NotifNewMessage, vars, rand.New(rand.NewSource(9)))
	b := Render(models.NotifNewMessage, vars, rand.New(rand.NewSource(9)))
	if a != b {
		t.Errorf("same seed produced different variants: %+v vs %+v", a, b)
	}
}

func TestEveryNewMessageVariantNamesTheDiscussion(t *testing.T) {
	for i, tmpl := range templatePools[models.NotifNewMessage] {
		if !strings.Contains(tmpl.Body, "{title}") {
			t.Errorf("new_message variant %d body %q lacks the {title} placeholder", i, tmpl.Body)
		}
	}
}

func TestPoolSize(t *testing.T) {
	if PoolSize(models.NotifNewMessage) < 2 {
		t.Error("new_message needs multiple wording variants")
	}
	if PoolSize(models.NotificationType("bogus")) != 0 {
		t.Error("unknown type should report an empty pool")
	}
}
